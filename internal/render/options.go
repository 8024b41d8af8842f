// Package render maintains the on-screen diagram: it lays out a node tree
// into a scene of nodes, connectors, and toggles, and serializes the scene
// to SVG.
package render

// Options is the flat option mapping driving one render cycle. The option
// resolver rebuilds it from scratch every cycle; it is never partially
// merged across cycles. Values may arrive as YAML-decoded any types, so the
// accessors coerce the common numeric shapes.
type Options map[string]any

// Has reports whether key is present.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Int returns the option as an int, or def when absent or not numeric.
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Float returns the option as a float64, or def when absent or not numeric.
func (o Options) Float(key string, def float64) float64 {
	switch v := o[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// Bool returns the option as a bool, or def when absent.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key].(bool); ok {
		return v
	}
	return def
}

// String returns the option as a string, or def when absent.
func (o Options) String(key, def string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return def
}

// Clone returns a shallow copy of o.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// ColorFunc assigns a color to a node from its depth. It must be
// deterministic and side-effect-free: the renderer calls it once per node
// during layout.
type ColorFunc func(depth int) string
