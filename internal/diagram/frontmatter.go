package diagram

// FrontmatterKey is the one recognized top-level metadata key. Everything
// else in a document's frontmatter is ignored, never an error.
const FrontmatterKey = "markmap"

// Frontmatter is the recognized per-document metadata: renderer option
// overrides, an optional color palette, and two screenshot colors.
type Frontmatter struct {
	Options              map[string]any
	Color                []string
	ScreenshotTextColor  string
	ScreenshotBackground string
}

// ParseFrontmatter extracts the recognized fields from a parsed metadata
// block. The palette and screenshot colors are pulled out of the option set;
// every other field under the recognized key becomes an option override.
func ParseFrontmatter(meta map[string]any) Frontmatter {
	var fm Frontmatter
	raw, ok := meta[FrontmatterKey].(map[string]any)
	if !ok {
		return fm
	}
	fm.Options = make(map[string]any, len(raw))
	for k, v := range raw {
		switch k {
		case "color":
			fm.Color = toStrings(v)
		case "screenshotTextColor":
			fm.ScreenshotTextColor, _ = v.(string)
		case "screenshotBgColor":
			fm.ScreenshotBackground, _ = v.(string)
		default:
			fm.Options[k] = v
		}
	}
	return fm
}

func toStrings(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if vv == "" {
			return nil
		}
		return []string{vv}
	}
	return nil
}
