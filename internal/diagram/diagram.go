// Package diagram implements the update pipeline that keeps a rendered
// mind-map synchronized with its source document: trigger handling,
// sanitize/parse orchestration, option resolution, and post-render styling.
package diagram

// Coloring modes selectable through preferences. Any other value defers to
// the renderer's built-in palette.
const (
	ColorModeSingle = "single"
	ColorModeDepth  = "depth"
)

// Preferences are the global rendering preferences. Pointer fields
// distinguish "unset" (nil, fall back to the documented default) from an
// explicit zero or negative value, which is honored as-is.
type Preferences struct {
	NodeMinHeight     *int
	SpacingVertical   *int
	SpacingHorizontal *int
	PaddingX          *int

	InitialExpandLevel *int
	MaxWidth           *int
	AnimationDuration  *int

	ColorMode    string
	SingleColor  string
	DepthColors  []string // colors for depths 0..2 in depth mode
	DefaultColor string   // depth-mode fallback beyond the configured colors

	StrokeWidths        [4]float64 // buckets for depths 0, 1, 2, 3+
	CodeBlockBackground string
	LineHeight          string
	FontFamily          string
}

// ViewFlags are the per-document flags persisted across restarts.
type ViewFlags struct {
	Pinned  bool
	Toolbar bool
}
