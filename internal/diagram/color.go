package diagram

import "github.com/starford/ansuz/internal/render"

// ColorFor selects the node color function for one render. The returned
// function is pure, so the renderer can call it per node during layout.
// A nil return defers to the renderer's built-in palette.
//
// Modes: "single" paints every node the configured color; "depth" cycles a
// frontmatter palette when the document declares one, otherwise indexes the
// three configured depth colors and falls back beyond them.
func ColorFor(p Preferences, palette []string) render.ColorFunc {
	switch p.ColorMode {
	case ColorModeSingle:
		c := p.SingleColor
		return func(int) string { return c }

	case ColorModeDepth:
		if len(palette) > 0 {
			pal := append([]string(nil), palette...)
			return func(depth int) string {
				i := depth % len(pal)
				if i < 0 {
					i += len(pal)
				}
				return pal[i]
			}
		}
		colors := append([]string(nil), p.DepthColors...)
		fallback := p.DefaultColor
		return func(depth int) string {
			if depth >= 0 && depth < len(colors) {
				return colors[depth]
			}
			return fallback
		}

	default:
		return nil
	}
}
