package diagram

import (
	"fmt"

	"github.com/starford/ansuz/internal/render"
)

// Numeric fallbacks applied when the matching preference is unset.
const (
	defaultNodeMinHeight     = 16
	defaultSpacingVertical   = 5
	defaultSpacingHorizontal = 80
	defaultPaddingX          = 8
)

// Resolve builds the complete options object for one render cycle. Sources
// merge in precedence order, lowest first: built-in defaults, global
// preferences, frontmatter overrides. The computed style entry is layered
// after frontmatter so the ambient font cannot be overridden per document.
// Each cycle gets a fresh object; options are never merged across cycles.
func Resolve(p Preferences, fm Frontmatter) render.Options {
	o := render.Options{
		"autoFit":           false,
		"nodeMinHeight":     intOr(p.NodeMinHeight, defaultNodeMinHeight),
		"spacingVertical":   intOr(p.SpacingVertical, defaultSpacingVertical),
		"spacingHorizontal": intOr(p.SpacingHorizontal, defaultSpacingHorizontal),
		"paddingX":          intOr(p.PaddingX, defaultPaddingX),
		"embedGlobalCSS":    true,
		"fitRatio":          1.0,
	}

	if p.InitialExpandLevel != nil {
		o["initialExpandLevel"] = *p.InitialExpandLevel
	}
	if p.MaxWidth != nil {
		o["maxWidth"] = *p.MaxWidth
	}
	if p.AnimationDuration != nil {
		o["duration"] = *p.AnimationDuration
	}

	for k, v := range fm.Options {
		o[k] = v
	}

	o["style"] = fontStyle(p)
	return o
}

// intOr honors explicit zero and negative preference values; only nil
// counts as unset.
func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// fontStyle is the computed style applied to every rendered text element.
func fontStyle(p Preferences) string {
	family := p.FontFamily
	if family == "" {
		family = "sans-serif"
	}
	lineHeight := p.LineHeight
	if lineHeight == "" {
		lineHeight = "1.5"
	}
	return fmt.Sprintf("font: 13px/%s %s", lineHeight, family)
}
