package render

import (
	"bytes"
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"
)

// WriteSVG serializes the current scene to w.
func (s *Scene) WriteSVG(w io.Writer) error {
	return s.WriteSVGColors(w, "", "")
}

// WriteSVGColors serializes the scene with optional text and background
// color overrides, used by the screenshot export. Empty overrides fall back
// to the scene's own styling.
func (s *Scene) WriteSVGColors(w io.Writer, textColor, background string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(s.width, s.height)

	if s.opts.Bool("embedGlobalCSS", true) && len(s.styles) > 0 {
		css := ""
		for _, r := range s.styles {
			css += r + "\n"
		}
		canvas.Style("text/css", css)
	}

	if background != "" {
		canvas.Rect(0, 0, s.width, s.height, fmt.Sprintf("fill:%s", background))
	}

	canvas.Gtransform(fmt.Sprintf("translate(%.2f,%.2f) scale(%.4f)", s.tx, s.ty, s.scale))

	for _, e := range s.connectors {
		canvas.Line(e.x1, e.y1, e.x2, e.y2,
			fmt.Sprintf("stroke:%s;stroke-width:%.2f;fill:none", s.nodeColor(e.Depth), e.StrokeWidth))
	}

	for _, e := range s.indicators {
		canvas.Line(e.x1, e.y1, e.x2, e.y2,
			fmt.Sprintf("stroke:%s;stroke-width:%.2f", s.nodeColor(e.Depth), e.StrokeWidth))
	}

	style := s.opts.String("style", "")
	for _, pn := range s.nodes {
		fill := textColor
		if fill == "" {
			fill = s.nodeColor(pn.depth)
		}
		attrs := fmt.Sprintf("fill:%s;%s", fill, style)
		canvas.Text(pn.x+toggleTrim/2, pn.y+pn.h-toggleTrim, pn.node.Content, attrs)
	}

	for _, tg := range s.toggles {
		canvas.Circle(tg.x, tg.y, 3, fmt.Sprintf("fill:%s", s.nodeColor(tg.Depth)))
	}

	canvas.Gend()

	if s.title != "" {
		canvas.Text(s.width/2, 18, s.title, "text-anchor:middle;font-size:14px")
	}

	canvas.End()

	_, err := w.Write(buf.Bytes())
	return err
}
