// Package export copies a rendered diagram out of the application, currently
// to the system clipboard as an SVG document.
package export

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/atotto/clipboard"

	"github.com/starford/ansuz/internal/apperr"
)

// writeClipboard is swapped out in tests; clipboard access needs a display.
var writeClipboard = clipboard.WriteAll

// SVGWriter renders the current scene as SVG with explicit text and
// background colors. *render.Scene satisfies it.
type SVGWriter interface {
	WriteSVGColors(w io.Writer, textColor, background string) error
}

// Screenshot serializes the scene with the given colors and places the SVG
// on the system clipboard. Empty colors fall back to the scene's own.
func Screenshot(scene SVGWriter, textColor, background string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	var buf bytes.Buffer
	if err := scene.WriteSVGColors(&buf, textColor, background); err != nil {
		return fmt.Errorf("%w: render svg: %v", apperr.ErrExport, err)
	}
	if err := writeClipboard(buf.String()); err != nil {
		return fmt.Errorf("%w: clipboard: %v", apperr.ErrExport, err)
	}

	logger.Info("export: screenshot copied",
		slog.Int("bytes", buf.Len()),
		slog.String("text_color", textColor),
		slog.String("background", background))
	return nil
}
