package export

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
)

type fakeScene struct {
	svg string
	err error

	textColor  string
	background string
}

func (f *fakeScene) WriteSVGColors(w io.Writer, textColor, background string) error {
	if f.err != nil {
		return f.err
	}
	f.textColor = textColor
	f.background = background
	_, err := io.WriteString(w, f.svg)
	return err
}

func withClipboard(t *testing.T, fn func(string) error) {
	t.Helper()
	orig := writeClipboard
	writeClipboard = fn
	t.Cleanup(func() { writeClipboard = orig })
}

func TestScreenshot_CopiesSVGWithColors(t *testing.T) {
	var copied string
	withClipboard(t, func(s string) error {
		copied = s
		return nil
	})

	scene := &fakeScene{svg: `<svg>ok</svg>`}
	if err := Screenshot(scene, "#fff", "#000", nil); err != nil {
		t.Fatalf("Screenshot: %v", err)
	}

	if !strings.Contains(copied, "<svg>") {
		t.Errorf("clipboard content = %q", copied)
	}
	if scene.textColor != "#fff" || scene.background != "#000" {
		t.Errorf("colors passed = %q, %q", scene.textColor, scene.background)
	}
}

func TestScreenshot_RenderFailure(t *testing.T) {
	withClipboard(t, func(string) error {
		t.Fatal("clipboard written after render failure")
		return nil
	})

	err := Screenshot(&fakeScene{err: errors.New("bad scene")}, "", "", nil)
	if !errors.Is(err, apperr.ErrExport) {
		t.Errorf("err = %v, want ErrExport", err)
	}
}

func TestScreenshot_ClipboardFailure(t *testing.T) {
	withClipboard(t, func(string) error { return errors.New("no display") })

	err := Screenshot(&fakeScene{svg: "<svg/>"}, "", "", nil)
	if !errors.Is(err, apperr.ErrExport) {
		t.Errorf("err = %v, want ErrExport", err)
	}
}
