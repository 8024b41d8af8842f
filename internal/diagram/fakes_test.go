package diagram

import (
	"errors"
	"sync"

	"github.com/starford/ansuz/internal/outline"
	"github.com/starford/ansuz/internal/render"
)

// fakeRenderer records orchestrator calls and serves canned elements to the
// styling pass.
type fakeRenderer struct {
	mu sync.Mutex

	root  *outline.Node
	opts  render.Options
	color render.ColorFunc
	title string
	rules []string

	setDataCalls int
	fitCalls     int

	connectors []*render.Element
	indicators []*render.Element
	toggles    []*render.Toggle
}

func (f *fakeRenderer) SetData(root *outline.Node, opts render.Options) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.root = root
	f.opts = opts
	f.setDataCalls++
}

func (f *fakeRenderer) SetColor(fn render.ColorFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.color = fn
}

func (f *fakeRenderer) Fit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fitCalls++
}

func (f *fakeRenderer) Data() *outline.Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.root
}

func (f *fakeRenderer) SetTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title = title
}

func (f *fakeRenderer) AddStyleRule(rule string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rules {
		if r == rule {
			return
		}
	}
	f.rules = append(f.rules, rule)
}

func (f *fakeRenderer) ApplyStrokeWidths(widths [4]float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.connectors {
		e.StrokeWidth = widths[clampBucket(e.Depth)]
	}
	for _, e := range f.indicators {
		e.StrokeWidth = widths[clampBucket(e.Depth)]
	}
}

func (f *fakeRenderer) RearmToggles(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tg := range f.toggles {
		tg.OnClick(fn)
	}
}

func clampBucket(depth int) int {
	if depth < 0 {
		return 0
	}
	if depth > 3 {
		return 3
	}
	return depth
}

// Connectors and Indicators hand out copies so assertions never read an
// element the styling goroutine may still be writing.
func (f *fakeRenderer) Connectors() []*render.Element {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*render.Element, len(f.connectors))
	for i, e := range f.connectors {
		c := *e
		out[i] = &c
	}
	return out
}

func (f *fakeRenderer) Indicators() []*render.Element {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*render.Element, len(f.indicators))
	for i, e := range f.indicators {
		c := *e
		out[i] = &c
	}
	return out
}

func (f *fakeRenderer) Toggles() []*render.Toggle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*render.Toggle(nil), f.toggles...)
}

func (f *fakeRenderer) snapshot() (calls, fits int, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setDataCalls, f.fitCalls, f.title
}

// fakeDocs serves canned document bytes.
type fakeDocs struct {
	mu    sync.Mutex
	texts map[string]string
	err   error
	reads int
}

func (d *fakeDocs) Read(path string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reads++
	if d.err != nil {
		return nil, d.err
	}
	text, ok := d.texts[path]
	if !ok {
		return nil, errors.New("missing")
	}
	return []byte(text), nil
}

// failParser always errors.
type failParser struct{}

func (failParser) Parse(string) (*outline.Result, error) {
	return nil, errors.New("boom")
}
