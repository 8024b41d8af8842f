package render

// ElementKind identifies what a rendered element draws.
type ElementKind int

// Element kinds.
const (
	KindConnector ElementKind = iota
	KindIndicator
)

// DefaultStrokeWidth is the width every freshly generated element starts
// with, before the styling pass assigns depth-bucketed widths.
const DefaultStrokeWidth = 1.5

// Element is one stroked part of the rendered scene: a connector between a
// parent and child node, or the indicator line under a node's text. Elements
// are regenerated wholesale whenever the scene rebuilds, which resets their
// stroke widths.
type Element struct {
	Kind        ElementKind
	Depth       int
	StrokeWidth float64

	x1, y1, x2, y2 int
}

// Toggle is the expand/collapse control of a node with children. Clicking it
// regenerates the affected elements; the styling pass attaches a handler so
// it can re-apply widths afterwards.
type Toggle struct {
	Depth int

	x, y    int
	click   func()
	handler func()
}

// NewToggle creates a toggle whose user-interaction effect is click.
func NewToggle(depth int, click func()) *Toggle {
	return &Toggle{Depth: depth, click: click}
}

// OnClick replaces the toggle's attached handler. The previous handler is
// discarded, so re-attaching on every styling pass is safe.
func (t *Toggle) OnClick(fn func()) {
	t.handler = fn
}

// Click simulates a user click: the collapse/expand effect runs first, then
// the attached handler, if any.
func (t *Toggle) Click() {
	if t.click != nil {
		t.click()
	}
	if t.handler != nil {
		t.handler()
	}
}
