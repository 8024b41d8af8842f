package render

import (
	"sync"
	"unicode/utf8"

	"github.com/starford/ansuz/internal/outline"
)

// Layout fallbacks, used when the options object omits a field.
const (
	fallbackNodeMinHeight     = 16
	fallbackSpacingVertical   = 5
	fallbackSpacingHorizontal = 80
	fallbackPaddingX          = 8

	charWidth  = 7
	textInset  = 16
	toggleTrim = 6
)

// defaultPalette colors nodes when no color function is installed.
var defaultPalette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b"}

// placedNode is a visible node with resolved coordinates.
type placedNode struct {
	node  *outline.Node
	depth int
	x, y  int
	w, h  int
}

// Scene is the in-memory rendered diagram. SetData always replaces the full
// displayed tree; there is no partial update. The scene keeps the view
// transform (pan/zoom) across SetData calls so re-renders do not fight the
// user; only Fit changes it.
type Scene struct {
	mu sync.RWMutex

	width, height int

	root  *outline.Node
	opts  Options
	color ColorFunc
	title string

	styles    []string
	collapsed map[*outline.Node]bool

	nodes      []placedNode
	connectors []*Element
	indicators []*Element
	toggles    []*Toggle

	tx, ty, scale float64
}

// NewScene creates an empty scene with the given viewport size.
func NewScene(width, height int) *Scene {
	return &Scene{
		width:     width,
		height:    height,
		opts:      Options{},
		collapsed: make(map[*outline.Node]bool),
		scale:     1,
	}
}

// SetData replaces the displayed tree and options and rebuilds the scene.
// When the options carry a non-negative initialExpandLevel, nodes at that
// depth and below start collapsed.
func (s *Scene) SetData(root *outline.Node, opts Options) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.root = root
	if opts == nil {
		opts = Options{}
	}
	s.opts = opts

	s.collapsed = make(map[*outline.Node]bool)
	if level := opts.Int("initialExpandLevel", -1); level >= 0 && root != nil {
		root.Walk(func(n *outline.Node) {
			if n.Depth >= level && len(n.Children) > 0 {
				s.collapsed[n] = true
			}
		})
	}
	s.rebuild()
}

// Data returns the currently displayed tree, or nil before the first render.
func (s *Scene) Data() *outline.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// SetColor installs the per-node color function for subsequent draws.
// A nil function restores the built-in palette.
func (s *Scene) SetColor(fn ColorFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.color = fn
}

// SetTitle sets the displayed diagram title.
func (s *Scene) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

// Title returns the displayed diagram title.
func (s *Scene) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

// AddStyleRule adds a CSS rule to the scene's embedded stylesheet.
// Re-adding an existing rule is a no-op.
func (s *Scene) AddStyleRule(rule string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.styles {
		if r == rule {
			return
		}
	}
	s.styles = append(s.styles, rule)
}

// StyleRules returns the embedded stylesheet rules.
func (s *Scene) StyleRules() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.styles))
	copy(out, s.styles)
	return out
}

// Connectors returns a snapshot of the rendered connector elements.
func (s *Scene) Connectors() []*Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneElements(s.connectors)
}

// Indicators returns a snapshot of the rendered node indicator elements.
func (s *Scene) Indicators() []*Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneElements(s.indicators)
}

// Toggles returns the rendered expand/collapse toggles.
func (s *Scene) Toggles() []*Toggle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Toggle(nil), s.toggles...)
}

func cloneElements(src []*Element) []*Element {
	out := make([]*Element, len(src))
	for i, e := range src {
		c := *e
		out[i] = &c
	}
	return out
}

// ApplyStrokeWidths assigns depth-bucketed stroke widths to every connector
// and indicator, clamping depths beyond the last bucket. The writes happen
// under the scene lock so a concurrent serialization never observes a
// half-applied pass.
func (s *Scene) ApplyStrokeWidths(widths [4]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.connectors {
		e.StrokeWidth = widths[strokeBucket(e.Depth)]
	}
	for _, e := range s.indicators {
		e.StrokeWidth = widths[strokeBucket(e.Depth)]
	}
}

// RearmToggles replaces the attached handler on every toggle. The previous
// handlers are discarded, so re-arming on every styling pass is safe.
func (s *Scene) RearmToggles(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tg := range s.toggles {
		tg.OnClick(fn)
	}
}

// strokeBucket clamps a depth to the stroke-width bucket range.
func strokeBucket(depth int) int {
	if depth < 0 {
		return 0
	}
	if depth > 3 {
		return 3
	}
	return depth
}

// NodeCount returns the number of currently visible nodes.
func (s *Scene) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// Fit recenters and rescales the view so the whole scene is visible,
// honoring the fitRatio option.
func (s *Scene) Fit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.nodes) == 0 {
		s.tx, s.ty, s.scale = 0, 0, 1
		return
	}

	minX, minY := s.nodes[0].x, s.nodes[0].y
	maxX, maxY := 0, 0
	for _, pn := range s.nodes {
		if pn.x < minX {
			minX = pn.x
		}
		if pn.y < minY {
			minY = pn.y
		}
		if r := pn.x + pn.w; r > maxX {
			maxX = r
		}
		if b := pn.y + pn.h; b > maxY {
			maxY = b
		}
	}

	bw, bh := float64(maxX-minX), float64(maxY-minY)
	if bw <= 0 || bh <= 0 {
		s.tx, s.ty, s.scale = 0, 0, 1
		return
	}

	ratio := s.opts.Float("fitRatio", 1.0)
	sc := float64(s.width) / bw
	if sy := float64(s.height) / bh; sy < sc {
		sc = sy
	}
	sc *= ratio

	s.scale = sc
	s.tx = (float64(s.width) - bw*sc) / 2
	s.ty = (float64(s.height) - bh*sc) / 2
}

// rebuild regenerates all placed nodes and elements from the current tree
// and collapse state. Caller must hold s.mu.
func (s *Scene) rebuild() {
	s.nodes = nil
	s.connectors = nil
	s.indicators = nil
	s.toggles = nil
	if s.root == nil {
		return
	}

	rowH := s.opts.Int("nodeMinHeight", fallbackNodeMinHeight) + s.opts.Int("spacingVertical", fallbackSpacingVertical)
	dx := s.opts.Int("spacingHorizontal", fallbackSpacingHorizontal)
	padX := s.opts.Int("paddingX", fallbackPaddingX)
	maxW := s.opts.Int("maxWidth", 0)

	row := 0
	var walk func(n *outline.Node, parent *placedNode)
	walk = func(n *outline.Node, parent *placedNode) {
		w := utf8.RuneCountInString(n.Content)*charWidth + textInset
		if maxW > 0 && w > maxW {
			w = maxW
		}
		pn := placedNode{
			node:  n,
			depth: n.Depth,
			x:     padX + n.Depth*dx,
			y:     row * rowH,
			w:     w,
			h:     rowH,
		}
		row++
		s.nodes = append(s.nodes, pn)

		if parent != nil {
			s.connectors = append(s.connectors, &Element{
				Kind:        KindConnector,
				Depth:       n.Depth,
				StrokeWidth: DefaultStrokeWidth,
				x1:          parent.x + parent.w,
				y1:          parent.y + parent.h/2,
				x2:          pn.x,
				y2:          pn.y + pn.h/2,
			})
		}
		s.indicators = append(s.indicators, &Element{
			Kind:        KindIndicator,
			Depth:       n.Depth,
			StrokeWidth: DefaultStrokeWidth,
			x1:          pn.x,
			y1:          pn.y + pn.h,
			x2:          pn.x + pn.w - toggleTrim,
			y2:          pn.y + pn.h,
		})

		if len(n.Children) > 0 {
			node := n
			tg := NewToggle(n.Depth, func() { s.toggleNode(node) })
			tg.x = pn.x + pn.w
			tg.y = pn.y + pn.h
			s.toggles = append(s.toggles, tg)
		}

		if s.collapsed[n] {
			return
		}
		for _, c := range n.Children {
			walk(c, &pn)
		}
	}
	walk(s.root, nil)
}

// toggleNode flips a node's collapse state and regenerates the scene.
func (s *Scene) toggleNode(n *outline.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collapsed[n] {
		delete(s.collapsed, n)
	} else {
		s.collapsed[n] = true
	}
	s.rebuild()
}

// nodeColor resolves the fill color for a node at depth. Caller must hold
// s.mu (read or write).
func (s *Scene) nodeColor(depth int) string {
	if s.color != nil {
		return s.color(depth)
	}
	return defaultPalette[depth%len(defaultPalette)]
}
