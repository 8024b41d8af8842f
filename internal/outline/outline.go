// Package outline parses sanitized Markdown into the hierarchical node tree
// that drives the diagram, along with frontmatter metadata and the external
// assets the document's embedded features require.
package outline

// Node is one element of the parsed document tree. Depth is 0 for the root
// and grows by one per level; children are ordered and owned by their parent.
// A tree is immutable once produced: the next parse supersedes it wholesale.
type Node struct {
	Depth    int
	Content  string
	Children []*Node
}

// Walk visits n and every descendant in document order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Count returns the number of nodes in the tree rooted at n.
func (n *Node) Count() int {
	total := 0
	n.Walk(func(*Node) { total++ })
	return total
}

// AssetKind distinguishes declared external assets.
type AssetKind string

// Asset kinds.
const (
	AssetScript AssetKind = "script"
	AssetStyle  AssetKind = "style"
)

// Asset is an external script or stylesheet a document feature depends on.
type Asset struct {
	Kind AssetKind
	URL  string
}

// Result holds everything one parse of a document yields.
type Result struct {
	Root        *Node
	Assets      []Asset
	Frontmatter map[string]any
	Title       string
}
