package outline

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Assets declared when a document uses the matching embedded feature.
var (
	highlightScript = Asset{Kind: AssetScript, URL: "https://cdn.jsdelivr.net/npm/prismjs@1/prism.min.js"}
	highlightStyle  = Asset{Kind: AssetStyle, URL: "https://cdn.jsdelivr.net/npm/prismjs@1/themes/prism.min.css"}
	mathScript      = Asset{Kind: AssetScript, URL: "https://cdn.jsdelivr.net/npm/katex@0.16/dist/katex.min.js"}
	mathStyle       = Asset{Kind: AssetStyle, URL: "https://cdn.jsdelivr.net/npm/katex@0.16/dist/katex.min.css"}
)

// Parser turns sanitized Markdown text into a Result. It is stateless and
// safe for concurrent use.
type Parser struct {
	md goldmark.Markdown
}

// NewParser creates a Parser with the default Markdown dialect.
func NewParser() *Parser {
	return &Parser{md: goldmark.New()}
}

// Parse builds the node tree from text. Headings nest by level under a
// synthetic depth-0 root; list items nest under the nearest heading, one
// level deeper per nesting. Fenced code blocks become leaf nodes and, when
// tagged, declare the highlight assets; inline math delimiters declare the
// math assets.
func (p *Parser) Parse(input string) (*Result, error) {
	fm, body, err := splitFrontmatter([]byte(input))
	if err != nil {
		return nil, err
	}
	src := []byte(body)
	doc := p.md.Parser().Parse(text.NewReader(src))

	root := &Node{Depth: 0}
	res := &Result{Root: root, Frontmatter: fm}

	// Heading stack: root carries a pseudo level 0 so pops never empty it.
	type frame struct {
		node  *Node
		level int
	}
	stack := []frame{{root, 0}}
	needHighlight := false

	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Heading:
			for len(stack) > 1 && stack[len(stack)-1].level >= n.Level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1].node
			node := &Node{Depth: parent.Depth + 1, Content: textOf(n, src)}
			parent.Children = append(parent.Children, node)
			stack = append(stack, frame{node, n.Level})

		case *ast.List:
			addList(stack[len(stack)-1].node, n, src)

		case *ast.FencedCodeBlock:
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, &Node{
				Depth:   parent.Depth + 1,
				Content: fenceContent(n, src),
			})
			if len(n.Language(src)) > 0 {
				needHighlight = true
			}
		}
	}

	if needHighlight {
		res.Assets = append(res.Assets, highlightScript, highlightStyle)
	}
	if hasMath(body) {
		res.Assets = append(res.Assets, mathScript, mathStyle)
	}

	res.Title = deriveTitle(fm, root)
	root.Content = res.Title
	if len(root.Children) == 1 && root.Children[0].Content == res.Title {
		// A document with a single top heading re-roots on it, avoiding a
		// duplicated level below the synthetic root.
		promoted := root.Children[0]
		root.Children = promoted.Children
		reDepth(root, 0)
	}
	return res, nil
}

// addList appends one node per list item under parent, recursing into
// nested lists one level deeper.
func addList(parent *Node, list *ast.List, src []byte) {
	for it := list.FirstChild(); it != nil; it = it.NextSibling() {
		node := &Node{Depth: parent.Depth + 1}
		for c := it.FirstChild(); c != nil; c = c.NextSibling() {
			if nested, ok := c.(*ast.List); ok {
				addList(node, nested, src)
				continue
			}
			if node.Content == "" {
				node.Content = textOf(c, src)
			}
		}
		parent.Children = append(parent.Children, node)
	}
}

// textOf concatenates the raw text segments under n.
func textOf(n ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := c.(*ast.Text); ok {
				sb.Write(t.Segment.Value(src))
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// fenceContent returns the joined lines of a fenced code block.
func fenceContent(n *ast.FencedCodeBlock, src []byte) string {
	var sb strings.Builder
	for i := 0; i < n.Lines().Len(); i++ {
		seg := n.Lines().At(i)
		sb.Write(seg.Value(src))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// reDepth rewrites Depth throughout the tree so n sits at depth d.
func reDepth(n *Node, d int) {
	n.Depth = d
	for _, c := range n.Children {
		reDepth(c, d+1)
	}
}

// hasMath reports whether body contains a $-delimited math span.
func hasMath(body string) bool {
	open := strings.Index(body, "$")
	if open < 0 {
		return false
	}
	return strings.Contains(body[open+1:], "$")
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found, or the YAML is invalid,
// the entire content is body.
func splitFrontmatter(data []byte) (map[string]any, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data), nil
	}
	return fm, body, nil
}

// deriveTitle returns the frontmatter "title" if present, otherwise the
// content of the first top-level node, otherwise empty string.
func deriveTitle(fm map[string]any, root *Node) string {
	if fm != nil {
		if t, ok := fm["title"]; ok {
			if s, ok := t.(string); ok && s != "" {
				return s
			}
		}
	}
	if len(root.Children) == 1 {
		return root.Children[0].Content
	}
	return ""
}
