package diagram

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/outline"
	"github.com/starford/ansuz/internal/sanitize"
)

// Parser produces a node tree, declared external assets, and frontmatter
// metadata from sanitized text.
type Parser interface {
	Parse(text string) (*outline.Result, error)
}

// LinkResolver rewrites a cross-document link target into the host
// environment's addressing scheme.
type LinkResolver interface {
	Resolve(target string) string
}

// LinkResolverFunc adapts a function to LinkResolver.
type LinkResolverFunc func(target string) string

// Resolve implements LinkResolver.
func (f LinkResolverFunc) Resolve(target string) string { return f(target) }

var wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)

// Transform sanitizes raw document text, drives the parser over it, and
// rewrites internal link targets in the resulting tree. Parser failures
// propagate unrecovered; the update orchestrator owns catching and
// reporting them.
type Transform struct {
	Parser Parser
	Links  LinkResolver
}

// Run executes one sanitize + parse + link-rewrite pass.
func (t *Transform) Run(raw string) (*outline.Result, error) {
	res, err := t.Parser.Parse(sanitize.Fences(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrParse, err)
	}
	if t.Links != nil {
		res.Root.Walk(func(n *outline.Node) {
			n.Content = rewriteLinks(n.Content, t.Links)
		})
	}
	return res, nil
}

// rewriteLinks replaces every [[Target]] and [[Target|Alias]] in content
// with a plain link whose href comes from the resolver.
func rewriteLinks(content string, links LinkResolver) string {
	if !strings.Contains(content, "[[") {
		return content
	}
	return wikilinkRe.ReplaceAllStringFunc(content, func(m string) string {
		inner := strings.TrimSuffix(strings.TrimPrefix(m, "[["), "]]")
		target, label := inner, inner
		if i := strings.Index(inner, "|"); i >= 0 {
			target, label = inner[:i], inner[i+1:]
		}
		target = strings.TrimSpace(target)
		label = strings.TrimSpace(label)
		if target == "" {
			return m
		}
		if label == "" {
			label = target
		}
		return fmt.Sprintf("[%s](%s)", label, links.Resolve(target))
	})
}
