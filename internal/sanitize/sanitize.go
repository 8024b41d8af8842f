// Package sanitize rewrites fenced code block language tags that the outline
// parser cannot handle into a safe subset, so an unsupported embedded language
// degrades to a plain code block instead of failing the whole render.
package sanitize

import "strings"

// allowedTags are the fence languages the parser renders natively.
var allowedTags = map[string]struct{}{
	"js":         {},
	"javascript": {},
	"css":        {},
	"html":       {},
}

// Fences returns text with every fenced code block's language tag replaced by
// the empty string unless the tag is allow-listed. The fence structure itself
// is untouched: backtick-run lengths are preserved, and a run longer than
// three backticks is left verbatim, tag included. Lines inside an open fence
// are never rewritten. The function is idempotent.
func Fences(text string) string {
	lines := strings.Split(text, "\n")

	// open is the backtick count of the currently open fence, 0 when outside.
	open := 0
	for i, line := range lines {
		indent, run, rest := splitFence(line)

		if open > 0 {
			// A closing fence is a run at least as long as the opener
			// with nothing after it.
			if run >= open && strings.TrimSpace(rest) == "" {
				open = 0
			}
			continue
		}

		if run < 3 {
			continue
		}
		open = run
		if run > 3 {
			// Longer runs are preserved verbatim.
			continue
		}
		tag := strings.TrimSpace(rest)
		if tag == "" {
			continue
		}
		if _, ok := allowedTags[tag]; !ok {
			lines[i] = indent + strings.Repeat("`", run)
		}
	}

	return strings.Join(lines, "\n")
}

// splitFence breaks a line into its leading whitespace, the length of the
// backtick run that follows, and the remainder after the run.
func splitFence(line string) (indent string, run int, rest string) {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	j := i
	for j < len(line) && line[j] == '`' {
		j++
	}
	return line[:i], j - i, line[j:]
}
