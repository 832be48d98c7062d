package render

import (
	"regexp"
	"strings"
)

// taskLineRe matches a Markdown task-list line: list marker, checkbox, rest.
var taskLineRe = regexp.MustCompile(`^(\s*(?:[-*+]|\d+[.)])\s+)\[( |x|X)\](.*)$`)

// ToggleTask rewrites the checkbox of the taskIndex-th task-list line (in
// document order, zero-based) to checked or unchecked. It reports ok=false
// and returns the input unchanged when the index does not resolve to a task
// line.
func ToggleTask(markdown string, taskIndex int, checked bool) (string, bool) {
	if taskIndex < 0 {
		return markdown, false
	}

	lines := strings.Split(markdown, "\n")
	cursor := 0
	for i, line := range lines {
		m := taskLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if cursor == taskIndex {
			box := " "
			if checked {
				box = "x"
			}
			lines[i] = m[1] + "[" + box + "]" + m[3]
			return strings.Join(lines, "\n"), true
		}
		cursor++
	}

	return markdown, false
}
