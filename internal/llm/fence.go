package llm

import (
	"regexp"
	"strings"
)

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\r?\n?")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// StripFences removes a leading ``` (with optional language tag) and a
// trailing ``` around a model response. Text without fences is only trimmed.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
