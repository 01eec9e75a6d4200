package extract

import (
	"regexp"
	"strings"
)

// Recognizer is one rule that may yield a value for a field.
type Recognizer interface {
	Recognize(text string) (string, bool)
}

// Rules is an ordered cascade. Order is part of the behavior: earlier rules
// are the specific forms, later ones the looser fallbacks.
type Rules []Recognizer

// Match returns the first non-empty trimmed value produced by rules, or "".
func Match(text string, rules Rules) string {
	for _, r := range rules {
		if v, ok := r.Recognize(text); ok {
			return v
		}
	}
	return ""
}

// compile makes every pattern case-insensitive.
func compile(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}

type capture struct {
	re    *regexp.Regexp
	group int
}

// Field recognizes capture group 1 of a case-insensitive pattern.
func Field(expr string) Recognizer {
	return capture{re: compile(expr), group: 1}
}

func (c capture) Recognize(text string) (string, bool) {
	m := c.re.FindStringSubmatch(text)
	if c.group >= len(m) {
		return "", false
	}
	v := strings.TrimSpace(m[c.group])
	return v, v != ""
}

type amount struct {
	re *regexp.Regexp
}

// Amount recognizes monetary values. When the pattern has several groups the
// rightmost non-empty one wins, so a running total beats the rate printed
// before it on the same line.
func Amount(expr string) Recognizer {
	return amount{re: compile(expr)}
}

func (a amount) Recognize(text string) (string, bool) {
	m := a.re.FindStringSubmatch(text)
	for i := len(m) - 1; i >= 1; i-- {
		if v := strings.TrimSpace(m[i]); v != "" {
			return v, true
		}
	}
	return "", false
}

// StopSet compiles labels into one terminator pattern. A stop only counts
// when whitespace precedes it and a word boundary follows it.
func StopSet(labels ...string) *regexp.Regexp {
	return compile(`\s+(?:` + strings.Join(labels, "|") + `)\b`)
}

// LabeledValue reads the value that follows a label. The value runs until
// the nearest stop label, a line break, or the end of text, whichever comes
// first. Label occurrences are tried in order until one yields a value.
type LabeledValue struct {
	Label *regexp.Regexp
	Stops *regexp.Regexp

	// RequireStop rejects values that are not followed by a stop label on
	// the same line.
	RequireStop bool
}

// Labeled builds a LabeledValue. label must consume the separator.
func Labeled(label string, stops *regexp.Regexp) LabeledValue {
	return LabeledValue{Label: compile(label), Stops: stops}
}

func (l LabeledValue) Recognize(text string) (string, bool) {
	for _, loc := range l.Label.FindAllStringIndex(text, -1) {
		if v, ok := l.valueAt(text[loc[1]:]); ok {
			return v, true
		}
	}
	return "", false
}

func (l LabeledValue) valueAt(rest string) (string, bool) {
	end := len(rest)
	stopped := false
	if l.Stops != nil && len(rest) > 1 {
		// the value holds at least one character
		if s := l.Stops.FindStringIndex(rest[1:]); s != nil {
			end = s[0] + 1
			stopped = true
		}
	}
	if n := strings.IndexByte(rest[:end], '\n'); n >= 0 {
		end = n
		stopped = false
	}
	if l.RequireStop && !stopped {
		return "", false
	}
	v := strings.TrimSpace(rest[:end])
	return v, v != ""
}

var whitespaceRun = regexp.MustCompile(`\s{2,}`)

// Section recognizes a free-text region between a start label and the
// nearest following label from Stops.
type Section struct {
	Starts []*regexp.Regexp
	Stops  []*regexp.Regexp
}

func (s Section) Recognize(text string) (string, bool) {
	v := Slice(text, s.Starts, s.Stops)
	return v, v != ""
}

// Slice returns the region after the first start label that matches, cut at
// the nearest stop label, with whitespace runs collapsed. Start patterns are
// tried in order until one yields a non-empty region.
func Slice(text string, starts, stops []*regexp.Regexp) string {
	for _, start := range starts {
		loc := start.FindStringIndex(text)
		if loc == nil {
			continue
		}
		rest := text[loc[1]:]
		end := len(rest)
		for _, stop := range stops {
			if s := stop.FindStringIndex(rest); s != nil && s[0] < end {
				end = s[0]
			}
		}
		if section := strings.TrimSpace(rest[:end]); section != "" {
			return strings.TrimSpace(whitespaceRun.ReplaceAllString(section, " "))
		}
	}
	return ""
}

// excluding drops index own from headers. Used so a section does not stop
// on its own heading.
func excluding(headers []*regexp.Regexp, own int) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(headers)-1)
	for i, h := range headers {
		if i != own {
			out = append(out, h)
		}
	}
	return out
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = compile(e)
	}
	return out
}
