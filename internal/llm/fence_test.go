package llm

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"crlf", "```json\r\n{\"a\":1}\r\n```", `{"a":1}`},
		{"surrounding space", "  \n```json\n{\"a\":1}\n```\n  ", `{"a":1}`},
		{"single line", "```{\"a\":1}```", `{"a":1}`},
		{"no closing fence", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripFences(tc.in); got != tc.want {
				t.Fatalf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
