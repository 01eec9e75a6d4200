package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeObject(t *testing.T) {
	schema := MustCompileSchema(map[string]any{
		"type":     "object",
		"required": []string{"decision"},
		"properties": map[string]any{
			"decision": map[string]any{"enum": []string{"Accepted", "Rejected"}},
		},
	})

	m, err := DecodeObject(schema, []byte(`{"decision":"Accepted","score":87.5}`))
	require.NoError(t, err)
	assert.Equal(t, "Accepted", m["decision"])
	assert.Equal(t, json.Number("87.5"), m["score"])

	for name, in := range map[string]string{
		"enum":     `{"decision":"Maybe"}`,
		"missing":  `{}`,
		"array":    `["Accepted"]`,
		"trailing": `{"decision":"Accepted"} {}`,
		"garbage":  `not json`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeObject(schema, []byte(in))
			assert.Error(t, err)
		})
	}
}

func TestCompileSchema_Invalid(t *testing.T) {
	_, err := CompileSchema(map[string]any{"type": 12})
	assert.Error(t, err)
}

func TestCoerceStrings(t *testing.T) {
	in := map[string]any{
		"name":    "  Asha ",
		"age":     json.Number("45"),
		"ratio":   0.5,
		"flag":    true,
		"empty":   nil,
		"nested":  map[string]any{"x": 1},
		"list":    []any{"a"},
		"unknown": "dropped",
	}
	got := CoerceStrings(in, []string{"name", "age", "ratio", "flag", "empty", "nested", "list", "absent"}, nil)

	assert.Equal(t, map[string]string{
		"name":   "Asha",
		"age":    "45",
		"ratio":  "0.5",
		"flag":   "true",
		"empty":  "",
		"nested": "",
		"list":   "",
		"absent": "",
	}, got)
}
