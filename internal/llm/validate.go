package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// CompileSchema compiles a schema expressed as a Go map.
func CompileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// MustCompileSchema is for package-level schemas.
func MustCompileSchema(schemaMap map[string]any) *jsonschema.Schema {
	s, err := CompileSchema(schemaMap)
	if err != nil {
		panic(err)
	}
	return s
}

// DecodeObject parses data as a JSON object and validates it against schema.
// Numbers are kept as json.Number so callers can coerce them precisely.
func DecodeObject(schema *jsonschema.Schema, data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("unmarshal data: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("unmarshal data: trailing content after JSON value")
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("json does not match schema: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("json does not match schema: expected object")
	}
	return m, nil
}
