package llm

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// CoerceStrings projects a decoded model object onto a fixed set of string
// fields:
//   - unknown keys are dropped
//   - strings are trimmed
//   - numbers and booleans keep their JSON text
//   - null, objects and arrays become ""
//
// Every key in keys is present in the result.
func CoerceStrings(m map[string]any, keys []string, logger *slog.Logger) map[string]string {
	if logger == nil {
		logger = slog.Default()
	}
	out := make(map[string]string, len(keys))
	allowed := make(map[string]struct{}, len(keys))
	var dropped []string
	for _, k := range keys {
		allowed[k] = struct{}{}
		out[k] = ""
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			out[k] = strings.TrimSpace(t)
		case json.Number:
			out[k] = t.String()
		case float64:
			b, _ := json.Marshal(t)
			out[k] = string(b)
		case bool:
			if t {
				out[k] = "true"
			} else {
				out[k] = "false"
			}
		case nil:
		default:
			dropped = append(dropped, k+"(type)")
		}
	}
	for k := range m {
		if _, ok := allowed[k]; !ok {
			dropped = append(dropped, k+"(unknown)")
		}
	}
	if len(dropped) > 0 {
		logger.Warn("llm.coerce.dropped", "dropped", dropped)
	}
	return out
}
