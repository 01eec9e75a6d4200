package llm

import "context"

// Request is one single-shot model call.
type Request struct {
	// Purpose labels logs and metrics, e.g. "extract.discharge".
	Purpose string
	System  string
	Prompt  string
	// JSON asks the provider for a JSON-only response when it supports it.
	JSON bool
}

// Generator is the model client every component receives explicitly. It is
// built once at startup and is read-only afterwards. Implementations make
// exactly one attempt per call.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Model() string
}
