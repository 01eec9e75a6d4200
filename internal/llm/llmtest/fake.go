// Package llmtest provides a scripted llm.Generator for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/kabir-fx/abhiraksha/internal/llm"
)

// Fake returns Response (or Err) for every call and records the requests.
type Fake struct {
	Response string
	Err      error
	Name     string

	mu       sync.Mutex
	requests []llm.Request
}

func (f *Fake) Generate(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}

func (f *Fake) Model() string {
	if f.Name == "" {
		return "fake-model"
	}
	return f.Name
}

// Calls is the number of Generate invocations so far.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// Requests returns a copy of the recorded requests.
func (f *Fake) Requests() []llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]llm.Request(nil), f.requests...)
}

var _ llm.Generator = (*Fake)(nil)
