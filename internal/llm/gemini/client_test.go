package gemini

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kabir-fx/abhiraksha/internal/llm"
)

func TestClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		cfg := body["generationConfig"].(map[string]any)
		assert.Equal(t, "application/json", cfg["responseMimeType"])
		assert.Contains(t, body, "systemInstruction")

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"decision\":"},{"text":"\"Accepted\"}"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "g-key", BaseURL: srv.URL}, nil)
	out, err := c.Generate(t.Context(), llm.Request{System: "judge", Prompt: "claim", JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"decision":"Accepted"}`, out)
}

func TestClient_GenerateBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.Generate(t.Context(), llm.Request{Prompt: "claim"})
	assert.ErrorContains(t, err, "SAFETY")
}

func TestClient_GenerateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.Generate(t.Context(), llm.Request{Prompt: "claim"})
	var se *llm.StatusError
	assert.ErrorAs(t, err, &se)
}
