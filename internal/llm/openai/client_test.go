package openai

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
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model          string            `json:"model"`
			Messages       []map[string]any  `json:"messages"`
			ResponseFormat map[string]string `json:"response_format"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0]["role"])
		assert.Equal(t, "json_object", body.ResponseFormat["type"])

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  {\"a\":1}  "}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"}, nil)
	out, err := c.Generate(t.Context(), llm.Request{Purpose: "test", System: "sys", Prompt: "hi", JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
	assert.Equal(t, "gpt-4o-mini", c.Model())
}

func TestClient_GenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"not json", http.StatusOK, `<html>`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
			_, err := c.Generate(t.Context(), llm.Request{Prompt: "hi"})
			assert.Error(t, err)
		})
	}
}
