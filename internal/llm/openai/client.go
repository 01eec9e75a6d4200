package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kabir-fx/abhiraksha/internal/llm"
)

// Generate implements llm.Generator using chat/completions.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.generate.start",
		"req_id", rid,
		"provider", "openai",
		"purpose", req.Purpose,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"prompt_len", len(req.Prompt),
	)

	messages := make([]map[string]any, 0, 2)
	if req.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]any{"role": "user", "content": req.Prompt})

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages":    messages,
	}
	if req.JSON {
		body["response_format"] = map[string]any{"type": "json_object"}
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, err := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if err != nil {
		c.log.Error("llm.generate.http_error",
			"req_id", rid, "purpose", req.Purpose, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("openai: %w", err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.generate.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.generate.no_choices",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("no choices in openai response")
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.log.Info("llm.generate.ok",
		"req_id", rid,
		"purpose", req.Purpose,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

var _ llm.Generator = (*Client)(nil)
