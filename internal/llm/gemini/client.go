package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kabir-fx/abhiraksha/internal/llm"
)

// Config for the Generative Language API client.
type Config struct {
	APIKey      string
	BaseURL     string // default https://generativelanguage.googleapis.com/v1beta
	Model       string // default gemini-2.5-flash
	Temperature float32
	Timeout     time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}, log: logger}
}

func (c *Client) Model() string { return c.cfg.Model }

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Generate implements llm.Generator with models/{model}:generateContent.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.generate.start",
		"req_id", rid,
		"provider", "gemini",
		"purpose", req.Purpose,
		"model", c.cfg.Model,
		"prompt_len", len(req.Prompt),
	)

	genCfg := map[string]any{"temperature": c.cfg.Temperature}
	if req.JSON {
		genCfg["responseMimeType"] = "application/json"
	}
	body := map[string]any{
		"contents":         []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
		"generationConfig": genCfg,
	}
	if req.System != "" {
		body["systemInstruction"] = content{Parts: []part{{Text: req.System}}}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model)
	headers := map[string]string{"x-goog-api-key": c.cfg.APIKey}
	raw, err := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if err != nil {
		c.log.Error("llm.generate.http_error",
			"req_id", rid, "purpose", req.Purpose, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("gemini: %w", err)
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		c.log.Error("llm.generate.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(gr.Candidates) == 0 {
		c.log.Error("llm.generate.no_candidates", "req_id", rid, "block_reason", gr.PromptFeedback.BlockReason)
		return "", fmt.Errorf("no candidates in gemini response (block reason %q)", gr.PromptFeedback.BlockReason)
	}

	var b strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	c.log.Info("llm.generate.ok",
		"req_id", rid,
		"purpose", req.Purpose,
		"finish_reason", gr.Candidates[0].FinishReason,
		"content_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

var _ llm.Generator = (*Client)(nil)
