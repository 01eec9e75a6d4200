package openai

import (
	"log/slog"
	"net/http"
	"time"
)

// Config for the OpenAI-compatible client.
type Config struct {
	APIKey      string
	BaseURL     string // default https://api.openai.com/v1
	Model       string // e.g., "gpt-4o-mini"
	Temperature float32
	Timeout     time.Duration // http client timeout
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}
}

func (c *Client) Model() string { return c.cfg.Model }
