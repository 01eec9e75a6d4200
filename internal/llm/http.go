package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// StatusError is a non-2xx provider response. Body is kept for logs only.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status: %d", e.StatusCode)
}

// SendJSON posts body as JSON to url and returns the raw response body.
// It is provider-agnostic; callers decide the URL and headers.
func SendJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}

	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		logger.Error("llm.http.encode_error", "req_id", reqID, "error", err)
		return nil, fmt.Errorf("encode json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		logger.Error("llm.http.build_request_error", "req_id", reqID, "error", err)
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	logger.Debug("llm.http.request", "req_id", reqID, "content_length", len(bs))

	resp, err := client.Do(req)
	if err != nil {
		logger.Error("llm.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logger.Warn("llm.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("llm.http.read_error", "req_id", reqID, "error", err)
		return nil, fmt.Errorf("read response: %w", err)
	}

	logger.Info("llm.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 2<<10)}
	}
	return raw, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
