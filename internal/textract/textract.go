// Package textract turns a source document into the single merged text
// stream the extractors read. Layout is not preserved and scanned pages are
// not recognized.
package textract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kabir-fx/abhiraksha/constants"
)

// ErrNoText means the document produced no usable text, typically a scanned
// image-only PDF.
var ErrNoText = errors.New("no extractable text")

// ErrUnsupported is returned for extensions other than .pdf and .txt.
var ErrUnsupported = errors.New("unsupported document format")

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
}

type Result struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "plain-text"
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	cp := *e
	cp.runner = r
	return &cp
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("textract.start", "ext", ext)

	var res Result
	var err error
	switch ext {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.TEXT:
		res, err = extractPlain(path)
	default:
		e.logger.Error("textract.unsupported", "ext", ext)
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	if strings.TrimSpace(res.Text) == "" {
		e.logger.Warn("textract.empty", "method", res.Method, "pages", res.Pages)
		return res, ErrNoText
	}
	e.logger.Info("textract.ok",
		"method", res.Method,
		"pages", res.Pages,
		"chars", utf8.RuneCountInString(res.Text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// ExtractBytes writes an uploaded document to a temporary file and extracts
// it. ext selects the strategy.
func (e *Extractor) ExtractBytes(ctx context.Context, data []byte, ext string) (Result, error) {
	f, err := os.CreateTemp("", "abhiraksha-*."+constants.NormalizeExt(ext))
	if err != nil {
		return Result{}, fmt.Errorf("create temp file: %w", err)
	}
	name := f.Name()
	defer func() {
		if err := os.Remove(name); err != nil {
			e.logger.Warn("textract.cleanup_error", "error", err)
		}
	}()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return Result{}, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return Result{}, fmt.Errorf("close temp file: %w", err)
	}
	return e.Extract(ctx, name)
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (Result, error) {
	// pdftotext -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return Result{Method: "pdf-text", Warnings: []string{clip(string(errb), 1<<10)}}, fmt.Errorf("pdftotext: %w", err)
	}
	text, pages := mergePages(string(out))
	return Result{Text: text, Pages: pages, Method: "pdf-text"}, nil
}

func extractPlain(path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{Method: "plain-text"}, fmt.Errorf("read text file: %w", err)
	}
	text, pages := mergePages(string(b))
	return Result{Text: text, Pages: pages, Method: "plain-text"}, nil
}

// mergePages joins form-feed separated pages into one stream. A trailing
// form feed does not start a new page.
func mergePages(s string) (string, int) {
	s = strings.TrimRight(s, "\f")
	pages := 1 + strings.Count(s, "\f")
	s = strings.ReplaceAll(s, "\f", "\n")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return s, pages
}
