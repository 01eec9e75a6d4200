package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kabir-fx/abhiraksha/constants"
	"github.com/kabir-fx/abhiraksha/internal/async"
	"github.com/kabir-fx/abhiraksha/internal/common"
	"github.com/kabir-fx/abhiraksha/internal/extract"
)

const failureMessage = "Failed to process document."

// FileExtractor is the behavior the inbox depends on.
type FileExtractor interface {
	ExtractFile(ctx context.Context, doc constants.DocumentType, path string) (extract.Outcome, error)
}

type Inbox struct {
	Dir       string
	OutDir    string
	Debounce  time.Duration
	extractor FileExtractor
	queue     async.Queue
	logger    *slog.Logger
}

func NewInbox(dir, outDir string, debounce time.Duration, extractor FileExtractor, logger *slog.Logger) *Inbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inbox{Dir: dir, OutDir: outDir, Debounce: debounce, extractor: extractor, logger: logger}
}

// Prepare creates the outbox and one inbox subdirectory per document type.
func (in *Inbox) Prepare() error {
	if in.Dir == "" || in.OutDir == "" {
		return common.NewAppError("INBOX_CONFIG", "inbox and outbox directories are required", common.ErrInvalidInput)
	}
	for _, doc := range constants.DocumentTypes() {
		if err := os.MkdirAll(filepath.Join(in.Dir, string(doc)), 0o755); err != nil {
			return fmt.Errorf("create inbox dir: %w", err)
		}
	}
	if err := os.MkdirAll(in.OutDir, 0o755); err != nil {
		return fmt.Errorf("create outbox dir: %w", err)
	}
	return nil
}

// Run watches the inbox and feeds q until ctx is done. Files already present
// are picked up on start.
func (in *Inbox) Run(ctx context.Context, q async.Queue) error {
	in.queue = q
	events, errs, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{in.Dir},
		InitialScan: true,
		Debounce:    in.Debounce,
		Logger:      in.logger,
	})
	if err != nil {
		return err
	}
	for {
		select {
		case path, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			in.Submit(ctx, path)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			in.logger.Warn("inbox.watch.error", "err", err)
		}
	}
}

// Submit queues one file. Files whose type cannot be inferred are skipped.
func (in *Inbox) Submit(ctx context.Context, path string) bool {
	if !Eligible(path) {
		return false
	}
	doc, ok := DocumentTypeFor(path)
	if !ok {
		in.logger.Warn("inbox.skip.unknown_type", "path", path)
		return false
	}
	if in.queue == nil {
		in.logger.Error("inbox.submit.no_queue", "path", path)
		return false
	}
	if err := in.queue.Enqueue(ctx, async.NewJob(path, doc)); err != nil {
		in.logger.Error("inbox.enqueue.failed", "path", path, "err", err)
		return false
	}
	return true
}

type failureRecord struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Handle extracts one queued file and writes the result into the outbox.
// Extraction errors are written as failure records, not returned.
func (in *Inbox) Handle(ctx context.Context, job async.Job) error {
	logger := in.logger.With("path", job.Path, "document", job.Document, "trace_id", job.TraceID)
	ctx = common.WithRequestID(ctx, job.TraceID)

	var payload any
	out, err := in.extractor.ExtractFile(ctx, job.Document, job.Path)
	switch {
	case err != nil:
		logger.Warn("inbox.extract.failed", "err", err)
		payload = failureRecord{Error: common.PublicMessage(err, failureMessage)}
	default:
		logger.Info("inbox.extract.ok", "success", out.OK(), "found", out.Found())
		payload = out
	}

	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	target := filepath.Join(in.OutDir, OutputName(job.Path, job.Document))
	if err := writeAtomic(target, body); err != nil {
		return err
	}
	logger.Info("inbox.result.written", "out", target)
	return nil
}

func writeAtomic(path string, body []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".result-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	_, werr := tmp.Write(append(body, '\n'))
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write result: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename result: %w", err)
	}
	return nil
}
