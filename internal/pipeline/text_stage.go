package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kabir-fx/abhiraksha/internal/common"
	"github.com/kabir-fx/abhiraksha/internal/textract"
)

// TextSource is the black-box document to text collaborator.
type TextSource interface {
	Extract(ctx context.Context, path string) (textract.Result, error)
	ExtractBytes(ctx context.Context, data []byte, ext string) (textract.Result, error)
}

const (
	noTextMessage      = "Could not extract text from this PDF. It may be a scanned image; only text-based PDFs are supported."
	readFailedMessage  = "Failed to process the PDF. Please try again."
	unsupportedMessage = "Only PDF and text files are accepted."
)

// TextStage reads documents into the merged text stream and classifies
// failures.
type TextStage struct {
	Source TextSource
	Logger *slog.Logger
}

func NewTextStage(src TextSource, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStage{Source: src, Logger: logger}
}

func (s *TextStage) FromFile(ctx context.Context, path string) (string, error) {
	res, err := s.Source.Extract(ctx, path)
	if err != nil {
		return "", s.classify(ctx, err)
	}
	return res.Text, nil
}

func (s *TextStage) FromUpload(ctx context.Context, data []byte, ext string) (string, error) {
	res, err := s.Source.ExtractBytes(ctx, data, ext)
	if err != nil {
		return "", s.classify(ctx, err)
	}
	return res.Text, nil
}

func (s *TextStage) classify(ctx context.Context, err error) error {
	log := common.LoggerFromContext(ctx, s.Logger)
	switch {
	case errors.Is(err, textract.ErrNoText):
		log.Warn("pipeline.text.empty")
		return common.NewAppError("NO_TEXT", noTextMessage, errors.Join(common.ErrPrecondition, err))
	case errors.Is(err, textract.ErrUnsupported):
		return common.NewAppError("UNSUPPORTED_FORMAT", unsupportedMessage, errors.Join(common.ErrInvalidInput, err))
	default:
		log.Error("pipeline.text.failed", "error", err)
		return common.NewAppError("TEXT_EXTRACTION_FAILED", readFailedMessage, errors.Join(common.ErrInternal, err))
	}
}
