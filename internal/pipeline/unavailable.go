package pipeline

import (
	"context"
	"errors"

	"github.com/kabir-fx/abhiraksha/internal/textract"
)

var errNoTextSource = errors.New("no document text source configured")

type unavailableSource struct{}

func (unavailableSource) Extract(context.Context, string) (textract.Result, error) {
	return textract.Result{}, errNoTextSource
}

func (unavailableSource) ExtractBytes(context.Context, []byte, string) (textract.Result, error) {
	return textract.Result{}, errNoTextSource
}
