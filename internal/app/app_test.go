package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kabir-fx/abhiraksha/constants"
	"github.com/kabir-fx/abhiraksha/internal/common"
	"github.com/kabir-fx/abhiraksha/internal/extract"
	"github.com/kabir-fx/abhiraksha/internal/llm/gemini"
	"github.com/kabir-fx/abhiraksha/internal/llm/openai"
	"github.com/kabir-fx/abhiraksha/internal/metrics"
)

func baseConfig() *common.Config {
	return &common.Config{
		LLM:        common.LLMConfig{Provider: "gemini"},
		Extraction: common.ExtractionConfig{DischargeStrategy: "auto"},
		PDF:        common.PDFConfig{PdftotextBin: "pdftotext"},
	}
}

func TestNewGenerator(t *testing.T) {
	assert.Nil(t, NewGenerator(common.LLMConfig{Provider: "openai"}, nil))

	gen := NewGenerator(common.LLMConfig{Provider: "openai", APIKey: "k", Model: "gpt-4o-mini"}, nil)
	require.IsType(t, &openai.Client{}, gen)
	assert.Equal(t, "gpt-4o-mini", gen.Model())

	gen = NewGenerator(common.LLMConfig{Provider: "gemini", APIKey: "k"}, nil)
	require.IsType(t, &gemini.Client{}, gen)
	assert.Equal(t, "gemini-2.5-flash", gen.Model())
}

func TestBuild_AutoStrategyFollowsKey(t *testing.T) {
	cfg := baseConfig()
	d, err := Build(t.Context(), cfg, nil, metrics.New(metrics.Namespace))
	require.NoError(t, err)
	t.Cleanup(d.Close)
	assert.Equal(t, constants.StrategyRegex, d.Processor.StrategyFor(constants.Discharge))
	assert.Nil(t, d.Store)
	assert.NoError(t, d.Ready(t.Context()))

	cfg.LLM.APIKey = "k"
	d, err = Build(t.Context(), cfg, nil, nil)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	assert.Equal(t, constants.StrategyAI, d.Processor.StrategyFor(constants.Discharge))
}

func TestBuild_WithStore(t *testing.T) {
	cfg := baseConfig()
	cfg.Database.DSN = "sqlite:" + filepath.Join(t.TempDir(), "policies.db")

	d, err := Build(t.Context(), cfg, nil, nil)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	require.NotNil(t, d.Store)
	require.NoError(t, d.Ready(t.Context()))

	require.NoError(t, d.Store.Upsert(t.Context(), extract.InsurancePolicy{PolicyNumber: "P-9", Insurer: "Acme"}))
	res, err := d.Processor.LookupPolicy(t.Context(), "P-9")
	require.NoError(t, err)
	assert.Equal(t, "Acme", res.Data.Insurer)
}

func TestBuild_Errors(t *testing.T) {
	cfg := baseConfig()
	cfg.Extraction.DischargeStrategy = "ai"
	_, err := Build(t.Context(), cfg, nil, nil)
	assert.Error(t, err, "ai strategy without a model")

	cfg = baseConfig()
	cfg.Extraction.LookupFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = Build(t.Context(), cfg, nil, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg = baseConfig()
	cfg.Database.DSN = "mysql://nope"
	_, err = Build(t.Context(), cfg, nil, nil)
	assert.Error(t, err)

	_, err = OpenStore(t.Context(), common.DatabaseConfig{}, nil)
	assert.True(t, errors.Is(err, ErrStoreDisabled))
}
