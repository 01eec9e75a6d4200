package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kabir-fx/abhiraksha/internal/llm"
	"github.com/kabir-fx/abhiraksha/internal/llm/llmtest"
)

func TestObserve(t *testing.T) {
	m := New(Namespace)

	m.ObserveExtraction("bill", "regex", true, 12)
	m.ObserveExtraction("bill", "regex", false, 1)
	m.ObserveAdjudication("Accepted")
	m.ObserveAdjudication("")
	m.ObserveHTTP("POST", "/api/extract", "200", 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Extractions.WithLabelValues("bill", "regex", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Extractions.WithLabelValues("bill", "regex", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Adjudications.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/api/extract", "200")))
}

func TestInstrumentGenerator(t *testing.T) {
	m := New(Namespace)
	ok := InstrumentGenerator(&llmtest.Fake{Response: "{}"}, m)
	bad := InstrumentGenerator(&llmtest.Fake{Err: errors.New("down")}, m)

	_, err := ok.Generate(t.Context(), llm.Request{Purpose: "adjudicate"})
	require.NoError(t, err)
	_, err = bad.Generate(t.Context(), llm.Request{Purpose: "adjudicate"})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LLMRequests.WithLabelValues("adjudicate", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LLMRequests.WithLabelValues("adjudicate", "failure")))
	assert.Equal(t, "fake-model", ok.Model())
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveExtraction("bill", "regex", true, 1)
	m.ObserveAdjudication("Accepted")
	m.SetInboxQueueSize(3)

	gen := &llmtest.Fake{}
	assert.Same(t, gen, InstrumentGenerator(gen, nil))
}

func TestHandler(t *testing.T) {
	m := New(Namespace)
	m.ObserveAdjudication("Pending")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `abhiraksha_adjudications_total{decision="Pending"} 1`)
}
