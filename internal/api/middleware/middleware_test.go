// SPDX-License-Identifier: MIT

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/transcriptd/internal/log"
)

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var gotReq, gotCorr string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = log.RequestIDFromContext(r.Context())
		gotCorr = log.CorrelationIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, gotReq)
	assert.Equal(t, gotReq, gotCorr, "correlation id defaults to the request id")
	assert.Equal(t, gotReq, rec.Header().Get(HeaderRequestID))
}

func TestRequestID_HonoursClientHeaders(t *testing.T) {
	var gotReq, gotCorr string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = log.RequestIDFromContext(r.Context())
		gotCorr = log.CorrelationIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	req.Header.Set(HeaderCorrelationID, "job-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "req-1", gotReq)
	assert.Equal(t, "job-42", gotCorr)
}

func TestRequestID_RejectsInvalidHeader(t *testing.T) {
	var gotReq string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = log.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, strings.Repeat("a", maxIDLength+1))
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Len(t, gotReq, 36, "oversized ids are replaced with a uuid")
}

func TestRecoverer_Returns500JSON(t *testing.T) {
	h := RequestID(Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/transcript", nil)
	req.Header.Set(HeaderRequestID, "panic-req")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "panic-req", body["requestId"])
	assert.Equal(t, "Unclassified", body["kind"])
}

func TestStack_RecordsRoutePattern(t *testing.T) {
	r := NewRouter(StackConfig{EnableMetrics: true})
	r.Get("/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := sampleCount(t, http.MethodGet, "/things/{id}", "418")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/abc", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
	assert.Equal(t, before+1, sampleCount(t, http.MethodGet, "/things/{id}", "418"))
	assert.Zero(t, testutil.ToFloat64(httpRequestsInFlight))
}

func sampleCount(t *testing.T, labels ...string) uint64 {
	t.Helper()
	h, ok := httpRequestDuration.WithLabelValues(labels...).(prometheus.Histogram)
	require.True(t, ok)
	m := &dto.Metric{}
	require.NoError(t, h.Write(m))
	return m.GetHistogram().GetSampleCount()
}

func TestTracing_FilterAndName(t *testing.T) {
	assert.False(t, shouldTrace(httptest.NewRequest(http.MethodGet, "/healthz", nil)))
	assert.False(t, shouldTrace(httptest.NewRequest(http.MethodGet, "/metrics", nil)))
	assert.True(t, shouldTrace(httptest.NewRequest(http.MethodPost, "/api/transcript", nil)))

	req := httptest.NewRequest(http.MethodPost, "/api/transcript?token=secret", nil)
	assert.Equal(t, "HTTP POST /api/transcript", spanName("transcriptd", req))
}

func TestTracing_PassesThrough(t *testing.T) {
	h := Tracing("transcriptd-test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
