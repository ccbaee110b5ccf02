// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m))
		out = append(out, m)
	}
	return out
}

func TestConfigure_AttachesServiceAndVersion(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "svc", Version: "v9"})
	t.Cleanup(func() { Configure(Config{}) })

	l := WithComponent("unit")
	l.Info().Msg("hello")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "svc", lines[0]["service"])
	assert.Equal(t, "v9", lines[0]["version"])
	assert.Equal(t, "unit", lines[0][FieldComponent])
}

func TestWithComponentFromContext_AddsCorrelationFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr-1")

	l := WithComponentFromContext(ctx, "pipeline")
	l.Info().Msg("x")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "req-1", lines[0][FieldRequestID])
	assert.Equal(t, "corr-1", lines[0][FieldCorrelationID])
}

func TestContextHelpers_NilSafe(t *testing.T) {
	//nolint:staticcheck // exercising nil context handling
	assert.Empty(t, RequestIDFromContext(nil))
	//nolint:staticcheck
	assert.Empty(t, CorrelationIDFromContext(nil))
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}

func TestMiddleware_LogsStatus(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nope"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/transcript", nil))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, float64(http.StatusNotFound), lines[0][FieldStatus])
	assert.Equal(t, float64(4), lines[0]["bytes"])
	assert.Equal(t, "/api/transcript", lines[0][FieldPath])
}
