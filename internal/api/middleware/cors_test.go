// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCORS_WildcardReflectsOrigin(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	cors := CORS([]string{"*"})(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/transcript", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	cors.ServeHTTP(w, req)

	if val := w.Header().Get("Access-Control-Allow-Origin"); val != "http://example.com" {
		t.Errorf("expected reflected origin http://example.com, got %q", val)
	}
	if val := w.Header().Get("Vary"); !strings.Contains(val, "Origin") {
		t.Errorf("expected Vary header to contain Origin, got %q", val)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/transcript", nil)
	w = httptest.NewRecorder()
	cors.ServeHTTP(w, req)

	if val := w.Header().Get("Access-Control-Allow-Origin"); val != "" {
		t.Errorf("expected no Access-Control-Allow-Origin when Origin header is missing, got %q", val)
	}
}

func TestCORS_StrictList(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	cors := CORS([]string{"https://app.example.com"})(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	cors.ServeHTTP(w, req)

	if val := w.Header().Get("Access-Control-Allow-Origin"); val != "" {
		t.Errorf("expected origin to be rejected, got %q", val)
	}
	if w.Code != http.StatusOK {
		t.Errorf("expected request to still be served, got %d", w.Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	cors := CORS([]string{"*"})(handler)

	req := httptest.NewRequest(http.MethodOptions, "/api/bulk-transcripts", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	cors.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", w.Code)
	}
	if called {
		t.Error("preflight must not reach the handler")
	}
	if val := w.Header().Get("Access-Control-Expose-Headers"); !strings.Contains(val, "Content-Disposition") {
		t.Errorf("expected Content-Disposition to be exposed, got %q", val)
	}
}
