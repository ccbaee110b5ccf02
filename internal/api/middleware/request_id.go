// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ManuGH/transcriptd/internal/log"
)

const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"

	maxIDLength = 128
)

// RequestID adds a unique ID to every request. The correlation id, which pins
// the egress route, is taken from X-Correlation-ID and otherwise equals the
// request id.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if !validID(reqID) {
			reqID = uuid.New().String()
		}
		corrID := r.Header.Get(HeaderCorrelationID)
		if !validID(corrID) {
			corrID = reqID
		}
		w.Header().Set(HeaderRequestID, reqID)

		ctx := log.ContextWithRequestID(r.Context(), reqID)
		ctx = log.ContextWithCorrelationID(ctx, corrID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validID accepts non-empty printable ASCII up to maxIDLength.
func validID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
