// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	xglog "github.com/ManuGH/transcriptd/internal/log"
	"github.com/ManuGH/transcriptd/internal/transcript"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Details string `json:"details,omitempty"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeBadRequest writes a 400 InvalidInput response
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: message, Kind: string(transcript.KindInvalidInput)})
}

// writeClassified renders a pipeline error with its classified status.
func writeClassified(w http.ResponseWriter, r *http.Request, err error) {
	var ce *transcript.ClassifiedError
	if !errors.As(err, &ce) {
		ce = transcript.Classify(err, "")
	}

	logger := xglog.WithComponentFromContext(r.Context(), "api")
	evt := logger.Warn()
	if ce.Status >= http.StatusInternalServerError {
		evt = logger.Error()
	}
	evt.Err(err).
		Str(xglog.FieldEvent, "request.failed").
		Str(xglog.FieldKind, string(ce.Kind)).
		Int(xglog.FieldStatus, ce.Status).
		Msg("transcript request failed")

	writeJSON(w, ce.Status, errorBody{Error: ce.Message, Kind: string(ce.Kind), Details: ce.Details})
}
