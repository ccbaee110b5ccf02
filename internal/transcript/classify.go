// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transcript

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ManuGH/transcriptd/internal/captions"
)

// Kind is the stable, machine-readable outcome category of a failure.
type Kind string

const (
	KindNotFound           Kind = "NotFound"
	KindCaptionsDisabled   Kind = "CaptionsDisabled"
	KindVideoUnavailable   Kind = "VideoUnavailable"
	KindUpstreamBlocked    Kind = "UpstreamBlocked"
	KindUnclassified       Kind = "Unclassified"
	KindInvalidInput       Kind = "InvalidInput"
	KindConfigurationError Kind = "ConfigurationError"
)

// Status maps the kind onto its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindNotFound, KindVideoUnavailable:
		return http.StatusNotFound
	case KindCaptionsDisabled:
		return http.StatusForbidden
	case KindUpstreamBlocked:
		return http.StatusServiceUnavailable
	case KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ClassifiedError is the only error type returned by Service.
type ClassifiedError struct {
	Kind    Kind
	Status  int
	Message string
	// Details carries the raw provider text where it helps diagnostics.
	Details string

	err error
}

func (e *ClassifiedError) Error() string {
	if e.Details != "" && !strings.Contains(e.Message, e.Details) {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ClassifiedError) Unwrap() error { return e.err }

// NewInvalidInput builds the error for a missing or unparseable identifier.
func NewInvalidInput(message string) *ClassifiedError {
	return &ClassifiedError{Kind: KindInvalidInput, Status: KindInvalidInput.Status(), Message: message}
}

// NewConfigurationError builds the error for unusable server configuration.
func NewConfigurationError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{Kind: KindConfigurationError, Status: KindConfigurationError.Status(), Message: message, err: cause}
}

// Signatures of upstream blocking in provider error text. Matching is
// case-sensitive and limited to these phrases.
var blockingSignatures = []string{
	"YouTube is blocking requests",
	"RequestBlocked",
	"IPBlocked",
	"IpBlocked",
}

const proxyConfigMessage = "Server proxy configuration error."

const blockedMessage = "Could not retrieve transcript. This service might be temporarily blocked by YouTube. Please try again later."

// Classify maps err onto exactly one outcome. Typed sentinels are checked
// first; text signatures only decide between UpstreamBlocked and Unclassified.
func Classify(err error, videoID string) *ClassifiedError {
	if err == nil {
		return nil
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce
	}

	newErr := func(kind Kind, msg, details string) *ClassifiedError {
		return &ClassifiedError{Kind: kind, Status: kind.Status(), Message: msg, Details: details, err: err}
	}

	switch {
	case errors.Is(err, captions.ErrNoTranscript):
		return newErr(KindNotFound, fmt.Sprintf("No transcript found for video ID: %s. The video might not have subtitles or they are disabled.", videoID), "")
	case errors.Is(err, captions.ErrTranscriptsDisabled):
		return newErr(KindCaptionsDisabled, fmt.Sprintf("Transcripts are disabled for video ID: %s.", videoID), "")
	case errors.Is(err, captions.ErrVideoUnavailable), errors.Is(err, captions.ErrVideoUnplayable):
		return newErr(KindVideoUnavailable, fmt.Sprintf("Video %s is unavailable.", videoID), "")
	case errors.Is(err, captions.ErrIPBlocked), errors.Is(err, captions.ErrRequestBlocked):
		return newErr(KindUpstreamBlocked, blockedMessage, err.Error())
	case errors.Is(err, captions.ErrRouteUnusable):
		return NewConfigurationError(proxyConfigMessage, err)
	}

	raw := err.Error()
	for _, sig := range blockingSignatures {
		if strings.Contains(raw, sig) {
			return newErr(KindUpstreamBlocked, blockedMessage, raw)
		}
	}
	return newErr(KindUnclassified, "An unexpected error occurred: "+raw, "")
}
