// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package captions

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrNoTranscript        = errors.New("captions: no transcript found")
	ErrTranscriptsDisabled = errors.New("captions: transcripts are disabled for this video")
	ErrVideoUnavailable    = errors.New("captions: video is unavailable")
	ErrRequestBlocked      = errors.New("captions: RequestBlocked: YouTube is blocking requests from this egress IP")
	ErrIPBlocked           = errors.New("captions: IPBlocked: too many requests from this egress IP")
	ErrUpstreamBadResponse = errors.New("captions: invalid response format or malformed data")
	ErrUpstreamUnavailable = errors.New("captions: host unreachable or transport failure")
	ErrVideoUnplayable     = errors.New("captions: video is unplayable")
	ErrRouteUnusable       = errors.New("captions: egress route cannot be used")
)

// ProviderError wraps a sentinel with the context of the failed call.
type ProviderError struct {
	Sentinel  error
	Operation string
	VideoID   string
	Status    int
	Reason    string
	Err       error // Nested lower-level error (e.g. net.Error)
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Operation, e.Sentinel)
	if e.VideoID != "" {
		msg = fmt.Sprintf("%s (video %s)", msg, e.VideoID)
	}
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}
