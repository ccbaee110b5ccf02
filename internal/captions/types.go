// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package captions

import (
	"context"

	"github.com/ManuGH/transcriptd/internal/egress"
)

// Provenance tells whether a track was machine-generated or authored by hand.
type Provenance string

const (
	Generated Provenance = "generated"
	Manual    Provenance = "manual"
)

// Track is one language/provenance variant of a video's captions.
type Track struct {
	VideoID      string
	LanguageCode string
	Language     string // human readable name, informational only
	Provenance   Provenance
	Translatable bool

	// Handle is opaque to everything but the provider that produced it.
	Handle string
}

// Snippet is one timed unit of caption text. Start and Duration are seconds.
type Snippet struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Provider fetches caption data through an explicit egress route. Both calls
// made while resolving one request must receive the same route.
type Provider interface {
	ListTracks(ctx context.Context, videoID string, route egress.Route) (*Catalog, error)
	FetchSnippets(ctx context.Context, track Track, route egress.Route) ([]Snippet, error)
}
