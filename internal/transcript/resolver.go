// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transcript

import (
	"github.com/ManuGH/transcriptd/internal/captions"
)

// Step names the cascade stage that produced a track.
type Step string

const (
	StepGeneratedPreferred Step = "generated_preferred"
	StepManualPreferred    Step = "manual_preferred"
	// StepFirstTrack looks at the catalog's first track in provider order and
	// accepts only the generated track of that language.
	StepFirstTrack Step = "first_track_generated"
)

// Resolve applies the preference cascade to cat:
//
//  1. a generated track for each preferred code, in order
//  2. a manual track for any preferred code, first in list order
//  3. the generated track matching the language of the catalog's first track
//
// It returns captions.ErrNoTranscript when every step misses.
func Resolve(cat *captions.Catalog, preferred []string) (captions.Track, Step, error) {
	for _, code := range preferred {
		if t, ok := cat.FindGenerated([]string{code}); ok {
			return t, StepGeneratedPreferred, nil
		}
	}

	if t, ok := cat.FindManual(preferred); ok {
		return t, StepManualPreferred, nil
	}

	if first, ok := cat.First(); ok {
		// A manual-only first language fails here on purpose.
		if t, ok := cat.FindGenerated([]string{first.LanguageCode}); ok {
			return t, StepFirstTrack, nil
		}
	}

	return captions.Track{}, "", captions.ErrNoTranscript
}
