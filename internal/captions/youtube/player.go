// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package youtube

import (
	"strings"

	"github.com/ManuGH/transcriptd/internal/captions"
)

type playerRequest struct {
	Context innertubeContext `json:"context"`
	VideoID string           `json:"videoId"`
}

type innertubeContext struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
}

type playerResponse struct {
	Playability playabilityStatus `json:"playabilityStatus"`
	Captions    struct {
		Renderer *captionsRenderer `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type playabilityStatus struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type captionsRenderer struct {
	CaptionTracks []captionTrack `json:"captionTracks"`
}

type captionTrack struct {
	BaseURL        string    `json:"baseUrl"`
	Name           trackName `json:"name"`
	LanguageCode   string    `json:"languageCode"`
	Kind           string    `json:"kind"`
	IsTranslatable bool      `json:"isTranslatable"`
}

type trackName struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (n trackName) String() string {
	if len(n.Runs) > 0 {
		return n.Runs[0].Text
	}
	return n.SimpleText
}

const (
	playabilityOK    = "OK"
	playabilityError = "ERROR"
)

// err maps a non-playable status onto a provider error, nil when playable.
func (p playabilityStatus) err(videoID string) error {
	if p.Status == "" || p.Status == playabilityOK {
		return nil
	}

	sentinel := captions.ErrVideoUnplayable
	reason := strings.ToLower(p.Reason)
	switch {
	case strings.Contains(reason, "not a bot"):
		sentinel = captions.ErrRequestBlocked
	case p.Status == playabilityError || strings.Contains(reason, "unavailable"):
		sentinel = captions.ErrVideoUnavailable
	}
	return &captions.ProviderError{Sentinel: sentinel, Operation: opPlayer, VideoID: videoID, Reason: p.Status + ": " + p.Reason}
}

func (t captionTrack) track(videoID string) captions.Track {
	provenance := captions.Manual
	if t.Kind == "asr" {
		provenance = captions.Generated
	}
	return captions.Track{
		VideoID:      videoID,
		LanguageCode: t.LanguageCode,
		Language:     t.Name.String(),
		Provenance:   provenance,
		Translatable: t.IsTranslatable,
		Handle:       strings.Replace(t.BaseURL, "&fmt=srv3", "", 1),
	}
}
