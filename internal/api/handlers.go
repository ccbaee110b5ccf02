// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	xglog "github.com/ManuGH/transcriptd/internal/log"
	"github.com/ManuGH/transcriptd/internal/transcript"
	"github.com/ManuGH/transcriptd/internal/videoid"
)

const (
	msgInvalidURL  = "Invalid YouTube URL"
	msgMissingURL  = "Missing video_url"
	msgInvalidJSON = "Invalid JSON body"
	msgBulkEmpty   = "Please provide a non-empty array of video_urls."

	maxBulkDelay = 10 * time.Second
)

type transcriptRequest struct {
	VideoURL     string   `json:"video_url"`
	Languages    []string `json:"languages,omitempty"`
	GapThreshold *float64 `json:"gap_threshold,omitempty"`
}

type transcriptResponse struct {
	Transcript   string `json:"transcript"`
	VideoID      string `json:"video_id"`
	Language     string `json:"language"`
	LanguageName string `json:"language_name,omitempty"`
	Provenance   string `json:"provenance"`
}

type getTranscriptRequest struct {
	VideoURL string `json:"video_url"`
	Language string `json:"language,omitempty"`
}

type getTranscriptResponse struct {
	VideoID  string `json:"video_id"`
	Language string `json:"language"`
	FullText string `json:"full_text"`
}

type bulkRequest struct {
	// VideoURLs stays untyped so non-array input is reported as such and
	// non-string entries are dropped.
	VideoURLs any      `json:"video_urls"`
	Languages []string `json:"languages,omitempty"`
	// Delay is the minimum start spacing in milliseconds.
	Delay *int64 `json:"delay,omitempty"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeBadRequest(w, msgInvalidJSON)
		return false
	}
	return true
}

// videoIDFrom validates the URL field and writes the 400 itself on failure.
func videoIDFrom(w http.ResponseWriter, raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		writeBadRequest(w, msgMissingURL)
		return "", false
	}
	id, err := videoid.Extract(raw)
	if err != nil {
		writeBadRequest(w, msgInvalidURL)
		return "", false
	}
	return id, true
}

func cleanLanguages(in []string) []string {
	var out []string
	for _, l := range in {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	var req transcriptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, ok := videoIDFrom(w, req.VideoURL)
	if !ok {
		return
	}
	if req.GapThreshold != nil && *req.GapThreshold < 0 {
		writeBadRequest(w, "gap_threshold must not be negative")
		return
	}

	res, err := s.svc.ResolveAndFormat(r.Context(), id, transcript.Options{
		Languages:    cleanLanguages(req.Languages),
		GapThreshold: req.GapThreshold,
	})
	if err != nil {
		writeClassified(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, transcriptResponse{
		Transcript:   res.Text,
		VideoID:      res.VideoID,
		Language:     res.Language,
		LanguageName: res.LanguageName,
		Provenance:   string(res.Provenance),
	})
}

func (s *Server) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	var req getTranscriptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, ok := videoIDFrom(w, req.VideoURL)
	if !ok {
		return
	}

	res, err := s.svc.ResolveAndFormatSingleLanguage(r.Context(), id, req.Language)
	if err != nil {
		writeClassified(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, getTranscriptResponse{
		VideoID:  res.VideoID,
		Language: res.Language,
		FullText: res.Text,
	})
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	list, ok := req.VideoURLs.([]any)
	if !ok || len(list) == 0 {
		writeBadRequest(w, msgBulkEmpty)
		return
	}
	urls := make([]string, 0, len(list))
	for _, v := range list {
		if u, ok := v.(string); ok && strings.TrimSpace(u) != "" {
			urls = append(urls, u)
		}
	}
	if s.cfg.BulkMaxItems > 0 && len(urls) > s.cfg.BulkMaxItems {
		writeBadRequest(w, fmt.Sprintf("Too many video_urls: at most %d per request.", s.cfg.BulkMaxItems))
		return
	}

	interval := s.cfg.BulkInterval
	if req.Delay != nil {
		d := time.Duration(*req.Delay) * time.Millisecond
		if d < 0 || d > maxBulkDelay {
			writeBadRequest(w, fmt.Sprintf("delay must be between 0 and %d milliseconds.", maxBulkDelay.Milliseconds()))
			return
		}
		// Callers may slow the pacing down, never speed it up.
		if d > interval {
			interval = d
		}
	}

	report, err := s.svc.Bulk(r.Context(), urls, transcript.BulkOptions{
		Languages:   cleanLanguages(req.Languages),
		Interval:    interval,
		Concurrency: s.cfg.BulkConcurrency,
	})
	if err != nil {
		logger := xglog.WithComponentFromContext(r.Context(), "api")
		logger.Warn().Err(err).Str(xglog.FieldEvent, "bulk.interrupted").Msg("bulk run ended early")
	}

	status, filename := http.StatusOK, "transcripts.txt"
	if report.Succeeded() == 0 && report.Failed() > 0 {
		status, filename = http.StatusBadRequest, "transcript_errors.txt"
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(status)
	_, _ = w.Write([]byte(report.Render()))
}
