// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transcript

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/transcriptd/internal/captions"
	"github.com/ManuGH/transcriptd/internal/egress"
	xglog "github.com/ManuGH/transcriptd/internal/log"
	"github.com/ManuGH/transcriptd/internal/metrics"
	"github.com/ManuGH/transcriptd/internal/telemetry"
)

// DefaultLanguages is the preference order used when a request names none.
var DefaultLanguages = []string{"en", "es", "fr", "de", "it", "pt", "ru", "ja", "ko", "zh-Hans", "zh-Hant", "ar", "hi"}

// DefaultSingleLanguage is used by ResolveAndFormatSingleLanguage when the
// caller passes no language.
const DefaultSingleLanguage = "en"

// RouteSelector picks the egress route for a correlation id.
type RouteSelector interface {
	Select(ctx context.Context, correlationID string) egress.Route
}

// Config is the pipeline configuration, immutable after construction.
type Config struct {
	Languages []string
	// GapThreshold is the paragraph gap in seconds. nil or negative means
	// DefaultGapThreshold; 0 is honoured and splits on any positive gap.
	GapThreshold *float64
}

// Options override Config for a single request.
type Options struct {
	Languages []string
	// GapThreshold replaces Config.GapThreshold when non-nil.
	GapThreshold *float64
}

// Result is a successful resolution.
type Result struct {
	VideoID      string
	Language     string
	LanguageName string
	Provenance   captions.Provenance
	Step         Step
	Text         string
	Paragraphs   int
}

// Service runs the transcript pipeline.
type Service struct {
	provider  captions.Provider
	selector  RouteSelector
	languages []string
	threshold float64
	logger    zerolog.Logger
	tracer   trace.Tracer
}

// NewService wires the pipeline. The zero Config uses DefaultLanguages and
// DefaultGapThreshold.
func NewService(provider captions.Provider, selector RouteSelector, cfg Config) *Service {
	languages := cfg.Languages
	if len(languages) == 0 {
		languages = DefaultLanguages
	}
	threshold := DefaultGapThreshold
	if cfg.GapThreshold != nil && *cfg.GapThreshold >= 0 {
		threshold = *cfg.GapThreshold
	}

	return &Service{
		provider:  provider,
		selector:  selector,
		languages: append([]string(nil), languages...),
		threshold: threshold,
		logger:    xglog.WithComponent("transcript"),
		tracer:    telemetry.Tracer(telemetry.TracerName),
	}
}

// Languages returns the configured preference order.
func (s *Service) Languages() []string {
	return append([]string(nil), s.languages...)
}

// ResolveAndFormat runs the full cascade. Errors are always *ClassifiedError.
func (s *Service) ResolveAndFormat(ctx context.Context, videoID string, opts Options) (*Result, error) {
	languages := opts.Languages
	if len(languages) == 0 {
		languages = s.languages
	}
	threshold := s.threshold
	if opts.GapThreshold != nil {
		threshold = *opts.GapThreshold
	}

	return s.run(ctx, "transcript.resolve", videoID, languages, threshold, func(cat *captions.Catalog) (captions.Track, Step, error) {
		return Resolve(cat, languages)
	})
}

// ResolveAndFormatSingleLanguage fetches one language without the cascade:
// the manual track for the code, else the generated one.
func (s *Service) ResolveAndFormatSingleLanguage(ctx context.Context, videoID, language string) (*Result, error) {
	if strings.TrimSpace(language) == "" {
		language = DefaultSingleLanguage
	}
	languages := []string{language}

	return s.run(ctx, "transcript.resolve_single", videoID, languages, s.threshold, func(cat *captions.Catalog) (captions.Track, Step, error) {
		t, ok := cat.Find(languages)
		if !ok {
			return captions.Track{}, "", captions.ErrNoTranscript
		}
		return t, "", nil
	})
}

type selectFunc func(cat *captions.Catalog) (captions.Track, Step, error)

func (s *Service) run(ctx context.Context, spanName, videoID string, languages []string, threshold float64, pick selectFunc) (res *Result, err error) {
	if strings.TrimSpace(videoID) == "" {
		ce := NewInvalidInput("Missing video identifier")
		metrics.RecordResolution(string(ce.Kind))
		return nil, ce
	}

	ctx = ensureCorrelationID(ctx)
	ctx, span := s.tracer.Start(ctx, spanName, trace.WithAttributes(telemetry.RequestAttributes(videoID, languages)...))
	defer span.End()

	logger := xglog.WithContext(ctx, s.logger).With().Str(xglog.FieldVideoID, videoID).Logger()

	defer func() {
		if err == nil {
			metrics.RecordResolution("ok")
			return
		}
		ce := Classify(err, videoID)
		err = ce
		metrics.RecordResolution(string(ce.Kind))
		span.SetAttributes(telemetry.ErrorAttributes(string(ce.Kind))...)
		span.SetStatus(codes.Error, ce.Message)

		ev := logger.Warn()
		if ce.Kind == KindUnclassified {
			ev = logger.Error()
		}
		ev.Err(ce.Unwrap()).
			Str(xglog.FieldEvent, "transcript.failed").
			Str(xglog.FieldKind, string(ce.Kind)).
			Int(xglog.FieldStatus, ce.Status).
			Msg("transcript resolution failed")
	}()

	// One route for both provider calls of this request.
	route := s.selector.Select(ctx, xglog.CorrelationIDFromContext(ctx))
	span.SetAttributes(telemetry.RouteAttributes(route.Endpoint())...)
	logger.Info().
		Str(xglog.FieldEvent, "transcript.route_selected").
		Str(xglog.FieldRouteHost, route.Endpoint()).
		Msg("egress route selected")

	cat, err := s.provider.ListTracks(ctx, videoID, route)
	if err != nil {
		return nil, err
	}

	track, step, err := pick(cat)
	if err != nil {
		logger.Info().
			Str(xglog.FieldEvent, "transcript.no_track").
			Strs("available", cat.Languages()).
			Msg("no caption track matched")
		return nil, err
	}
	if step != "" {
		metrics.RecordCascadeStep(string(step))
	}
	span.SetAttributes(telemetry.TrackAttributes(track.LanguageCode, string(track.Provenance), string(step))...)

	snippets, err := s.provider.FetchSnippets(ctx, track, route)
	if err != nil {
		return nil, err
	}

	paragraphs := Segment(snippets, threshold)
	metrics.ObserveParagraphs(len(paragraphs))
	span.SetAttributes(telemetry.OutputAttributes(len(snippets), len(paragraphs))...)

	logger.Info().
		Str(xglog.FieldEvent, "transcript.resolved").
		Str(xglog.FieldLanguage, track.LanguageCode).
		Str(xglog.FieldProvenance, string(track.Provenance)).
		Str(xglog.FieldStep, string(step)).
		Int(xglog.FieldSnippets, len(snippets)).
		Int(xglog.FieldParagraphs, len(paragraphs)).
		Msg("transcript resolved")

	return &Result{
		VideoID:      videoID,
		Language:     track.LanguageCode,
		LanguageName: track.Language,
		Provenance:   track.Provenance,
		Step:         step,
		Text:         Format(paragraphs),
		Paragraphs:   len(paragraphs),
	}, nil
}

func ensureCorrelationID(ctx context.Context) context.Context {
	if xglog.CorrelationIDFromContext(ctx) != "" {
		return ctx
	}
	return xglog.ContextWithCorrelationID(ctx, uuid.NewString())
}
