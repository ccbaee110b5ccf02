// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package transcript

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/transcriptd/internal/cache"
	"github.com/ManuGH/transcriptd/internal/captions"
	"github.com/ManuGH/transcriptd/internal/egress"
	xglog "github.com/ManuGH/transcriptd/internal/log"
)

func newTestService(t *testing.T, p captions.Provider) *Service {
	t.Helper()
	pool, err := egress.ParseRoutes([]string{"http://a:1", "http://b:2", "http://c:3", "http://d:4"})
	require.NoError(t, err)
	sel := egress.NewSelector(pool, cache.NewMemoryCache(0), time.Minute)
	return NewService(p, sel, Config{})
}

func TestResolveAndFormat_GeneratedEnglishForFrenchThenEnglish(t *testing.T) {
	p := newFakeProvider()
	en := track("vid", "en", captions.Generated)
	p.tracks["vid"] = []captions.Track{en, track("vid", "es", captions.Generated)}
	p.snippets[en.Handle] = []captions.Snippet{
		{Text: "hello", Start: 0, Duration: 1},
		{Text: "there", Start: 1.1, Duration: 1},
		{Text: "later", Start: 10, Duration: 1},
	}

	res, err := newTestService(t, p).ResolveAndFormat(context.Background(), "vid", Options{Languages: []string{"fr", "en"}})
	require.NoError(t, err)
	assert.Equal(t, "en", res.Language)
	assert.Equal(t, captions.Generated, res.Provenance)
	assert.Equal(t, StepGeneratedPreferred, res.Step)
	assert.Equal(t, "hello there\n\nlater", res.Text)
	assert.Equal(t, 2, res.Paragraphs)
}

func TestResolveAndFormat_SameRouteForBothCalls(t *testing.T) {
	p := newFakeProvider()
	for _, v := range []string{"v1", "v2", "v3", "v4", "v5", "v6"} {
		p.tracks[v] = []captions.Track{track(v, "en", captions.Generated)}
	}
	svc := newTestService(t, p)

	for _, v := range []string{"v1", "v2", "v3", "v4", "v5", "v6"} {
		_, err := svc.ResolveAndFormat(context.Background(), v, Options{})
		require.NoError(t, err)

		calls := p.callsFor(v)
		require.Len(t, calls, 2)
		assert.Equal(t, "list", calls[0].op)
		assert.Equal(t, "fetch", calls[1].op)
		assert.Equal(t, calls[0].route, calls[1].route, "catalog and snippet fetch must share a route")
		assert.NotEmpty(t, calls[0].correlationID)
		assert.Equal(t, calls[0].correlationID, calls[1].correlationID)
		assert.False(t, calls[0].route.IsDirect())
	}
}

func TestResolveAndFormat_KeepsCallerCorrelationID(t *testing.T) {
	p := newFakeProvider()
	p.tracks["vid"] = []captions.Track{track("vid", "en", captions.Manual)}

	ctx := xglog.ContextWithCorrelationID(context.Background(), "caller-cid")
	_, err := newTestService(t, p).ResolveAndFormat(ctx, "vid", Options{})
	require.NoError(t, err)
	assert.Equal(t, "caller-cid", p.callsFor("vid")[0].correlationID)
}

func TestResolveAndFormat_EmptySnippets(t *testing.T) {
	p := newFakeProvider()
	p.tracks["vid"] = []captions.Track{track("vid", "en", captions.Generated)}

	res, err := newTestService(t, p).ResolveAndFormat(context.Background(), "vid", Options{})
	require.NoError(t, err)
	assert.Equal(t, "", res.Text)
	assert.Equal(t, 0, res.Paragraphs)
}

func TestResolveAndFormat_GapThresholdOverride(t *testing.T) {
	p := newFakeProvider()
	en := track("vid", "en", captions.Generated)
	p.tracks["vid"] = []captions.Track{en}
	p.snippets[en.Handle] = []captions.Snippet{{Text: "a", Start: 0, Duration: 1}, {Text: "b", Start: 3, Duration: 1}}

	threshold := 5.0
	res, err := newTestService(t, p).ResolveAndFormat(context.Background(), "vid", Options{GapThreshold: &threshold})
	require.NoError(t, err)
	assert.Equal(t, "a b", res.Text)
}

func TestResolveAndFormat_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(p *fakeProvider)
		kind  Kind
	}{
		{
			name:  "empty catalog",
			setup: func(p *fakeProvider) {},
			kind:  KindNotFound,
		},
		{
			name: "listing blocked",
			setup: func(p *fakeProvider) {
				p.listErr["vid"] = &captions.ProviderError{Sentinel: captions.ErrRequestBlocked, Operation: "player"}
			},
			kind: KindUpstreamBlocked,
		},
		{
			name: "disabled",
			setup: func(p *fakeProvider) {
				p.listErr["vid"] = &captions.ProviderError{Sentinel: captions.ErrTranscriptsDisabled}
			},
			kind: KindCaptionsDisabled,
		},
		{
			name: "fetch fails with signature text",
			setup: func(p *fakeProvider) {
				p.tracks["vid"] = []captions.Track{track("vid", "en", captions.Generated)}
				p.fetchErr = errors.New("YouTube is blocking requests from your IP")
			},
			kind: KindUpstreamBlocked,
		},
		{
			name: "fetch fails otherwise",
			setup: func(p *fakeProvider) {
				p.tracks["vid"] = []captions.Track{track("vid", "en", captions.Generated)}
				p.fetchErr = errors.New("boom")
			},
			kind: KindUnclassified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakeProvider()
			tt.setup(p)

			res, err := newTestService(t, p).ResolveAndFormat(context.Background(), "vid", Options{})
			assert.Nil(t, res)
			var ce *ClassifiedError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.kind, ce.Kind)
			assert.Equal(t, tt.kind.Status(), ce.Status)
		})
	}
}

func TestResolveAndFormat_MissingVideoID(t *testing.T) {
	p := newFakeProvider()
	_, err := newTestService(t, p).ResolveAndFormat(context.Background(), "  ", Options{})
	var ce *ClassifiedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindInvalidInput, ce.Kind)
	assert.Empty(t, p.calls, "provider must not be called")
}

func TestResolveAndFormatSingleLanguage(t *testing.T) {
	p := newFakeProvider()
	manual := track("vid", "en", captions.Manual)
	p.tracks["vid"] = []captions.Track{track("vid", "en", captions.Generated), manual, track("vid", "de", captions.Generated)}
	p.snippets[manual.Handle] = []captions.Snippet{{Text: "hand made", Duration: 1}}
	svc := newTestService(t, p)

	res, err := svc.ResolveAndFormatSingleLanguage(context.Background(), "vid", "")
	require.NoError(t, err)
	assert.Equal(t, "en", res.Language)
	assert.Equal(t, captions.Manual, res.Provenance)
	assert.Equal(t, "hand made", res.Text)

	res, err = svc.ResolveAndFormatSingleLanguage(context.Background(), "vid", "de")
	require.NoError(t, err)
	assert.Equal(t, captions.Generated, res.Provenance)

	// No cascade: a missing language is NotFound even though others exist.
	_, err = svc.ResolveAndFormatSingleLanguage(context.Background(), "vid", "fr")
	var ce *ClassifiedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindNotFound, ce.Kind)
}

func TestNewService_Defaults(t *testing.T) {
	sel := egress.NewSelector(nil, nil, 0)
	zero, negative := 0.0, -1.0

	svc := NewService(newFakeProvider(), sel, Config{})
	assert.Equal(t, DefaultLanguages, svc.Languages())
	assert.Equal(t, DefaultGapThreshold, svc.threshold, "zero Config uses the default gap")

	assert.Equal(t, DefaultGapThreshold, NewService(newFakeProvider(), sel, Config{GapThreshold: &negative}).threshold)
	assert.Equal(t, 0.0, NewService(newFakeProvider(), sel, Config{GapThreshold: &zero}).threshold)
}

func TestNewService_ZeroConfigSegmentsWithDefaultGap(t *testing.T) {
	p := newFakeProvider()
	en := track("vid", "en", captions.Generated)
	p.tracks["vid"] = []captions.Track{en}
	p.snippets[en.Handle] = []captions.Snippet{
		{Text: "one", Start: 0, Duration: 1},
		{Text: "two", Start: 1.5, Duration: 1},
		{Text: "three", Start: 4, Duration: 1},
	}

	svc := NewService(p, egress.NewSelector(nil, nil, 0), Config{})
	res, err := svc.ResolveAndFormat(context.Background(), "vid", Options{})
	require.NoError(t, err)
	assert.Equal(t, "one two\n\nthree", res.Text)
}
