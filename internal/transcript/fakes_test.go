// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package transcript

import (
	"context"
	"sync"

	"github.com/ManuGH/transcriptd/internal/captions"
	"github.com/ManuGH/transcriptd/internal/egress"
	xglog "github.com/ManuGH/transcriptd/internal/log"
)

type providerCall struct {
	op            string
	videoID       string
	route         egress.Route
	correlationID string
}

// fakeProvider serves catalogs and snippets keyed by video id.
type fakeProvider struct {
	mu       sync.Mutex
	tracks   map[string][]captions.Track
	snippets map[string][]captions.Snippet // keyed by Track.Handle
	listErr  map[string]error
	fetchErr error
	calls    []providerCall
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		tracks:   map[string][]captions.Track{},
		snippets: map[string][]captions.Snippet{},
		listErr:  map[string]error{},
	}
}

func (f *fakeProvider) ListTracks(ctx context.Context, videoID string, route egress.Route) (*captions.Catalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, providerCall{op: "list", videoID: videoID, route: route, correlationID: xglog.CorrelationIDFromContext(ctx)})
	if err := f.listErr[videoID]; err != nil {
		return nil, err
	}
	return captions.NewCatalog(videoID, f.tracks[videoID]), nil
}

func (f *fakeProvider) FetchSnippets(ctx context.Context, track captions.Track, route egress.Route) ([]captions.Snippet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, providerCall{op: "fetch", videoID: track.VideoID, route: route, correlationID: xglog.CorrelationIDFromContext(ctx)})
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.snippets[track.Handle], nil
}

func (f *fakeProvider) callsFor(videoID string) []providerCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []providerCall
	for _, c := range f.calls {
		if c.videoID == videoID {
			out = append(out, c)
		}
	}
	return out
}

func track(video, code string, p captions.Provenance) captions.Track {
	return captions.Track{VideoID: video, LanguageCode: code, Language: code, Provenance: p, Handle: video + "/" + code + "/" + string(p)}
}
