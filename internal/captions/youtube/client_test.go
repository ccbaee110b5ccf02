// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/transcriptd/internal/captions"
	"github.com/ManuGH/transcriptd/internal/egress"
)

const testWatchPage = `<html><script>ytcfg.set({"INNERTUBE_API_KEY": "test-key_123"});</script></html>`

type recordingSource struct {
	mu     sync.Mutex
	client *http.Client
	routes []egress.Route
}

func (s *recordingSource) Client(route egress.Route) (*http.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = append(s.routes, route)
	return s.client, nil
}

type fakeYouTube struct {
	t          *testing.T
	watchPage  string
	watchCode  int
	player     func(base string) string
	playerCode int
	timedText  string
	playerReq  playerRequest
	cookies    []string

	// consentFirst serves the EU consent form until a CONSENT cookie is sent.
	consentFirst bool
}

func (f *fakeYouTube) handler(base func() string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("CONSENT")
		if err == nil {
			f.cookies = append(f.cookies, c.Value)
		}
		if f.consentFirst && err != nil {
			_, _ = io.WriteString(w, `<form action="https://consent.youtube.com/s"><input name="v" value="cb.20240101"></form>`)
			return
		}
		if f.watchCode != 0 {
			w.WriteHeader(f.watchCode)
			return
		}
		page := f.watchPage
		if page == "" {
			page = testWatchPage
		}
		_, _ = io.WriteString(w, page)
	})
	mux.HandleFunc("/youtubei/v1/player", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, http.MethodPost, r.Method)
		assert.Equal(f.t, "test-key_123", r.URL.Query().Get("key"))
		assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&f.playerReq))
		if f.playerCode != 0 {
			w.WriteHeader(f.playerCode)
			return
		}
		_, _ = io.WriteString(w, f.player(base()))
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(f.t, r.URL.Query().Get("fmt"), "srv3 format must be stripped")
		_, _ = io.WriteString(w, f.timedText)
	})
	return mux
}

func newTestProvider(t *testing.T, f *fakeYouTube) (*Client, *recordingSource) {
	t.Helper()
	f.t = t
	var srv *httptest.Server
	srv = httptest.NewServer(f.handler(func() string { return srv.URL }))
	t.Cleanup(srv.Close)

	src := &recordingSource{client: srv.Client()}
	return New(src, WithBaseURL(srv.URL)), src
}

func playableWithTracks(base string) string {
	return fmt.Sprintf(`{
	  "playabilityStatus": {"status": "OK"},
	  "captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [
	    {"baseUrl": "%[1]s/api/timedtext?v=vid&lang=en&kind=asr&fmt=srv3", "name": {"runs": [{"text": "English (auto-generated)"}]}, "languageCode": "en", "kind": "asr", "isTranslatable": true},
	    {"baseUrl": "%[1]s/api/timedtext?v=vid&lang=de", "name": {"simpleText": "German"}, "languageCode": "de", "isTranslatable": false}
	  ]}}
	}`, base)
}

func TestListTracks_ParsesCatalog(t *testing.T) {
	f := &fakeYouTube{player: playableWithTracks}
	p, src := newTestProvider(t, f)

	route := egress.Route{Scheme: "http", Host: "proxy:1"}
	cat, err := p.ListTracks(context.Background(), "vid", route)
	require.NoError(t, err)
	require.Equal(t, 2, cat.Len())

	en, ok := cat.FindGenerated([]string{"en"})
	require.True(t, ok)
	assert.Equal(t, "English (auto-generated)", en.Language)
	assert.True(t, en.Translatable)
	assert.NotContains(t, en.Handle, "fmt=srv3")

	de, ok := cat.FindManual([]string{"de"})
	require.True(t, ok)
	assert.Equal(t, "German", de.Language)

	assert.Equal(t, "ANDROID", f.playerReq.Context.Client.ClientName)
	assert.Equal(t, "vid", f.playerReq.VideoID)
	assert.Equal(t, []egress.Route{route}, src.routes)
}

func TestListTracks_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		fake   *fakeYouTube
		target error
	}{
		{
			name:   "watch page rate limited",
			fake:   &fakeYouTube{watchCode: http.StatusTooManyRequests},
			target: captions.ErrIPBlocked,
		},
		{
			name:   "captcha page",
			fake:   &fakeYouTube{watchPage: `<div class="g-recaptcha"></div>`},
			target: captions.ErrIPBlocked,
		},
		{
			name:   "missing api key",
			fake:   &fakeYouTube{watchPage: `<html></html>`},
			target: captions.ErrUpstreamBadResponse,
		},
		{
			name:   "player rate limited",
			fake:   &fakeYouTube{playerCode: http.StatusTooManyRequests},
			target: captions.ErrIPBlocked,
		},
		{
			name: "bot check",
			fake: &fakeYouTube{player: func(string) string {
				return `{"playabilityStatus": {"status": "LOGIN_REQUIRED", "reason": "Sign in to confirm you’re not a bot"}}`
			}},
			target: captions.ErrRequestBlocked,
		},
		{
			name: "video unavailable",
			fake: &fakeYouTube{player: func(string) string {
				return `{"playabilityStatus": {"status": "ERROR", "reason": "This video is unavailable"}}`
			}},
			target: captions.ErrVideoUnavailable,
		},
		{
			name: "unplayable",
			fake: &fakeYouTube{player: func(string) string {
				return `{"playabilityStatus": {"status": "UNPLAYABLE", "reason": "Members only"}}`
			}},
			target: captions.ErrVideoUnplayable,
		},
		{
			name: "no captions renderer",
			fake: &fakeYouTube{player: func(string) string {
				return `{"playabilityStatus": {"status": "OK"}}`
			}},
			target: captions.ErrTranscriptsDisabled,
		},
		{
			name: "malformed player json",
			fake: &fakeYouTube{player: func(string) string {
				return `{"playabilityStatus": `
			}},
			target: captions.ErrUpstreamBadResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.fake.player == nil {
				tt.fake.player = playableWithTracks
			}
			p, _ := newTestProvider(t, tt.fake)
			_, err := p.ListTracks(context.Background(), "vid", egress.Direct())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)

			var pe *captions.ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, "vid", pe.VideoID)
		})
	}
}

func TestListTracks_AcceptsConsentInterstitial(t *testing.T) {
	f := &fakeYouTube{player: playableWithTracks, consentFirst: true}
	p, _ := newTestProvider(t, f)

	cat, err := p.ListTracks(context.Background(), "vid", egress.Direct())
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, []string{"YES+cb.20240101"}, f.cookies)
}

func TestFetchSnippets_DecodesTimedText(t *testing.T) {
	f := &fakeYouTube{
		player: playableWithTracks,
		timedText: `<?xml version="1.0" encoding="utf-8" ?><transcript>` +
			`<text start="0.0" dur="1.54">Hey there</text>` +
			`<text start="1.54" dur="4.16">how are &amp;#39;you&amp;#39; &amp;amp; &lt;i&gt;friends&lt;/i&gt;</text>` +
			`<text start="5.7" dur="1.0"></text>` +
			`<text start="8.0" dur="2">bye</text>` +
			`</transcript>`,
	}
	p, src := newTestProvider(t, f)

	route := egress.Route{Scheme: "socks5", Host: "s:1080"}
	cat, err := p.ListTracks(context.Background(), "vid", route)
	require.NoError(t, err)
	track, ok := cat.FindGenerated([]string{"en"})
	require.True(t, ok)

	snippets, err := p.FetchSnippets(context.Background(), track, route)
	require.NoError(t, err)
	assert.Equal(t, []captions.Snippet{
		{Text: "Hey there", Start: 0, Duration: 1.54},
		{Text: "how are 'you' & friends", Start: 1.54, Duration: 4.16},
		{Text: "bye", Start: 8, Duration: 2},
	}, snippets)

	for _, r := range src.routes {
		assert.Equal(t, route, r)
	}
}

func TestFetchSnippets_EmptyDocument(t *testing.T) {
	f := &fakeYouTube{player: playableWithTracks, timedText: ""}
	p, _ := newTestProvider(t, f)

	cat, err := p.ListTracks(context.Background(), "vid", egress.Direct())
	require.NoError(t, err)
	track, _ := cat.FindGenerated([]string{"en"})

	_, err = p.FetchSnippets(context.Background(), track, egress.Direct())
	assert.ErrorIs(t, err, captions.ErrUpstreamBadResponse)
}

func TestFetchSnippets_MissingHandle(t *testing.T) {
	p := New(&recordingSource{client: http.DefaultClient})
	_, err := p.FetchSnippets(context.Background(), captions.Track{VideoID: "vid"}, egress.Direct())
	assert.ErrorIs(t, err, captions.ErrUpstreamBadResponse)
}

type failingSource struct{ err error }

func (s failingSource) Client(egress.Route) (*http.Client, error) { return nil, s.err }

func TestUnusableRouteIsReported(t *testing.T) {
	p := New(failingSource{err: fmt.Errorf("%w: unsupported scheme", egress.ErrInvalidRoute)})
	route := egress.Route{Scheme: "ftp", Host: "x:21"}

	_, err := p.ListTracks(context.Background(), "vid", route)
	assert.ErrorIs(t, err, captions.ErrRouteUnusable)
	assert.ErrorIs(t, err, egress.ErrInvalidRoute)

	_, err = p.FetchSnippets(context.Background(), captions.Track{VideoID: "vid", Handle: "http://example.invalid/tt"}, route)
	assert.ErrorIs(t, err, captions.ErrRouteUnusable)
}

func TestListTracks_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	p := New(&recordingSource{client: &http.Client{}}, WithBaseURL(base))
	_, err := p.ListTracks(context.Background(), "vid", egress.Direct())
	assert.ErrorIs(t, err, captions.ErrUpstreamUnavailable)
}

func TestListTracks_ContextCancelled(t *testing.T) {
	f := &fakeYouTube{player: playableWithTracks}
	p, _ := newTestProvider(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.ListTracks(ctx, "vid", egress.Direct())
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, captions.ErrUpstreamUnavailable)
}
