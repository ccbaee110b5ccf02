// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package youtube implements captions.Provider against YouTube's public
// watch page, the InnerTube player endpoint and the timedtext service.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/transcriptd/internal/captions"
	"github.com/ManuGH/transcriptd/internal/egress"
	xglog "github.com/ManuGH/transcriptd/internal/log"
	"github.com/ManuGH/transcriptd/internal/metrics"
)

const (
	defaultBaseURL = "https://www.youtube.com"

	// InnerTube client identity; the ANDROID client returns caption URLs
	// that do not require a proof-of-origin token.
	innertubeClientName    = "ANDROID"
	innertubeClientVersion = "20.10.38"

	maxPageBytes     = 8 << 20
	maxPlayerBytes   = 4 << 20
	maxTimedTextSize = 8 << 20

	opWatchPage = "watch_page"
	opPlayer    = "player"
	opTimedText = "timedtext"

	opListTracks    = "list_tracks"
	opFetchSnippets = "fetch_snippets"
)

var (
	apiKeyPattern       = regexp.MustCompile(`"INNERTUBE_API_KEY":\s*"([a-zA-Z0-9_-]+)"`)
	consentValuePattern = regexp.MustCompile(`name="v" value="(.*?)"`)
)

// HTTPClientSource hands out the client bound to an egress route.
type HTTPClientSource interface {
	Client(route egress.Route) (*http.Client, error)
}

// Client is the YouTube captions provider.
type Client struct {
	clients HTTPClientSource
	baseURL string
	logger  zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL points the client at another host (tests, mirrors).
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

// New creates a provider using clients for every outbound request.
func New(clients HTTPClientSource, opts ...Option) *Client {
	c := &Client{
		clients: clients,
		baseURL: defaultBaseURL,
		logger:  xglog.WithComponent("youtube"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ captions.Provider = (*Client)(nil)

// ListTracks returns every caption track YouTube reports for videoID.
func (c *Client) ListTracks(ctx context.Context, videoID string, route egress.Route) (cat *captions.Catalog, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProviderRequest(opListTracks, err, time.Since(start)) }()

	hc, err := c.clients.Client(route)
	if err != nil {
		return nil, &captions.ProviderError{Sentinel: captions.ErrRouteUnusable, Operation: opListTracks, VideoID: videoID, Err: err}
	}

	page, err := c.fetchWatchPage(ctx, hc, videoID)
	if err != nil {
		return nil, err
	}

	m := apiKeyPattern.FindSubmatch(page)
	if m == nil {
		return nil, &captions.ProviderError{Sentinel: captions.ErrUpstreamBadResponse, Operation: opWatchPage, VideoID: videoID, Reason: "INNERTUBE_API_KEY not found"}
	}

	player, err := c.fetchPlayer(ctx, hc, videoID, string(m[1]))
	if err != nil {
		return nil, err
	}

	if err := player.Playability.err(videoID); err != nil {
		return nil, err
	}

	renderer := player.Captions.Renderer
	if renderer == nil || len(renderer.CaptionTracks) == 0 {
		return nil, &captions.ProviderError{Sentinel: captions.ErrTranscriptsDisabled, Operation: opPlayer, VideoID: videoID}
	}

	tracks := make([]captions.Track, 0, len(renderer.CaptionTracks))
	for _, ct := range renderer.CaptionTracks {
		tracks = append(tracks, ct.track(videoID))
	}

	log := xglog.WithContext(ctx, c.logger)
	log.Debug().
		Str(xglog.FieldEvent, "youtube.tracks_listed").
		Str(xglog.FieldVideoID, videoID).
		Int("tracks", len(tracks)).
		Msg("caption tracks listed")

	return captions.NewCatalog(videoID, tracks), nil
}

// FetchSnippets downloads and decodes the timed text of track.
func (c *Client) FetchSnippets(ctx context.Context, track captions.Track, route egress.Route) (snippets []captions.Snippet, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProviderRequest(opFetchSnippets, err, time.Since(start)) }()

	if track.Handle == "" {
		return nil, &captions.ProviderError{Sentinel: captions.ErrUpstreamBadResponse, Operation: opTimedText, VideoID: track.VideoID, Reason: "track has no caption URL"}
	}

	hc, err := c.clients.Client(route)
	if err != nil {
		return nil, &captions.ProviderError{Sentinel: captions.ErrRouteUnusable, Operation: opFetchSnippets, VideoID: track.VideoID, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.Handle, nil)
	if err != nil {
		return nil, &captions.ProviderError{Sentinel: captions.ErrUpstreamBadResponse, Operation: opTimedText, VideoID: track.VideoID, Err: err}
	}
	setCommonHeaders(req)

	body, err := c.do(hc, req, opTimedText, track.VideoID, maxTimedTextSize)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &captions.ProviderError{Sentinel: captions.ErrUpstreamBadResponse, Operation: opTimedText, VideoID: track.VideoID, Reason: "empty caption document"}
	}

	snippets, err = parseTimedText(body)
	if err != nil {
		return nil, &captions.ProviderError{Sentinel: captions.ErrUpstreamBadResponse, Operation: opTimedText, VideoID: track.VideoID, Err: err}
	}
	return snippets, nil
}

func (c *Client) fetchWatchPage(ctx context.Context, hc *http.Client, videoID string) ([]byte, error) {
	watchURL := c.baseURL + "/watch?v=" + url.QueryEscape(videoID)

	page, err := c.getWatchPage(ctx, hc, watchURL, videoID, "")
	if err != nil {
		return nil, err
	}

	// EU visitors get a consent interstitial first; accept it once and reload.
	if bytes.Contains(page, []byte(`action="https://consent.youtube.com/s"`)) {
		m := consentValuePattern.FindSubmatch(page)
		if m == nil {
			return nil, &captions.ProviderError{Sentinel: captions.ErrUpstreamBadResponse, Operation: opWatchPage, VideoID: videoID, Reason: "consent cookie could not be created"}
		}
		page, err = c.getWatchPage(ctx, hc, watchURL, videoID, "YES+"+string(m[1]))
		if err != nil {
			return nil, err
		}
		if bytes.Contains(page, []byte(`action="https://consent.youtube.com/s"`)) {
			return nil, &captions.ProviderError{Sentinel: captions.ErrUpstreamBadResponse, Operation: opWatchPage, VideoID: videoID, Reason: "consent cookie rejected"}
		}
	}

	if bytes.Contains(page, []byte(`class="g-recaptcha"`)) {
		return nil, &captions.ProviderError{Sentinel: captions.ErrIPBlocked, Operation: opWatchPage, VideoID: videoID, Reason: "captcha challenge served"}
	}
	return page, nil
}

func (c *Client) getWatchPage(ctx context.Context, hc *http.Client, watchURL, videoID, consent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return nil, &captions.ProviderError{Sentinel: captions.ErrUpstreamBadResponse, Operation: opWatchPage, VideoID: videoID, Err: err}
	}
	setCommonHeaders(req)
	if consent != "" {
		req.AddCookie(&http.Cookie{Name: "CONSENT", Value: consent})
	}
	return c.do(hc, req, opWatchPage, videoID, maxPageBytes)
}

func (c *Client) fetchPlayer(ctx context.Context, hc *http.Client, videoID, apiKey string) (*playerResponse, error) {
	payload, err := json.Marshal(playerRequest{
		Context: innertubeContext{Client: innertubeClient{ClientName: innertubeClientName, ClientVersion: innertubeClientVersion}},
		VideoID: videoID,
	})
	if err != nil {
		return nil, &captions.ProviderError{Sentinel: captions.ErrUpstreamBadResponse, Operation: opPlayer, VideoID: videoID, Err: err}
	}

	endpoint := c.baseURL + "/youtubei/v1/player?key=" + url.QueryEscape(apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &captions.ProviderError{Sentinel: captions.ErrUpstreamBadResponse, Operation: opPlayer, VideoID: videoID, Err: err}
	}
	setCommonHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(hc, req, opPlayer, videoID, maxPlayerBytes)
	if err != nil {
		return nil, err
	}

	var pr playerResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, &captions.ProviderError{Sentinel: captions.ErrUpstreamBadResponse, Operation: opPlayer, VideoID: videoID, Reason: "decode player response", Err: err}
	}
	return &pr, nil
}

// do executes req and returns the body of a 200 response, mapping transport
// and status failures onto provider errors.
func (c *Client) do(hc *http.Client, req *http.Request, op, videoID string, limit int64) ([]byte, error) {
	resp, err := hc.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &captions.ProviderError{Sentinel: captions.ErrUpstreamUnavailable, Operation: op, VideoID: videoID, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &captions.ProviderError{Sentinel: captions.ErrIPBlocked, Operation: op, VideoID: videoID, Status: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &captions.ProviderError{Sentinel: captions.ErrUpstreamBadResponse, Operation: op, VideoID: videoID, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &captions.ProviderError{Sentinel: captions.ErrUpstreamUnavailable, Operation: op, VideoID: videoID, Reason: "read body", Err: err}
	}
	if int64(len(body)) > limit {
		return nil, &captions.ProviderError{Sentinel: captions.ErrUpstreamBadResponse, Operation: op, VideoID: videoID, Reason: fmt.Sprintf("response exceeds %d bytes", limit)}
	}
	return body, nil
}

func setCommonHeaders(req *http.Request) {
	req.Header.Set("Accept-Language", "en-US")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
}
