// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package videoid reduces the many YouTube URL shapes to a video identifier.
package videoid

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalid is returned when no identifier can be extracted.
var ErrInvalid = errors.New("invalid YouTube URL or could not extract video ID")

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

var youtubeHosts = map[string]bool{
	"youtube.com":              true,
	"www.youtube.com":          true,
	"m.youtube.com":            true,
	"music.youtube.com":        true,
	"youtube-nocookie.com":     true,
	"www.youtube-nocookie.com": true,
}

// pathPrefixes carry the id as the next path segment.
var pathPrefixes = []string{"/embed/", "/v/", "/e/", "/shorts/", "/live/"}

// Extract returns the video id contained in raw. Accepted forms:
//
//	https://www.youtube.com/watch?v=ID
//	https://youtu.be/ID
//	https://www.youtube.com/{embed,v,e,shorts,live}/ID
//	https://www.youtube.com/user/NAME#p/u/1/ID
//	ID
func Extract(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalid
	}
	if idPattern.MatchString(raw) {
		return raw, nil
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalid
	}
	host := strings.ToLower(u.Hostname())

	var candidate string
	switch {
	case host == "youtu.be" || host == "www.youtu.be":
		candidate = firstSegment(strings.TrimPrefix(u.Path, "/"))
	case youtubeHosts[host]:
		candidate = fromYouTubeURL(u)
	default:
		return "", ErrInvalid
	}

	if !idPattern.MatchString(candidate) {
		return "", ErrInvalid
	}
	return candidate, nil
}

func fromYouTubeURL(u *url.URL) string {
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	for _, prefix := range pathPrefixes {
		if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
			return firstSegment(rest)
		}
	}
	// Legacy channel pages: /user/NAME#p/u/1/ID
	if strings.HasPrefix(u.Path, "/user/") && u.Fragment != "" {
		parts := strings.Split(u.Fragment, "/")
		return parts[len(parts)-1]
	}
	return ""
}

func firstSegment(p string) string {
	if i := strings.IndexAny(p, "/?&#"); i >= 0 {
		return p[:i]
	}
	return p
}
