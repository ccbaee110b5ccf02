// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package captions

// Catalog is the set of tracks available for one video.
//
// Iteration order is manual tracks first, then generated tracks, each group
// in the order the provider listed them. That order is whatever the upstream
// returned and is not guaranteed stable across upstream versions. A language
// code listed twice within one group keeps its first track; later duplicates
// are dropped.
type Catalog struct {
	VideoID   string
	manual    []Track
	generated []Track
}

// NewCatalog builds a catalog from tracks in provider order.
func NewCatalog(videoID string, tracks []Track) *Catalog {
	c := &Catalog{VideoID: videoID}
	for _, t := range tracks {
		c.add(t)
	}
	return c
}

func (c *Catalog) add(t Track) {
	if t.VideoID == "" {
		t.VideoID = c.VideoID
	}
	// First track listed for a (code, provenance) pair wins.
	if t.Provenance == Manual {
		if _, ok := find(c.manual, []string{t.LanguageCode}); !ok {
			c.manual = append(c.manual, t)
		}
		return
	}
	t.Provenance = Generated
	if _, ok := find(c.generated, []string{t.LanguageCode}); !ok {
		c.generated = append(c.generated, t)
	}
}

// Len reports the number of tracks.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.manual) + len(c.generated)
}

// Tracks returns all tracks in iteration order.
func (c *Catalog) Tracks() []Track {
	if c == nil {
		return nil
	}
	out := make([]Track, 0, c.Len())
	out = append(out, c.manual...)
	return append(out, c.generated...)
}

// First returns the first track in iteration order.
func (c *Catalog) First() (Track, bool) {
	if c.Len() == 0 {
		return Track{}, false
	}
	if len(c.manual) > 0 {
		return c.manual[0], true
	}
	return c.generated[0], true
}

// FindGenerated returns the generated track for the first code in codes that has one.
func (c *Catalog) FindGenerated(codes []string) (Track, bool) {
	if c == nil {
		return Track{}, false
	}
	return find(c.generated, codes)
}

// FindManual returns the manual track for the first code in codes that has one.
func (c *Catalog) FindManual(codes []string) (Track, bool) {
	if c == nil {
		return Track{}, false
	}
	return find(c.manual, codes)
}

// Find walks codes in order and returns the manual track for a code if one
// exists, otherwise the generated one.
func (c *Catalog) Find(codes []string) (Track, bool) {
	if c == nil {
		return Track{}, false
	}
	for _, code := range codes {
		if t, ok := find(c.manual, []string{code}); ok {
			return t, true
		}
		if t, ok := find(c.generated, []string{code}); ok {
			return t, true
		}
	}
	return Track{}, false
}

// Languages lists the distinct language codes in iteration order.
func (c *Catalog) Languages() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range c.Tracks() {
		if _, ok := seen[t.LanguageCode]; ok {
			continue
		}
		seen[t.LanguageCode] = struct{}{}
		out = append(out, t.LanguageCode)
	}
	return out
}

func find(tracks []Track, codes []string) (Track, bool) {
	for _, code := range codes {
		for _, t := range tracks {
			if t.LanguageCode == code {
				return t, true
			}
		}
	}
	return Track{}, false
}
