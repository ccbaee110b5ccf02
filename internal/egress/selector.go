// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package egress

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/ManuGH/transcriptd/internal/cache"
	xglog "github.com/ManuGH/transcriptd/internal/log"
	"github.com/ManuGH/transcriptd/internal/metrics"
)

const (
	// DefaultAffinityTTL bounds how long a correlation id stays pinned.
	DefaultAffinityTTL = 2 * time.Minute

	affinityKeyPrefix = "egress:affinity:"
)

// Selector picks a route per request. All calls sharing a correlation id get
// the same route for as long as the affinity entry lives.
type Selector struct {
	pool  []Route
	byKey map[string]Route
	store cache.Cache
	ttl   time.Duration
	intn  func(n int) int
}

// SelectorOption customises a Selector.
type SelectorOption func(*Selector)

// WithIntn replaces the random source (tests).
func WithIntn(fn func(n int) int) SelectorOption {
	return func(s *Selector) { s.intn = fn }
}

// NewSelector builds a selector over pool. An empty pool always selects the
// direct route. store may be nil, in which case calls are never pinned.
func NewSelector(pool []Route, store cache.Cache, ttl time.Duration, opts ...SelectorOption) *Selector {
	if ttl <= 0 {
		ttl = DefaultAffinityTTL
	}
	s := &Selector{
		pool:  append([]Route(nil), pool...),
		byKey: make(map[string]Route, len(pool)),
		store: store,
		ttl:   ttl,
		intn:  rand.IntN,
	}
	for _, r := range s.pool {
		s.byKey[r.Key()] = r
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pool returns a copy of the configured routes.
func (s *Selector) Pool() []Route {
	return append([]Route(nil), s.pool...)
}

// Select returns the route for correlationID. It never fails: an empty pool
// yields the direct route, and affinity store trouble degrades to a fresh pick.
func (s *Selector) Select(ctx context.Context, correlationID string) Route {
	if len(s.pool) == 0 {
		metrics.RecordEgressSelection(directKey)
		return Direct()
	}

	key := affinityKeyPrefix + correlationID
	if s.store != nil && correlationID != "" {
		if pinned, ok := s.store.Get(ctx, key); ok {
			if r, known := s.byKey[pinned]; known {
				metrics.RecordEgressSelection(r.Endpoint())
				return r
			}
		}
	}

	r := s.pool[s.intn(len(s.pool))]
	if s.store != nil && correlationID != "" {
		s.store.Set(ctx, key, r.Key(), s.ttl)
	}

	logger := xglog.WithComponentFromContext(ctx, "egress")
	logger.Debug().
		Str(xglog.FieldEvent, "egress.selected").
		Str(xglog.FieldRouteHost, r.Endpoint()).
		Int("pool_size", len(s.pool)).
		Msg("egress route selected")

	metrics.RecordEgressSelection(r.Endpoint())
	return r
}
