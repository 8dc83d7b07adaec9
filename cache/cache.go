// Package cache memoizes ledger summaries. Aggregates are pure functions of
// the ledger state, so entries are keyed by the Book revision that produced
// them and never need explicit invalidation.
package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/stock-ledger/inventory"
)

type SummaryCache interface {
	Get(ctx context.Context, key string) (*inventory.Aggregates, bool, error)
	Set(ctx context.Context, key string, value *inventory.Aggregates, ttl time.Duration) error
}

type NoopSummaryCache struct{}

func (NoopSummaryCache) Get(_ context.Context, _ string) (*inventory.Aggregates, bool, error) {
	return nil, false, nil
}

func (NoopSummaryCache) Set(_ context.Context, _ string, _ *inventory.Aggregates, _ time.Duration) error {
	return nil
}

// Key identifies the aggregates of a ledger revision under opts.
func Key(revision string, opts inventory.AggregateOptions) string {
	return "summary:" + revision + ":" + opts.LowStockThreshold.String()
}

// Summarizer serves aggregates through a SummaryCache. Cache failures are
// logged and fall through to a fresh computation.
type Summarizer struct {
	cache SummaryCache
	ttl   time.Duration
	log   zerolog.Logger
}

func NewSummarizer(c SummaryCache, ttl time.Duration, log zerolog.Logger) *Summarizer {
	if c == nil {
		c = NoopSummaryCache{}
	}
	return &Summarizer{cache: c, ttl: ttl, log: log}
}

// Summary returns the aggregates of state, which must be the state Book
// reported for revision (see inventory.Book.Snapshot).
func (s *Summarizer) Summary(ctx context.Context, revision string, state inventory.State, opts inventory.AggregateOptions) inventory.Aggregates {
	key := Key(revision, opts)

	cached, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("key", key).Msg("summary cache read failed")
	case ok:
		return *cached
	}

	agg := state.Aggregates(opts)
	if err := s.cache.Set(ctx, key, &agg, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("summary cache write failed")
	}
	return agg
}
