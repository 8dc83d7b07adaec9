/*
book.go - The owned ledger state and its load/save boundary

PURPOSE:
  A Book holds the one authoritative State of a running application and
  the StateStore it is persisted to. It is the only place where state is
  replaced.

MUTATION FLOW:
  1. Take the lock (one in-flight mutation at a time)
  2. Compute the candidate State with a pure State method
  3. Persist the candidate (both artifacts)
  4. Swap it in
  Any failure in 2 or 3 leaves the previous State in place.

LOADING:
  Both artifacts are loaded independently. A corrupt one is logged and
  started empty. If the loaded pair no longer replays, the Book starts
  with an empty ledger.

USAGE:
  book, err := inventory.OpenBook(ctx, store, inventory.WithLogger(log))
  report, err := book.Import(ctx, records)
  summary := book.Aggregates(inventory.AggregateOptions{})

SEE ALSO:
  - ledger.go: the pure State mutations
  - store.go: StateStore
*/
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type Book struct {
	mu    sync.RWMutex
	store StateStore
	state State
	log   zerolog.Logger

	epoch    string // unique per opened Book
	revision uint64 // bumped on every successful mutation
}

type BookOption func(*Book)

// WithLogger sets the logger used for load warnings and mutation traces.
func WithLogger(log zerolog.Logger) BookOption {
	return func(b *Book) { b.log = log }
}

// OpenBook loads the persisted state from store.
func OpenBook(ctx context.Context, store StateStore, opts ...BookOption) (*Book, error) {
	b := &Book{store: store, state: EmptyState(), log: zerolog.Nop(), epoch: uuid.NewString()}
	for _, opt := range opts {
		opt(b)
	}

	records, err := store.LoadRecords(ctx)
	switch {
	case errors.Is(err, ErrCorruptState):
		b.log.Warn().Err(err).Msg("persisted records are corrupt, starting with an empty ledger")
		records = []Record{}
	case err != nil:
		return nil, fmt.Errorf("loading records: %w", err)
	}

	opening, err := store.LoadOpeningStocks(ctx)
	switch {
	case errors.Is(err, ErrCorruptState):
		b.log.Warn().Err(err).Msg("persisted opening stocks are corrupt, starting without opening stocks")
		opening = OpeningStocks{}
	case err != nil:
		return nil, fmt.Errorf("loading opening stocks: %w", err)
	}

	state, err := State{Records: records, OpeningStocks: opening}.Revalidate()
	if err != nil {
		b.log.Warn().Err(err).Msg("persisted ledger does not replay, starting with an empty ledger")
		state = EmptyState()
	}
	b.state = state

	b.log.Info().
		Int("records", len(state.Records)).
		Int("opening_stocks", len(state.OpeningStocks)).
		Msg("ledger loaded")
	return b, nil
}

// State returns a copy of the current state.
func (b *Book) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state.Clone()
}

// Snapshot returns a copy of the current state together with its revision.
// Two snapshots share a revision only if they come from the same Book with
// no mutation in between.
func (b *Book) Snapshot() (State, string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state.Clone(), b.revisionLocked()
}

// Revision identifies the current state; see Snapshot.
func (b *Book) Revision() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionLocked()
}

func (b *Book) revisionLocked() string {
	return b.epoch + ":" + strconv.FormatUint(b.revision, 10)
}

// Aggregates computes the dashboard summaries of the current state.
func (b *Book) Aggregates(opts AggregateOptions) Aggregates {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state.Aggregates(opts)
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Add records a manual entry and returns the stored (replayed) record.
func (b *Book) Add(ctx context.Context, rec Record) (Record, error) {
	var stored Record
	err := b.mutate(ctx, "add", func(s State) (State, error) {
		next, err := s.AddRecord(rec)
		if err != nil {
			return State{}, err
		}
		stored, _ = next.Find(rec.ID)
		return next, nil
	})
	return stored, err
}

// Delete removes a record.
func (b *Book) Delete(ctx context.Context, id RecordID) error {
	return b.mutate(ctx, "delete", func(s State) (State, error) {
		return s.DeleteRecord(id)
	})
}

// Import merges a batch of records, inferring opening stocks for new products.
func (b *Book) Import(ctx context.Context, batch []Record) (ImportReport, error) {
	var report ImportReport
	err := b.mutate(ctx, "import", func(s State) (State, error) {
		next, r, err := s.Import(batch)
		report = r
		return next, err
	})
	return report, err
}

// Replace swaps the whole ledger for a fresh import of batch. The previous
// records and opening stocks are kept if the batch is rejected.
func (b *Book) Replace(ctx context.Context, batch []Record) (ImportReport, error) {
	var report ImportReport
	err := b.mutate(ctx, "replace", func(State) (State, error) {
		next, r, err := EmptyState().Import(batch)
		report = r
		return next, err
	})
	return report, err
}

// SetOpeningStock sets one product's baseline.
func (b *Book) SetOpeningStock(ctx context.Context, product string, qty decimal.Decimal) error {
	return b.mutate(ctx, "set_opening_stock", func(s State) (State, error) {
		return s.SetOpeningStock(product, qty)
	})
}

// ClearOpeningStocks drops every baseline.
func (b *Book) ClearOpeningStocks(ctx context.Context) error {
	return b.mutate(ctx, "clear_opening_stocks", func(s State) (State, error) {
		return s.ClearOpeningStocks()
	})
}

// Reset empties the ledger and deletes the persisted artifacts.
func (b *Book) Reset(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.Reset(ctx); err != nil {
		return fmt.Errorf("resetting store: %w", err)
	}
	b.state = EmptyState()
	b.revision++
	b.log.Info().Msg("ledger reset")
	return nil
}

func (b *Book) mutate(ctx context.Context, op string, fn func(State) (State, error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next, err := fn(b.state.Clone())
	if err != nil {
		b.log.Debug().Err(err).Str("op", op).Msg("mutation rejected")
		return err
	}
	if err := b.store.SaveState(ctx, next); err != nil {
		return fmt.Errorf("saving ledger: %w", err)
	}
	b.state = next
	b.revision++

	b.log.Debug().Str("op", op).Int("records", len(next.Records)).Msg("ledger updated")
	return nil
}
