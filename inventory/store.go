/*
store.go - Persistence boundary for the ledger state

PURPOSE:
  The engine itself performs no I/O. A StateStore keeps the two persisted
  artifacts between sessions:
    - the full record list
    - the opening-stock map
  Each artifact is read independently at startup and both are rewritten
  together after every successful mutation.

MISSING VS CORRUPT:
  A missing artifact loads as its empty value with a nil error.
  An artifact that exists but cannot be decoded returns an error wrapping
  ErrCorruptState; the Book then starts that artifact empty.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite key-value table
  - inventory/store/memory.go: in-memory, for tests

SEE ALSO:
  - book.go: the only caller
  - encode.go: the JSON form of both artifacts
*/
package inventory

import "context"

type StateStore interface {
	// LoadRecords returns the persisted records, or an empty slice when none were saved.
	LoadRecords(ctx context.Context) ([]Record, error)

	// LoadOpeningStocks returns the persisted opening stocks, or an empty map.
	LoadOpeningStocks(ctx context.Context) (OpeningStocks, error)

	// SaveState rewrites both artifacts. Either both are written or neither is.
	SaveState(ctx context.Context, state State) error

	// Reset deletes both artifacts.
	Reset(ctx context.Context) error
}
