/*
ledger.go - Ledger state and its mutations

PURPOSE:
  State is the complete ledger as a value: the validated records plus the
  opening-stock baseline. Every mutation (add, delete, import, opening
  stock edit) builds a candidate state and re-runs the full replay over
  it. There is no incremental path.

CRITICAL INVARIANTS:
  1. PURE: methods never mutate the receiver; they return a new State.
  2. ALL-OR-NOTHING: on error the caller keeps the State it already had.
  3. REPLAYED: Records of a State returned without error are sorted by date
     and carry replay-computed StockRemaining values.
  4. STABLE IDENTITY: replay only changes StockRemaining and order, never
     which records exist.

INFERENCE:
  Products that appear neither in OpeningStocks nor in the existing records
  get an inferred opening stock (see inference.go) before replay. Products
  the ledger already knows keep their implicit or explicit baseline.

SEE ALSO:
  - replay.go: ReplayLedger
  - book.go: owns the current State and persists it
*/
package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATE
// =============================================================================

type State struct {
	Records       []Record
	OpeningStocks OpeningStocks
}

// EmptyState returns a ledger with no records and no opening stocks.
func EmptyState() State {
	return State{Records: []Record{}, OpeningStocks: OpeningStocks{}}
}

func (s State) Clone() State {
	records := make([]Record, len(s.Records))
	copy(records, s.Records)
	return State{Records: records, OpeningStocks: s.OpeningStocks.Clone()}
}

// Find returns the record with the given id.
func (s State) Find(id RecordID) (Record, bool) {
	for _, rec := range s.Records {
		if rec.ID == id {
			return rec, true
		}
	}
	return Record{}, false
}

// Products returns every product name known to the ledger, records first
// then opening stocks without records.
func (s State) Products() []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range s.Records {
		if !seen[rec.Product] {
			seen[rec.Product] = true
			out = append(out, rec.Product)
		}
	}
	for product := range s.OpeningStocks {
		if !seen[product] {
			seen[product] = true
			out = append(out, product)
		}
	}
	return out
}

// Revalidate replays the state as-is.
func (s State) Revalidate() (State, error) {
	return replayState(s.Records, s.OpeningStocks)
}

// =============================================================================
// MUTATIONS
// =============================================================================

// AddRecord appends a manually entered record.
func (s State) AddRecord(rec Record) (State, error) {
	rec.Product = NormalizeProduct(rec.Product)
	if err := rec.Validate(); err != nil {
		return State{}, err
	}
	if _, exists := s.Find(rec.ID); exists {
		return State{}, fmt.Errorf("%w: %s", ErrDuplicateRecord, rec.ID)
	}

	opening := s.OpeningStocks.With(InferOpeningStocks([]Record{rec}, s.knownBaseline()))
	return replayState(append(cloneRecords(s.Records), rec), opening)
}

// DeleteRecord removes a record and replays the rest.
func (s State) DeleteRecord(id RecordID) (State, error) {
	remaining := make([]Record, 0, len(s.Records))
	found := false
	for _, rec := range s.Records {
		if rec.ID == id {
			found = true
			continue
		}
		remaining = append(remaining, rec)
	}
	if !found {
		return State{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return replayState(remaining, s.OpeningStocks)
}

// ImportReport describes what an import added.
type ImportReport struct {
	Imported              int
	InferredOpeningStocks OpeningStocks
}

// Import merges a batch of new records into the ledger.
func (s State) Import(batch []Record) (State, ImportReport, error) {
	ids := make(map[RecordID]bool, len(s.Records)+len(batch))
	for _, rec := range s.Records {
		ids[rec.ID] = true
	}

	incoming := make([]Record, len(batch))
	for i, rec := range batch {
		rec.Product = NormalizeProduct(rec.Product)
		if err := rec.Validate(); err != nil {
			return State{}, ImportReport{}, err
		}
		if ids[rec.ID] {
			return State{}, ImportReport{}, fmt.Errorf("%w: %s", ErrDuplicateRecord, rec.ID)
		}
		ids[rec.ID] = true
		incoming[i] = rec
	}

	inferred := InferOpeningStocks(incoming, s.knownBaseline())
	next, err := replayState(append(cloneRecords(s.Records), incoming...), s.OpeningStocks.With(inferred))
	if err != nil {
		return State{}, ImportReport{}, err
	}
	return next, ImportReport{Imported: len(incoming), InferredOpeningStocks: inferred}, nil
}

// SetOpeningStock sets the baseline of one product.
func (s State) SetOpeningStock(product string, qty decimal.Decimal) (State, error) {
	product = NormalizeProduct(product)
	if product == "" {
		return State{}, fmt.Errorf("%w: opening stock needs a product name", ErrInvalidRecord)
	}
	if qty.IsNegative() {
		return State{}, fmt.Errorf("%w: opening stock for %q cannot be negative (%s)", ErrInvalidRecord, product, qty)
	}
	return replayState(s.Records, s.OpeningStocks.Set(product, qty))
}

// ClearOpeningStocks drops every baseline; products start from zero.
func (s State) ClearOpeningStocks() (State, error) {
	return replayState(s.Records, OpeningStocks{})
}

// Aggregates computes the dashboard summaries of this state.
func (s State) Aggregates(opts AggregateOptions) Aggregates {
	return ComputeAggregates(s.Records, opts)
}

// knownBaseline is the set of products inference must leave alone: those
// with an explicit opening stock and those already present in the ledger.
func (s State) knownBaseline() OpeningStocks {
	known := s.OpeningStocks.Clone()
	for _, rec := range s.Records {
		if !known.Has(rec.Product) {
			known[rec.Product] = decimal.Zero
		}
	}
	return known
}

func replayState(records []Record, opening OpeningStocks) (State, error) {
	replayed, err := ReplayLedger(records, opening)
	if err != nil {
		return State{}, err
	}
	return State{Records: replayed, OpeningStocks: opening.Clone()}, nil
}

func cloneRecords(records []Record) []Record {
	out := make([]Record, len(records), len(records)+1)
	copy(out, records)
	return out
}
