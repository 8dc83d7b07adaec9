/*
replay.go - Ledger replay engine

PURPOSE:
  Recomputes every record's StockRemaining by folding the chronologically
  sorted log over the opening-stock baseline. This is the single source of
  truth for remaining stock.

ALGORITHM:
  1. Stable sort by Date (same-day records keep input order)
  2. stock[p] = opening[p], or 0 when absent
  3. For each record:
       Adjustment: stock[p] = NewStock
       Sale:       stock[p] -= Quantity, fail if negative
     and emit a copy with StockRemaining = stock[p]

ATOMICITY:
  On failure nothing is returned but the error. Inputs are never mutated,
  so callers keep their previous ledger untouched.

EXAMPLE:
  opening {A: 0}, [sell A 5 on day1]           -> ValidationError(available 0, requested 5)
  opening {A: 5}, [sell A 5 on day1]           -> day1.StockRemaining = 0
  [adjust A to 10 on day1, sell A 3 on day2]   -> day2.StockRemaining = 7

SEE ALSO:
  - inference.go: computes the opening stocks replay starts from
  - ledger.go: every mutation goes through ReplayLedger
*/
package inventory

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ReplayLedger sorts records by date and recomputes StockRemaining for each.
// The result has the same records as the input, in chronological order.
func ReplayLedger(records []Record, opening OpeningStocks) ([]Record, error) {
	sorted := SortChronologically(records)

	stock := make(map[string]decimal.Decimal, len(opening))
	for product, qty := range opening {
		stock[product] = qty
	}

	for i := range sorted {
		rec := &sorted[i]
		before := stock[rec.Product] // zero value when absent

		var level decimal.Decimal
		switch m := rec.Movement.(type) {
		case Adjustment:
			level = m.NewStock
		case Sale:
			level = before.Sub(m.Quantity)
			if level.IsNegative() {
				return nil, &ValidationError{
					RecordID:  rec.ID,
					Product:   rec.Product,
					Date:      rec.Date,
					Available: before,
					Requested: m.Quantity,
				}
			}
		default:
			return nil, fmt.Errorf("%w: record %s has no movement", ErrInvalidRecord, rec.ID)
		}

		stock[rec.Product] = level
		rec.StockRemaining = level
	}

	return sorted, nil
}

// SortChronologically returns a date-ordered copy of records. Records on the
// same date keep their relative order.
func SortChronologically(records []Record) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}
