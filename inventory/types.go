/*
Package inventory provides the stock ledger engine.

PURPOSE:
  Holds the transaction log of a small shop (sales and stock adjustments)
  and derives, by replay, how much of each product is left after every
  record. The remaining stock is never trusted from input: it is always
  recomputed from the opening-stock baseline and the chronological log.

KEY CONCEPTS IN THIS FILE (types.go):
  - Record: one dated ledger entry for a product
  - Movement: what the record does to stock (Sale or Adjustment)
  - OpeningStocks: stock assumed before a product's first record

MOVEMENTS:
  Sale        consumes Quantity units; carries unit cost and price.
  Adjustment  sets the stock to NewStock regardless of the previous level
              (stock count, delivery, write-off).

  Movement is sealed: only this package can add variants, so a record is
  always exactly one of the two.

DERIVED AMOUNTS:
  Revenue = Quantity * UnitPrice
  Cost    = Quantity * UnitCost
  Profit  = Revenue - Cost
  All three are zero for adjustments.

SEE ALSO:
  - replay.go: the only writer of Record.StockRemaining
  - inference.go: opening stock for newly-seen products
  - aggregate.go: dashboard summaries
*/
package inventory

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type RecordID string

// NewRecordID returns a fresh, never reused record identifier.
func NewRecordID() RecordID {
	return RecordID(uuid.NewString())
}

// =============================================================================
// MOVEMENT - Sale | Adjustment
// =============================================================================

type Kind string

const (
	KindSale       Kind = "sale"
	KindAdjustment Kind = "adjustment"
)

// Movement is the effect a record has on stock.
type Movement interface {
	Kind() Kind
	sealed()
}

// Sale consumes Quantity units of stock.
type Sale struct {
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
	UnitPrice decimal.Decimal
}

func (Sale) Kind() Kind { return KindSale }
func (Sale) sealed()    {}

// Adjustment sets the stock level to NewStock.
type Adjustment struct {
	NewStock decimal.Decimal
}

func (Adjustment) Kind() Kind { return KindAdjustment }
func (Adjustment) sealed()    {}

// =============================================================================
// RECORD
// =============================================================================

// Record is a single ledger entry.
//
// StockRemaining is owned by the replay engine; whatever value a caller puts
// there is overwritten by ReplayLedger.
type Record struct {
	ID             RecordID
	Date           Date
	Product        string
	Movement       Movement
	StockRemaining decimal.Decimal
}

// NewSale builds a sale record with a fresh id.
func NewSale(date Date, product string, quantity, unitCost, unitPrice decimal.Decimal) Record {
	return Record{
		ID:      NewRecordID(),
		Date:    date,
		Product: NormalizeProduct(product),
		Movement: Sale{
			Quantity:  quantity,
			UnitCost:  unitCost,
			UnitPrice: unitPrice,
		},
	}
}

// NewAdjustment builds an adjustment record with a fresh id.
func NewAdjustment(date Date, product string, newStock decimal.Decimal) Record {
	return Record{
		ID:       NewRecordID(),
		Date:     date,
		Product:  NormalizeProduct(product),
		Movement: Adjustment{NewStock: newStock},
	}
}

// NormalizeProduct trims surrounding whitespace. Product names stay case-sensitive.
func NormalizeProduct(name string) string {
	return strings.TrimSpace(name)
}

func (r Record) Kind() Kind { return r.Movement.Kind() }

func (r Record) IsSale() bool {
	_, ok := r.Movement.(Sale)
	return ok
}

func (r Record) IsAdjustment() bool {
	_, ok := r.Movement.(Adjustment)
	return ok
}

// QuantitySold is the sale quantity, zero for adjustments.
func (r Record) QuantitySold() decimal.Decimal {
	if s, ok := r.Movement.(Sale); ok {
		return s.Quantity
	}
	return decimal.Zero
}

func (r Record) UnitCost() decimal.Decimal {
	if s, ok := r.Movement.(Sale); ok {
		return s.UnitCost
	}
	return decimal.Zero
}

func (r Record) UnitPrice() decimal.Decimal {
	if s, ok := r.Movement.(Sale); ok {
		return s.UnitPrice
	}
	return decimal.Zero
}

func (r Record) Revenue() decimal.Decimal { return r.QuantitySold().Mul(r.UnitPrice()) }
func (r Record) Cost() decimal.Decimal    { return r.QuantitySold().Mul(r.UnitCost()) }
func (r Record) Profit() decimal.Decimal  { return r.Revenue().Sub(r.Cost()) }

// Validate checks the field invariants of a record. It does not look at
// other records; stock feasibility is ReplayLedger's job.
func (r Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if r.Date.IsZero() {
		return fmt.Errorf("%w: record %s has no date", ErrInvalidRecord, r.ID)
	}
	if NormalizeProduct(r.Product) == "" {
		return fmt.Errorf("%w: record %s has no product name", ErrInvalidRecord, r.ID)
	}

	switch m := r.Movement.(type) {
	case Sale:
		if !m.Quantity.IsPositive() {
			return fmt.Errorf("%w: sale %s must have a positive quantity, got %s", ErrInvalidRecord, r.ID, m.Quantity)
		}
		if m.UnitCost.IsNegative() {
			return fmt.Errorf("%w: sale %s has negative unit cost %s", ErrInvalidRecord, r.ID, m.UnitCost)
		}
		if m.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: sale %s has negative unit price %s", ErrInvalidRecord, r.ID, m.UnitPrice)
		}
	case Adjustment:
		if m.NewStock.IsNegative() {
			return fmt.Errorf("%w: adjustment %s has negative stock %s", ErrInvalidRecord, r.ID, m.NewStock)
		}
	default:
		return fmt.Errorf("%w: record %s has no movement", ErrInvalidRecord, r.ID)
	}
	return nil
}

// =============================================================================
// OPENING STOCKS
// =============================================================================

// OpeningStocks maps a product to the stock it had before its earliest record.
// A missing product starts at zero.
type OpeningStocks map[string]decimal.Decimal

func (o OpeningStocks) Clone() OpeningStocks {
	out := make(OpeningStocks, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Has reports whether an explicit entry exists for product.
func (o OpeningStocks) Has(product string) bool {
	_, ok := o[product]
	return ok
}

// With returns a copy extended by additions. Existing entries win.
func (o OpeningStocks) With(additions OpeningStocks) OpeningStocks {
	out := o.Clone()
	for k, v := range additions {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

// Set returns a copy with product set to qty.
func (o OpeningStocks) Set(product string, qty decimal.Decimal) OpeningStocks {
	out := o.Clone()
	out[product] = qty
	return out
}
