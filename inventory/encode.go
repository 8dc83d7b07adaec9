package inventory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// this file holds the persisted JSON form of both ledger artifacts.
// Records are a flat array with an explicit "kind"; opening stocks are a
// plain object of product name to number.

type recordJSON struct {
	ID             RecordID        `json:"id"`
	Date           Date            `json:"date"`
	Product        string          `json:"product_name"`
	Kind           Kind            `json:"kind"`
	QuantitySold   decimal.Decimal `json:"quantity_sold"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	NewStock       decimal.Decimal `json:"new_stock"`
	StockRemaining decimal.Decimal `json:"stock_remaining"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	js := recordJSON{
		ID:             r.ID,
		Date:           r.Date,
		Product:        r.Product,
		QuantitySold:   decimal.Zero,
		UnitCost:       decimal.Zero,
		UnitPrice:      decimal.Zero,
		NewStock:       decimal.Zero,
		StockRemaining: r.StockRemaining,
	}
	switch m := r.Movement.(type) {
	case Sale:
		js.Kind = KindSale
		js.QuantitySold = m.Quantity
		js.UnitCost = m.UnitCost
		js.UnitPrice = m.UnitPrice
	case Adjustment:
		js.Kind = KindAdjustment
		js.NewStock = m.NewStock
	default:
		return nil, fmt.Errorf("record %s has no movement", r.ID)
	}
	return json.Marshal(js)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var js recordJSON
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	*r = Record{
		ID:             js.ID,
		Date:           js.Date,
		Product:        js.Product,
		StockRemaining: js.StockRemaining,
	}
	switch js.Kind {
	case KindSale:
		r.Movement = Sale{Quantity: js.QuantitySold, UnitCost: js.UnitCost, UnitPrice: js.UnitPrice}
	case KindAdjustment:
		r.Movement = Adjustment{NewStock: js.NewStock}
	default:
		return fmt.Errorf("record %s: unknown kind %q", js.ID, js.Kind)
	}
	return nil
}

// EncodeRecords serializes records as a JSON array.
func EncodeRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(records)
}

// DecodeRecords parses the records artifact. Decoding failures wrap ErrCorruptState.
func DecodeRecords(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: records: %v", ErrCorruptState, err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// EncodeOpeningStocks serializes the opening-stock map as a JSON object of numbers.
func EncodeOpeningStocks(o OpeningStocks) ([]byte, error) {
	content := make(map[string]json.Number, len(o))
	for product, qty := range o {
		content[product] = json.Number(qty.String())
	}
	return json.Marshal(content)
}

// DecodeOpeningStocks parses the opening-stock artifact. Decoding failures
// and negative values wrap ErrCorruptState.
func DecodeOpeningStocks(data []byte) (OpeningStocks, error) {
	var content map[string]json.Number
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("%w: opening stocks: %v", ErrCorruptState, err)
	}
	out := make(OpeningStocks, len(content))
	for product, n := range content {
		qty, err := decimal.NewFromString(n.String())
		if err != nil || qty.IsNegative() {
			return nil, fmt.Errorf("%w: opening stock for %q is %q", ErrCorruptState, product, n)
		}
		out[product] = qty
	}
	return out, nil
}
