package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/stock-ledger/inventory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(n int) inventory.Date {
	return inventory.NewDate(2025, time.March, n)
}

func sale(id string, on int, product string, qty string) inventory.Record {
	return inventory.Record{
		ID:      inventory.RecordID(id),
		Date:    day(on),
		Product: product,
		Movement: inventory.Sale{
			Quantity:  d(qty),
			UnitCost:  d("2"),
			UnitPrice: d("5"),
		},
	}
}

func adjust(id string, on int, product string, level string) inventory.Record {
	return inventory.Record{
		ID:       inventory.RecordID(id),
		Date:     day(on),
		Product:  product,
		Movement: inventory.Adjustment{NewStock: d(level)},
	}
}

func ids(records []inventory.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = string(r.ID)
	}
	return out
}

func stocks(records []inventory.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.StockRemaining.String()
	}
	return out
}

func assertQty(t *testing.T, expected string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, d(expected).Equal(got), "expected %s, got %s", expected, got)
}
