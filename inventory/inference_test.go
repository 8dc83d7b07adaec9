package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/stock-ledger/inventory"
)

func TestInfer_DeepestRunningMinimum(t *testing.T) {
	// GIVEN: A new product selling 3, 2, 4 units
	got := inventory.InferOpeningStocks([]inventory.Record{
		sale("s1", 1, "A", "3"),
		sale("s2", 2, "A", "2"),
		sale("s3", 3, "A", "4"),
	}, nil)

	// THEN: The opening stock covers all 9 units
	require.Contains(t, got, "A")
	assertQty(t, "9", got["A"])
}

func TestInfer_SortsChronologically(t *testing.T) {
	got := inventory.InferOpeningStocks([]inventory.Record{
		sale("s2", 2, "A", "1"),
		sale("s1", 1, "A", "2"),
	}, inventory.OpeningStocks{})

	assertQty(t, "3", got["A"])
}

func TestInfer_SkipsKnownProducts(t *testing.T) {
	known := inventory.OpeningStocks{"A": d("1")}
	got := inventory.InferOpeningStocks([]inventory.Record{
		sale("s1", 1, "A", "5"),
		sale("s2", 1, "B", "2"),
	}, known)

	assert.NotContains(t, got, "A")
	assertQty(t, "2", got["B"])
	assertQty(t, "1", known["A"])
}

func TestInfer_AdjustmentsIgnored(t *testing.T) {
	// GIVEN: An adjustment-only product and a product whose sales follow an adjustment
	got := inventory.InferOpeningStocks([]inventory.Record{
		adjust("a1", 1, "A", "10"),
		adjust("a2", 1, "B", "10"),
		sale("s1", 2, "B", "4"),
	}, nil)

	// THEN: A needs nothing, B still gets its sales total
	assertQty(t, "0", got["A"])
	assertQty(t, "4", got["B"])
}

func TestInfer_Empty(t *testing.T) {
	got := inventory.InferOpeningStocks(nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestInfer_MinimalAndSufficient(t *testing.T) {
	// The inferred value replays; one unit less does not.
	records := []inventory.Record{
		sale("s1", 1, "A", "2"),
		sale("s2", 2, "A", "3"),
		sale("s3", 3, "A", "1"),
	}
	inferred := inventory.InferOpeningStocks(records, nil)
	assertQty(t, "6", inferred["A"])

	_, err := inventory.ReplayLedger(records, inferred)
	require.NoError(t, err)

	_, err = inventory.ReplayLedger(records, inventory.OpeningStocks{"A": inferred["A"].Sub(d("1"))})
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
}
