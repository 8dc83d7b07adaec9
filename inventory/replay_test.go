package inventory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/stock-ledger/inventory"
)

// =============================================================================
// REPLAY - BASIC FOLD
// =============================================================================

func TestReplay_SaleWithoutStock_Rejected(t *testing.T) {
	// GIVEN: A has an explicit opening stock of 0
	// WHEN: Selling 5 units of A on day 1
	// THEN: Replay fails citing pre-stock 0 and requested 5
	out, err := inventory.ReplayLedger(
		[]inventory.Record{sale("s1", 1, "A", "5")},
		inventory.OpeningStocks{"A": d("0")},
	)

	require.Error(t, err)
	assert.Nil(t, out, "no partial output on failure")

	var verr *inventory.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "A", verr.Product)
	assert.Equal(t, day(1), verr.Date)
	assert.Equal(t, inventory.RecordID("s1"), verr.RecordID)
	assertQty(t, "0", verr.Available)
	assertQty(t, "5", verr.Requested)
	assert.True(t, errors.Is(err, inventory.ErrInsufficientStock))
}

func TestReplay_SaleWithInferredStock_Succeeds(t *testing.T) {
	// GIVEN: The same sale, with opening stock 5
	out, err := inventory.ReplayLedger(
		[]inventory.Record{sale("s1", 1, "A", "5")},
		inventory.OpeningStocks{"A": d("5")},
	)

	// THEN: The sale leaves 0 units
	require.NoError(t, err)
	require.Len(t, out, 1)
	assertQty(t, "0", out[0].StockRemaining)
}

func TestReplay_AdjustmentThenSale(t *testing.T) {
	// GIVEN: A adjusted to 10 on day 1, 3 sold on day 2
	out, err := inventory.ReplayLedger([]inventory.Record{
		adjust("a1", 1, "A", "10"),
		sale("s1", 2, "A", "3"),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"10", "7"}, stocks(out))
}

func TestReplay_AdjustmentAlone(t *testing.T) {
	// GIVEN: The day-2 sale above was deleted
	out, err := inventory.ReplayLedger([]inventory.Record{adjust("a1", 1, "A", "10")}, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"10"}, stocks(out))
}

func TestReplay_UnknownProductStartsAtZero(t *testing.T) {
	_, err := inventory.ReplayLedger([]inventory.Record{sale("s1", 1, "B", "1")}, inventory.OpeningStocks{"A": d("100")})

	var verr *inventory.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "B", verr.Product)
	assertQty(t, "0", verr.Available)
}

func TestReplay_AdjustmentOverridesRunningStock(t *testing.T) {
	// GIVEN: Opening 20, sell 5, then a stock count finds only 2, then sell 2
	out, err := inventory.ReplayLedger([]inventory.Record{
		sale("s1", 1, "A", "5"),
		adjust("a1", 2, "A", "2"),
		sale("s2", 3, "A", "2"),
	}, inventory.OpeningStocks{"A": d("20")})

	require.NoError(t, err)
	assert.Equal(t, []string{"15", "2", "0"}, stocks(out))
}

func TestReplay_ErrorCitesFirstViolation(t *testing.T) {
	// GIVEN: Two infeasible sales, on day 2 and day 3
	_, err := inventory.ReplayLedger([]inventory.Record{
		sale("late", 3, "A", "50"),
		sale("early", 2, "A", "8"),
		adjust("a1", 1, "A", "5"),
	}, nil)

	// THEN: The error points at the chronologically first one
	var verr *inventory.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, inventory.RecordID("early"), verr.RecordID)
	assertQty(t, "5", verr.Available)
	assertQty(t, "8", verr.Requested)
}

func TestReplay_ProductsAreIndependent(t *testing.T) {
	out, err := inventory.ReplayLedger([]inventory.Record{
		sale("a", 1, "A", "1"),
		sale("b", 1, "B", "4"),
		sale("a2", 2, "A", "1"),
	}, inventory.OpeningStocks{"A": d("2"), "B": d("4")})

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "0", "0"}, stocks(out))
}

func TestReplay_DecimalQuantities(t *testing.T) {
	out, err := inventory.ReplayLedger([]inventory.Record{
		sale("s1", 1, "Rice", "1.25"),
		sale("s2", 2, "Rice", "0.75"),
	}, inventory.OpeningStocks{"Rice": d("2.5")})

	require.NoError(t, err)
	assertQty(t, "1.25", out[0].StockRemaining)
	assertQty(t, "0.5", out[1].StockRemaining)
}

// =============================================================================
// REPLAY - ORDERING
// =============================================================================

func TestReplay_SortsByDate(t *testing.T) {
	out, err := inventory.ReplayLedger([]inventory.Record{
		sale("s3", 3, "A", "1"),
		sale("s1", 1, "A", "1"),
		sale("s2", 2, "A", "1"),
	}, inventory.OpeningStocks{"A": d("3")})

	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "s3"}, ids(out))
	assert.Equal(t, []string{"2", "1", "0"}, stocks(out))
}

func TestReplay_SameDayKeepsInputOrder(t *testing.T) {
	// GIVEN: An adjustment and a sale on the same day, sale first in input
	// THEN: The sale is replayed first and the adjustment wins the day
	out, err := inventory.ReplayLedger([]inventory.Record{
		sale("s1", 1, "A", "2"),
		adjust("a1", 1, "A", "10"),
	}, inventory.OpeningStocks{"A": d("2")})

	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "a1"}, ids(out))
	assert.Equal(t, []string{"0", "10"}, stocks(out))

	// AND: Reversing the input order changes the outcome deterministically
	out, err = inventory.ReplayLedger([]inventory.Record{
		adjust("a1", 1, "A", "10"),
		sale("s1", 1, "A", "2"),
	}, inventory.OpeningStocks{"A": d("2")})

	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "s1"}, ids(out))
	assert.Equal(t, []string{"10", "8"}, stocks(out))
}

// =============================================================================
// REPLAY - PURITY AND PROPERTIES
// =============================================================================

func TestReplay_DoesNotMutateInputs(t *testing.T) {
	in := []inventory.Record{
		sale("s2", 2, "A", "1"),
		sale("s1", 1, "A", "1"),
	}
	in[0].StockRemaining = d("999")
	opening := inventory.OpeningStocks{"A": d("5")}

	_, err := inventory.ReplayLedger(in, opening)
	require.NoError(t, err)

	assert.Equal(t, []string{"s2", "s1"}, ids(in))
	assertQty(t, "999", in[0].StockRemaining)
	assertQty(t, "5", opening["A"])
	assert.Len(t, opening, 1)
}

func TestReplay_OverwritesUntrustedStock(t *testing.T) {
	rec := sale("s1", 1, "A", "1")
	rec.StockRemaining = d("42")

	out, err := inventory.ReplayLedger([]inventory.Record{rec}, inventory.OpeningStocks{"A": d("3")})
	require.NoError(t, err)
	assertQty(t, "2", out[0].StockRemaining)
}

func TestReplay_Idempotent(t *testing.T) {
	opening := inventory.OpeningStocks{"A": d("4"), "B": d("1")}
	in := []inventory.Record{
		sale("s1", 4, "A", "2"),
		adjust("a1", 2, "B", "9"),
		sale("s2", 1, "A", "1"),
		sale("s3", 3, "B", "5"),
	}

	once, err := inventory.ReplayLedger(in, opening)
	require.NoError(t, err)
	twice, err := inventory.ReplayLedger(once, opening)
	require.NoError(t, err)

	assert.Equal(t, ids(once), ids(twice))
	assert.Equal(t, stocks(once), stocks(twice))
}

func TestReplay_PreservesIdentitySet(t *testing.T) {
	in := []inventory.Record{
		sale("x", 5, "A", "1"),
		adjust("y", 1, "A", "3"),
		sale("z", 3, "B", "1"),
	}
	out, err := inventory.ReplayLedger(in, inventory.OpeningStocks{"B": d("1")})
	require.NoError(t, err)
	assert.ElementsMatch(t, ids(in), ids(out))
}

func TestReplay_NeverNegativeOnSuccess(t *testing.T) {
	opening := inventory.OpeningStocks{"A": d("3")}
	in := []inventory.Record{
		sale("1", 1, "A", "1"),
		sale("2", 2, "A", "2"),
		adjust("3", 3, "A", "4"),
		sale("4", 4, "A", "4"),
	}
	out, err := inventory.ReplayLedger(in, opening)
	require.NoError(t, err)
	for _, r := range out {
		assert.False(t, r.StockRemaining.IsNegative(), "record %s went negative", r.ID)
	}
}

func TestReplay_Empty(t *testing.T) {
	out, err := inventory.ReplayLedger(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
