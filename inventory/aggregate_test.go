package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/stock-ledger/inventory"
)

func replayed(t *testing.T, opening inventory.OpeningStocks, records ...inventory.Record) []inventory.Record {
	t.Helper()
	out, err := inventory.ReplayLedger(records, opening)
	require.NoError(t, err)
	return out
}

func TestAggregates_Totals(t *testing.T) {
	// sale helper: cost 2, price 5 -> profit 3 per unit
	ledger := replayed(t, inventory.OpeningStocks{"A": d("10"), "B": d("10")},
		sale("s1", 1, "A", "2"),
		sale("s2", 2, "B", "3"),
		adjust("a1", 3, "A", "20"),
	)

	agg := inventory.ComputeAggregates(ledger, inventory.AggregateOptions{})
	assertQty(t, "25", agg.TotalRevenue)
	assertQty(t, "15", agg.TotalProfit)
}

func TestAggregates_BestSeller(t *testing.T) {
	ledger := replayed(t, inventory.OpeningStocks{"A": d("10"), "B": d("10")},
		sale("s1", 1, "A", "2"),
		sale("s2", 2, "B", "3"),
		sale("s3", 3, "A", "2"),
		adjust("a1", 4, "B", "100"), // adjustments do not count as sold
	)

	agg := inventory.ComputeAggregates(ledger, inventory.AggregateOptions{})
	require.NotNil(t, agg.BestSeller)
	assert.Equal(t, "A", agg.BestSeller.Product)
	assertQty(t, "4", agg.BestSeller.Quantity)
}

func TestAggregates_BestSellerTieGoesToFirstProduct(t *testing.T) {
	ledger := replayed(t, inventory.OpeningStocks{"A": d("10"), "B": d("10")},
		sale("s1", 1, "B", "3"),
		sale("s2", 2, "A", "3"),
	)

	agg := inventory.ComputeAggregates(ledger, inventory.AggregateOptions{})
	require.NotNil(t, agg.BestSeller)
	assert.Equal(t, "B", agg.BestSeller.Product)
}

func TestAggregates_NoSalesNoBestSeller(t *testing.T) {
	ledger := replayed(t, nil, adjust("a1", 1, "A", "5"))
	agg := inventory.ComputeAggregates(ledger, inventory.AggregateOptions{})
	assert.Nil(t, agg.BestSeller)
}

func TestAggregates_CurrentStockAndBuckets(t *testing.T) {
	ledger := replayed(t, inventory.OpeningStocks{"Out": d("4"), "Low": d("12"), "Safe": d("50")},
		sale("o1", 1, "Out", "4"),
		sale("l1", 1, "Low", "3"),
		sale("s1", 1, "Safe", "40"),
		sale("l2", 2, "Low", "1"),
	)

	agg := inventory.ComputeAggregates(ledger, inventory.AggregateOptions{})

	require.Len(t, agg.Stocks, 3)
	byProduct := map[string]inventory.ProductStock{}
	for _, ps := range agg.Stocks {
		byProduct[ps.Product] = ps
	}
	assertQty(t, "0", byProduct["Out"].Stock)
	assertQty(t, "8", byProduct["Low"].Stock)
	assertQty(t, "10", byProduct["Safe"].Stock)

	require.Len(t, agg.Buckets.Out, 1)
	require.Len(t, agg.Buckets.Low, 1)
	require.Len(t, agg.Buckets.Safe, 1)
	assert.Equal(t, "Out", agg.Buckets.Out[0].Product)
	assert.Equal(t, "Low", agg.Buckets.Low[0].Product)
	assert.Equal(t, "Safe", agg.Buckets.Safe[0].Product, "stock equal to threshold is safe")
}

func TestAggregates_CustomThreshold(t *testing.T) {
	ledger := replayed(t, nil, adjust("a1", 1, "A", "15"))

	agg := inventory.ComputeAggregates(ledger, inventory.AggregateOptions{LowStockThreshold: d("20")})
	require.Len(t, agg.Buckets.Low, 1)
	assert.Equal(t, inventory.StockLow, agg.Stocks[0].Status)
}

func TestAggregates_CurrentStockSameDayLastWins(t *testing.T) {
	ledger := replayed(t, nil,
		adjust("a1", 1, "A", "5"),
		adjust("a2", 1, "A", "7"),
	)
	agg := inventory.ComputeAggregates(ledger, inventory.AggregateOptions{})
	assertQty(t, "7", agg.Stocks[0].Stock)
}

func TestAggregates_Series(t *testing.T) {
	ledger := replayed(t, inventory.OpeningStocks{"A": d("10"), "B": d("10")},
		sale("s1", 1, "A", "1"),
		adjust("a1", 2, "B", "3"),
		sale("s2", 3, "A", "2"),
	)

	agg := inventory.ComputeAggregates(ledger, inventory.AggregateOptions{})
	require.Len(t, agg.Series, 2)
	assert.Equal(t, "A", agg.Series[0].Product)
	assertQty(t, "15", agg.Series[0].Revenue)
	assertQty(t, "9", agg.Series[0].Profit)
	assert.Equal(t, "B", agg.Series[1].Product)
	assertQty(t, "0", agg.Series[1].Revenue)
	assertQty(t, "0", agg.Series[1].Profit)
}

func TestClassifyStock(t *testing.T) {
	threshold := d("10")
	assert.Equal(t, inventory.StockOut, inventory.ClassifyStock(d("0"), threshold))
	assert.Equal(t, inventory.StockLow, inventory.ClassifyStock(d("0.5"), threshold))
	assert.Equal(t, inventory.StockLow, inventory.ClassifyStock(d("9.99"), threshold))
	assert.Equal(t, inventory.StockSafe, inventory.ClassifyStock(d("10"), threshold))
}

func TestAggregates_EmptyLedger(t *testing.T) {
	agg := inventory.ComputeAggregates(nil, inventory.AggregateOptions{})
	assertQty(t, "0", agg.TotalRevenue)
	assert.Nil(t, agg.BestSeller)
	assert.Empty(t, agg.Stocks)
}
