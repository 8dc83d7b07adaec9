package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/stock-ledger/inventory"
)

func TestEncodeRecords_RestoresMovements(t *testing.T) {
	records, err := inventory.ReplayLedger([]inventory.Record{
		adjust("a1", 1, "Tea", "10"),
		sale("s1", 2, "Tea", "2.5"),
	}, nil)
	require.NoError(t, err)

	data, err := inventory.EncodeRecords(records)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"adjustment"`)
	assert.Contains(t, string(data), `"product_name":"Tea"`)

	back, err := inventory.DecodeRecords(data)
	require.NoError(t, err)
	require.Len(t, back, 2)

	assert.Equal(t, "2025-03-01", back[0].Date.String())
	adj, ok := back[0].Movement.(inventory.Adjustment)
	require.True(t, ok)
	assertQty(t, "10", adj.NewStock)

	s, ok := back[1].Movement.(inventory.Sale)
	require.True(t, ok)
	assertQty(t, "2.5", s.Quantity)
	assertQty(t, "5", s.UnitPrice)
	assertQty(t, "7.5", back[1].StockRemaining)
}

func TestEncodeRecords_NilIsEmptyArray(t *testing.T) {
	data, err := inventory.EncodeRecords(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestDecodeRecords_Corrupt(t *testing.T) {
	for _, raw := range []string{`{not json`, `[{"id":"x","date":"2025-03-01","kind":"refund"}]`, `[{"id":"x","date":"tuesday","kind":"sale"}]`} {
		_, err := inventory.DecodeRecords([]byte(raw))
		assert.ErrorIs(t, err, inventory.ErrCorruptState, raw)
	}
}

func TestDecodeRecords_Null(t *testing.T) {
	records, err := inventory.DecodeRecords([]byte("null"))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestOpeningStocks_EncodeDecode(t *testing.T) {
	data, err := inventory.EncodeOpeningStocks(inventory.OpeningStocks{"Tea": d("12"), "Rice": d("0.5")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Tea":12,"Rice":0.5}`, string(data))

	back, err := inventory.DecodeOpeningStocks(data)
	require.NoError(t, err)
	assertQty(t, "12", back["Tea"])
	assertQty(t, "0.5", back["Rice"])
}

func TestDecodeOpeningStocks_Corrupt(t *testing.T) {
	for _, raw := range []string{`[1,2]`, `{"Tea":-3}`, `{"Tea":"lots"}`} {
		_, err := inventory.DecodeOpeningStocks([]byte(raw))
		assert.ErrorIs(t, err, inventory.ErrCorruptState, raw)
	}
}
