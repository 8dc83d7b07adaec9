package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/stock-ledger/inventory"
	"github.com/warp/stock-ledger/inventory/store"
	"github.com/warp/stock-ledger/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleState(t *testing.T) inventory.State {
	t.Helper()
	day := func(n int) inventory.Date { return inventory.NewDate(2025, time.April, n) }
	s, _, err := inventory.EmptyState().Import([]inventory.Record{
		inventory.NewAdjustment(day(1), "Tea", decimal.NewFromInt(10)),
		inventory.NewSale(day(2), "Tea", decimal.NewFromInt(4), decimal.NewFromInt(2), decimal.NewFromInt(5)),
		inventory.NewSale(day(2), "Rice", decimal.RequireFromString("1.5"), decimal.NewFromInt(3), decimal.NewFromInt(4)),
	})
	require.NoError(t, err)
	return s
}

func TestStore_EmptyLoads(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	records, err := st.LoadRecords(ctx)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	opening, err := st.LoadOpeningStocks(ctx)
	require.NoError(t, err)
	assert.Empty(t, opening)

	at, err := st.UpdatedAt(ctx)
	require.NoError(t, err)
	assert.True(t, at.IsZero())
}

func TestStore_SaveAndLoad(t *testing.T) {
	// GIVEN: A replayed state
	ctx := context.Background()
	st := newStore(t)
	state := sampleState(t)

	// WHEN: Saving and loading it back
	require.NoError(t, st.SaveState(ctx, state))

	records, err := st.LoadRecords(ctx)
	require.NoError(t, err)
	opening, err := st.LoadOpeningStocks(ctx)
	require.NoError(t, err)

	// THEN: It replays to the same ledger
	loaded, err := inventory.State{Records: records, OpeningStocks: opening}.Revalidate()
	require.NoError(t, err)
	require.Len(t, loaded.Records, len(state.Records))
	for i := range state.Records {
		assert.Equal(t, state.Records[i].ID, loaded.Records[i].ID)
		assert.True(t, state.Records[i].StockRemaining.Equal(loaded.Records[i].StockRemaining))
	}
	assert.True(t, opening["Rice"].Equal(decimal.RequireFromString("1.5")))

	at, err := st.UpdatedAt(ctx)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), at, time.Minute)
}

func TestStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	require.NoError(t, st.SaveState(ctx, sampleState(t)))

	require.NoError(t, st.SaveState(ctx, inventory.EmptyState()))

	records, err := st.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_CorruptRow(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	require.NoError(t, st.PutRaw(ctx, store.KeyRecords, []byte("not json")))
	require.NoError(t, st.PutRaw(ctx, store.KeyOpeningStocks, []byte(`{"Tea":"-2"}`)))

	_, err := st.LoadRecords(ctx)
	assert.ErrorIs(t, err, inventory.ErrCorruptState)

	_, err = st.LoadOpeningStocks(ctx)
	assert.ErrorIs(t, err, inventory.ErrCorruptState)
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	require.NoError(t, st.SaveState(ctx, sampleState(t)))

	require.NoError(t, st.Reset(ctx))

	records, err := st.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_BookSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	st, err := sqlite.New(path)
	require.NoError(t, err)
	book, err := inventory.OpenBook(ctx, st)
	require.NoError(t, err)
	_, err = book.Import(ctx, sampleState(t).Records)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	// WHEN: Opening the database file again
	st, err = sqlite.New(path)
	require.NoError(t, err)
	defer st.Close()
	reopened, err := inventory.OpenBook(ctx, st)
	require.NoError(t, err)

	// THEN: The ledger and inferred opening stocks are back
	state := reopened.State()
	assert.Len(t, state.Records, 3)
	assert.True(t, state.OpeningStocks["Rice"].Equal(decimal.RequireFromString("1.5")))
}
