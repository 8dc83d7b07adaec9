// Package store provides StateStore implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/stock-ledger/inventory"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Artifact keys, shared with the SQLite store.
const (
	KeyRecords       = "transactions"
	KeyOpeningStocks = "opening_stocks"
)

// Memory keeps both artifacts as encoded blobs, the same shape a persistent
// key-value store would hold.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) LoadRecords(_ context.Context) ([]inventory.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[KeyRecords]
	if !ok {
		return []inventory.Record{}, nil
	}
	return inventory.DecodeRecords(data)
}

func (m *Memory) LoadOpeningStocks(_ context.Context) (inventory.OpeningStocks, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[KeyOpeningStocks]
	if !ok {
		return inventory.OpeningStocks{}, nil
	}
	return inventory.DecodeOpeningStocks(data)
}

// SaveState encodes both artifacts before touching the map, so a failed
// encode leaves the previous blobs in place.
func (m *Memory) SaveState(_ context.Context, state inventory.State) error {
	records, err := inventory.EncodeRecords(state.Records)
	if err != nil {
		return err
	}
	opening, err := inventory.EncodeOpeningStocks(state.OpeningStocks)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[KeyRecords] = records
	m.blobs[KeyOpeningStocks] = opening
	return nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs = make(map[string][]byte)
	return nil
}

// PutRaw stores an artifact verbatim. Tests use it to simulate corrupt state.
func (m *Memory) PutRaw(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), data...)
}

// Raw returns a copy of a stored artifact.
func (m *Memory) Raw(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}
