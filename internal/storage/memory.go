package storage

import "sync"

// MemoryStore is an in-process Store. It copies on every Load and Save
// so callers never share the backing slice.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
	saves   int
}

func NewMemoryStore(initial ...Record) *MemoryStore {
	return &MemoryStore{records: append([]Record{}, initial...)}
}

func (m *MemoryStore) Load() ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record{}, m.records...), nil
}

func (m *MemoryStore) Save(records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]Record{}, records...)
	m.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
