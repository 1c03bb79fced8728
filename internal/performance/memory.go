package performance

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store for tests and ephemeral sessions.
// The mutex serializes all read-modify-write cycles, satisfying the
// per-key atomicity contract trivially.
type MemoryStore struct {
	mu      sync.Mutex
	records map[recordKey]Record
}

type recordKey struct {
	sessionID string
	topic     string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[recordKey]Record)}
}

func (m *MemoryStore) GetRecord(_ context.Context, sessionID, topic string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[recordKey{sessionID, topic}]
	if !ok {
		return Record{}, ErrNotFound
	}
	return record, nil
}

func (m *MemoryStore) ListSession(_ context.Context, sessionID string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Record
	for key, record := range m.records {
		if key.sessionID == sessionID {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Topic < out[j].Topic })
	return out, nil
}

func (m *MemoryStore) UpdateRecord(_ context.Context, sessionID, topic string, fn func(existing Record, found bool) Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := recordKey{sessionID, topic}
	existing, found := m.records[key]
	updated := fn(existing, found)
	m.records[key] = updated
	return updated, nil
}
