package store

import "fmt"

type memoryBackend struct {
	recs map[string]*record
}

// NewMemoryStore creates a Store that keeps documents in memory. It backs
// dry runs and tests.
func NewMemoryStore(opts Options) *DocStore {
	return newDocStore("memory", &memoryBackend{recs: make(map[string]*record)}, opts)
}

func (m *memoryBackend) get(id string) (*record, error) {
	rec, ok := m.recs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec.clone(), nil
}

func (m *memoryBackend) put(rec *record) error {
	m.recs[rec.Document.ID] = rec.clone()
	return nil
}

func (m *memoryBackend) exists(id string) (bool, error) {
	_, ok := m.recs[id]
	return ok, nil
}

func (m *memoryBackend) remove(id string) error {
	if _, ok := m.recs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.recs, id)
	return nil
}

func (m *memoryBackend) list() ([]*record, error) {
	out := make([]*record, 0, len(m.recs))
	for _, rec := range m.recs {
		out = append(out, rec.clone())
	}
	return out, nil
}

func (m *memoryBackend) close() error { return nil }
