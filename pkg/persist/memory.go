package persist

import "sync"

// MemoryStore is an in-process KeyValueStore. A positive Quota caps the total
// number of value bytes held, like a browser storage quota.
type MemoryStore struct {
	Quota int

	mu          sync.Mutex
	items       map[string][]byte
	unavailable bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string][]byte{}}
}

func (m *MemoryStore) GetItem(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return nil, false, ErrUnavailable
	}
	value, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *MemoryStore) SetItem(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return ErrUnavailable
	}
	if m.Quota > 0 {
		used := len(value)
		for k, v := range m.items {
			if k != key {
				used += len(v)
			}
		}
		if used > m.Quota {
			return ErrQuotaExceeded
		}
	}
	if m.items == nil {
		m.items = map[string][]byte{}
	}
	m.items[key] = append([]byte(nil), value...)
	return nil
}

// SetUnavailable makes every subsequent call fail with ErrUnavailable until
// it is called again with false.
func (m *MemoryStore) SetUnavailable(unavailable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable = unavailable
}
