package storage

import (
	"sort"
	"sync"

	"github.com/kalambet/fincoach/internal/profile"
)

// MemoryStore keeps profiles in process memory. It is the default store
// and the one used by tests that do not need SQLite.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]profile.Profile
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]profile.Profile)}
}

func (m *MemoryStore) GetProfile(id string) (profile.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p.Clone(), nil
}

func (m *MemoryStore) PutProfile(p profile.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p.Clone()
	return nil
}

func (m *MemoryStore) UpdateProfile(id string, fn func(*profile.Profile) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return profile.ErrNotFound
	}
	p = p.Clone()
	if err := fn(&p); err != nil {
		return err
	}
	p.ID = id
	m.profiles[id] = p
	return nil
}

func (m *MemoryStore) ListProfileIDs() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.profiles))
	for id := range m.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryStore) Close() error { return nil }
