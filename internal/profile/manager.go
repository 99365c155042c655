package profile

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Store defines the persistence operations the Manager needs.
// Implemented by storage.MemoryStore and storage.SQLiteStore.
type Store interface {
	// GetProfile returns ErrNotFound when id is unknown.
	GetProfile(id string) (Profile, error)
	// PutProfile inserts or replaces the profile with p.ID.
	PutProfile(p Profile) error
	// UpdateProfile loads the profile, applies fn and saves the result as one
	// atomic step. If fn returns an error nothing is written.
	UpdateProfile(id string, fn func(*Profile) error) error
	// ListProfileIDs returns every stored id in ascending order.
	ListProfileIDs() ([]string, error)
}

// Manager provides cached, validated access to stored profiles.
type Manager struct {
	store Store
	cache *ristretto.Cache
	ttl   time.Duration

	// mu orders cache fills against invalidations. gen counts writes; a Get
	// only caches what it read if no write happened in between.
	mu  sync.Mutex
	gen uint64
}

// NewManager creates a Manager over store. Snapshots are cached for ttl;
// a ttl of zero keeps entries until they are invalidated by a write.
func NewManager(store Store, ttl time.Duration) (*Manager, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        10_000,
		MaxCost:            1_000,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating profile cache: %w", err)
	}
	return &Manager{store: store, cache: cache, ttl: ttl}, nil
}

// Close releases the cache.
func (m *Manager) Close() {
	m.cache.Close()
}

// Create fills defaults, validates and stores p, replacing any profile with
// the same identifier.
func (m *Manager) Create(p Profile) (Profile, error) {
	p = p.Clone()
	if p.RiskTolerance == "" {
		p.RiskTolerance = RiskModerate
	}
	if p.MonthlyExpenses == nil {
		p.MonthlyExpenses = make(map[string]float64)
	}
	if p.FinancialGoals == nil {
		p.FinancialGoals = []string{}
	}
	if err := Validate(p); err != nil {
		return Profile{}, err
	}

	if err := m.store.PutProfile(p); err != nil {
		return Profile{}, fmt.Errorf("storing profile %q: %w", p.ID, err)
	}
	m.invalidate(p.ID)
	return p.Clone(), nil
}

// Get returns a deep copy of the current snapshot for id.
func (m *Manager) Get(id string) (Profile, error) {
	if v, ok := m.cache.Get(id); ok {
		if p, ok := v.(Profile); ok {
			return p.Clone(), nil
		}
	}

	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()

	p, err := m.store.GetProfile(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Profile{}, err
		}
		return Profile{}, fmt.Errorf("loading profile %q: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return p, nil
	}
	if !m.cache.SetWithTTL(id, p.Clone(), 1, m.ttl) {
		slog.Debug("profile cache rejected entry", "profile_id", id)
	}
	return p, nil
}

// List returns the ids of all stored profiles. It bypasses the cache.
func (m *Manager) List() ([]string, error) {
	ids, err := m.store.ListProfileIDs()
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	return ids, nil
}

// UpdateExpenses merges expenses into the stored expense map, overwriting
// matching categories. The merged profile must still validate.
func (m *Manager) UpdateExpenses(id string, expenses map[string]float64) error {
	err := m.store.UpdateProfile(id, func(p *Profile) error {
		if p.MonthlyExpenses == nil {
			p.MonthlyExpenses = make(map[string]float64, len(expenses))
		}
		for k, v := range expenses {
			p.MonthlyExpenses[k] = v
		}
		return Validate(*p)
	})
	m.invalidate(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidProfile) || errors.Is(err, ErrUnitMismatch) {
			return err
		}
		return fmt.Errorf("updating expenses for %q: %w", id, err)
	}
	return nil
}

// invalidate drops id from the cache and waits for buffered cache writes,
// so a Set queued by an earlier Get cannot resurface the old snapshot.
func (m *Manager) invalidate(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.cache.Del(id)
	m.cache.Wait()
}
