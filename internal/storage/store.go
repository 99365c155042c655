package storage

import (
	"fmt"

	"github.com/kalambet/fincoach/internal/profile"
)

// Backend is a profile store the CLI and servers can open and close.
type Backend interface {
	profile.Store
	Close() error
}

// New opens the backend named by driver ("memory" or "sqlite").
func New(driver, dataDir string) (Backend, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return Open(dataDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
