package credentials

import (
	"fmt"
	"sync"
)

// InMemoryRepo is an in-memory implementation of Repo. Used in tests and for
// ephemeral sessions that should not outlive the process.
type InMemoryRepo struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewInMemoryRepo creates a new in-memory credential repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		entries: make(map[string]string),
	}
}

// Get retrieves a stored value by key
func (r *InMemoryRepo) Get(key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("key is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.entries[key]
	return value, ok, nil
}

// Set creates or updates an entry
func (r *InMemoryRepo) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[key] = value
	return nil
}

// Delete removes an entry
func (r *InMemoryRepo) Delete(key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, key)
	return nil
}
