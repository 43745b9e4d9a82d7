package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	storeFileName = "credentials.json"
	keyFileName   = "credentials.key"
)

// FileRepo persists credentials as a single JSON document in dir, with every
// value sealed at rest. It is the durable analogue of the browser original's
// localStorage: entries survive process restarts, read-after-write is
// immediately consistent within one process, and no cross-process consistency
// is promised.
type FileRepo struct {
	mu     sync.RWMutex
	path   string
	sealer *sealer
}

// NewFileRepo opens (or initialises) the credential store under dir.
func NewFileRepo(dir string) (*FileRepo, error) {
	if dir == "" {
		return nil, fmt.Errorf("[NewFileRepo] dir is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("[NewFileRepo] create dir: %w", err)
	}
	s, err := loadOrCreateKey(filepath.Join(dir, keyFileName))
	if err != nil {
		return nil, fmt.Errorf("[NewFileRepo] %w", err)
	}
	return &FileRepo{
		path:   filepath.Join(dir, storeFileName),
		sealer: s,
	}, nil
}

// Get retrieves a stored value. A missing file, unreadable document, or
// undecryptable entry all report "not present" rather than an error.
func (r *FileRepo) Get(key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("key is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.readAll()
	sealed, ok := entries[key]
	if !ok {
		return "", false, nil
	}
	value, err := r.sealer.open(sealed)
	if err != nil {
		log.Debug().Str("key", key).Err(err).Msg("credential entry unreadable, treating as absent")
		return "", false, nil
	}
	return value, true, nil
}

// Set creates or updates an entry
func (r *FileRepo) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.readAll()
	sealed, err := r.sealer.seal(value)
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	entries[key] = sealed
	return r.writeAll(entries)
}

// Delete removes an entry. Deleting an absent key is not an error.
func (r *FileRepo) Delete(key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.readAll()
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return r.writeAll(entries)
}

// readAll loads the document, degrading any read or parse failure to an
// empty store.
func (r *FileRepo) readAll() map[string]string {
	entries := make(map[string]string)
	b, err := os.ReadFile(r.path)
	if err != nil {
		return entries
	}
	if err := json.Unmarshal(b, &entries); err != nil {
		log.Debug().Err(err).Msg("credential store unparseable, treating as empty")
		return make(map[string]string)
	}
	return entries
}

// writeAll replaces the document atomically (temp file + rename) so a crash
// mid-write never leaves a half-written store.
func (r *FileRepo) writeAll(entries map[string]string) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}
