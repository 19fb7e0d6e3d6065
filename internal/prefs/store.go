package prefs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
)

// Store is a flat string-keyed preference map backed by a single JSON file.
// Writes are visible to subsequent reads immediately; durability to disk is
// only guaranteed after Flush.
type Store struct {
	path   string
	values map[string]string

	mu sync.RWMutex
}

// NewStore opens the store at path, loading any existing values. A missing
// file is not an error; the store starts empty and the file is created on
// the first Flush.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:   path,
		values: map[string]string{},
	}

	err := s.load()
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading prefs file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	values := map[string]string{}
	err = json.Unmarshal(data, &values)
	if err != nil {
		return fmt.Errorf("unmarshalling prefs file: %w", err)
	}

	s.values = values
	return nil
}

// Get returns the value stored under key, or "" if absent.
func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.values[key]
}

// GetDefault returns the value stored under key, or def if absent.
func (s *Store) GetDefault(key, def string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return def
	}
	return v
}

// Set stores value under key. Last write wins.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
}

// Delete removes key, if present.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
}

// KeysWithPrefix returns all stored keys beginning with prefix, sorted.
// Used to enumerate per-character keys for deletion cascades.
func (s *Store) KeysWithPrefix(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k := range s.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	return keys
}

// Flush writes the current values to disk. This is the only durability point;
// a write without a flush may be lost on process exit.
func (s *Store) Flush() error {
	s.mu.RLock()
	data, err := json.Marshal(s.values)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshalling prefs: %w", err)
	}

	return atomicWrite(s.path, data, 0644)
}

// atomicWrite writes data to a temp file then renames it to the target path.
// This prevents partial or empty files if the process is interrupted.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("failed to remove temp file after rename failure", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
