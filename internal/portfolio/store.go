package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store persists per-user instrument sets in a single JSON file. It is the
// collaborator the refresh pipeline reads sets from and hands updated sets
// back to; it never invents or deletes instruments on its own.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the stored set for user, or an empty set when the user has no
// entry yet (a missing data file counts as no entry).
func (s *Store) Load(user string) (Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return Set{}, err
	}
	set, ok := all[user]
	if !ok {
		return Set{}, nil
	}
	return set, nil
}

// Save replaces the stored set for user. The watchlist is clamped to
// MaxWatch slots. The file is replaced atomically via a temp file so a crash
// mid-write never corrupts existing data.
func (s *Store) Save(user string, set Set) error {
	if user == "" {
		return errors.New("store: empty user")
	}
	if len(set.Watch) > MaxWatch {
		set.Watch = set.Watch[:MaxWatch]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}
	all[user] = set

	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("store: temp file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: rename: %w", err)
	}
	return nil
}

func (s *Store) read() (map[string]Set, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]Set{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", s.path, err)
	}
	all := map[string]Set{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &all); err != nil {
			return nil, fmt.Errorf("store: parse %s: %w", s.path, err)
		}
	}
	return all, nil
}
