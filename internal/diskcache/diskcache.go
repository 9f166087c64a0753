// Package diskcache persists the classification memo between runs, so
// reopening a file highlights instantly from cached results.
package diskcache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/bethropolis/shade/internal/classify"
	"github.com/bethropolis/shade/internal/logger"
)

// Increment when the payload format changes; stale schemas are discarded.
const schemaVersion uint16 = 1

// payload is the on-disk shape of one memo snapshot.
type payload struct {
	Schema  uint16
	Backend string
	Entries map[uint64][]classify.Span
}

// Store reads and writes memo snapshots under a cache directory, one file
// per classifier backend. Writes are atomic (temp file + rename).
type Store struct {
	mu  sync.Mutex
	dir string
}

// Open initializes a store at the standard cache location
// ($XDG_CACHE_HOME/app, falling back to ~/.cache/app).
func Open(app string) (*Store, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenAt(filepath.Join(base, app))
}

// OpenAt initializes a store at an explicit directory.
func OpenAt(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) pathFor(backend string) string {
	return filepath.Join(s.dir, backend+".mp")
}

// Save writes the memo's current contents for the given backend.
func (s *Store) Save(backend string, memo *classify.Memo) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pathFor(backend)
	f, err := os.CreateTemp(s.dir, "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&payload{
		Schema:  schemaVersion,
		Backend: backend,
		Entries: memo.Export(),
	}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Load merges a previously saved snapshot into the memo. Returns false when
// no usable snapshot exists; a missing or stale file is not an error.
func (s *Store) Load(backend string, memo *classify.Memo) (bool, error) {
	if s == nil {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.pathFor(backend))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	var pl payload
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&pl); err != nil {
		return false, err
	}
	if pl.Schema != schemaVersion || pl.Backend != backend {
		logger.Debugf("Disk cache: discarding snapshot for '%s' (schema %d)", pl.Backend, pl.Schema)
		return false, nil
	}

	memo.Import(pl.Entries)
	return true, nil
}

// Drop removes the snapshot for one backend.
func (s *Store) Drop(backend string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.pathFor(backend))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
