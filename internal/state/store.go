// Package state persists per-bot user records and polling cursors. Each store
// owns one JSON file, loaded fully into memory on first access and written
// through synchronously on every mutation.
package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rustyechelle/masto-share-bot/internal/fsstore"
)

// UserStore holds UserRecords keyed by user URI.
type UserStore struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	loaded  bool
	users   map[string]UserRecord
	optedIn int
}

func NewUserStore(path string, logger *slog.Logger) *UserStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{path: path, logger: logger}
}

// loadLocked enumerates the backing file into memory. A record that fails to
// decode is logged and replaced with an empty default; a corrupt entry must
// never take the whole store down.
func (s *UserStore) loadLocked() error {
	if s.loaded {
		return nil
	}

	raw := make(map[string]json.RawMessage)
	if _, err := fsstore.ReadJSON(s.path, &raw); err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	s.users = make(map[string]UserRecord, len(raw))
	s.optedIn = 0
	for uri, value := range raw {
		var rec UserRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			s.logger.Error("user_record_invalid", "uri", uri, "error", err.Error())
			rec = UserRecord{}
		}
		if rec.Boost {
			s.optedIn++
		}
		s.users[uri] = rec
	}
	s.loaded = true

	s.logger.Debug("users_loaded", "total", len(s.users), "opted_in", s.optedIn)
	return nil
}

// Get returns the record for uri, or the zero record when the user has never
// been seen.
func (s *UserStore) Get(uri string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return UserRecord{}, err
	}
	return s.users[uri], nil
}

// Put stores rec under uri and persists before returning. The opted-in count
// follows opt-in transitions incrementally, so it stays consistent with what
// is on disk without rescans.
func (s *UserStore) Put(uri string, rec UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return err
	}

	old := s.users[uri]
	s.users[uri] = rec
	if !old.Boost && rec.Boost {
		s.optedIn++
	} else if old.Boost && !rec.Boost {
		s.optedIn--
	}

	if err := fsstore.WriteJSONAtomic(s.path, s.users); err != nil {
		return fmt.Errorf("persist users: %w", err)
	}
	return nil
}

// OptedInCount returns the number of records with Boost set.
func (s *UserStore) OptedInCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return 0, err
	}
	return s.optedIn, nil
}

// CursorStore holds opaque per-stream cursor strings under well-known keys.
type CursorStore struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	loaded bool
	values map[string]string
}

func NewCursorStore(path string, logger *slog.Logger) *CursorStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CursorStore{path: path, logger: logger}
}

func (s *CursorStore) loadLocked() error {
	if s.loaded {
		return nil
	}
	values := make(map[string]string)
	if _, err := fsstore.ReadJSON(s.path, &values); err != nil {
		return fmt.Errorf("load cursors: %w", err)
	}
	s.values = values
	s.loaded = true
	return nil
}

// Get returns the stored cursor for key, empty when absent.
func (s *CursorStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return "", err
	}
	return s.values[key], nil
}

// Set writes through to disk before returning.
func (s *CursorStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return err
	}
	s.values[key] = value
	if err := fsstore.WriteJSONAtomic(s.path, s.values); err != nil {
		return fmt.Errorf("persist cursors: %w", err)
	}
	return nil
}
