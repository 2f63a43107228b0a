package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ConTROLLAPP/controll/identity"
)

// FileStore keeps one JSON document per normalized alias under a single
// directory. Writes go through a temp file and rename so a crashed process
// never leaves a half-written record behind.
type FileStore struct {
	dir    string
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileStore creates the directory if needed and returns a store rooted
// there. A nil logger falls back to slog.Default().
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{
		dir:    dir,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// keyLock returns the mutex for key, creating it on first use. Locks are
// per key, so scans of different identities never serialize on each other.
func (s *FileStore) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

// sanitizeKey maps an alias key to a safe filename. Aliases are already
// normalized lowercase, but may still carry spaces and punctuation.
func sanitizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Load returns the record stored for key. A missing file and a corrupt or
// invalid record both report identity.ErrRecordNotFound; corruption is
// logged and otherwise treated as absence so a later Save can heal it.
func (s *FileStore) Load(ctx context.Context, key string) (*identity.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.load(key)
}

// load is Load without the context check, for callers already under the
// per-key lock.
func (s *FileStore) load(key string) (*identity.Record, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("alias %q: %w", key, identity.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read record %q: %w", key, err)
	}

	var rec identity.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("discarding malformed record", "key", key, "error", err)
		return nil, fmt.Errorf("alias %q: %w", key, identity.ErrRecordNotFound)
	}
	if err := rec.Validate(); err != nil {
		s.logger.Warn("discarding invalid record", "key", key, "error", err)
		return nil, fmt.Errorf("alias %q: %w", key, identity.ErrRecordNotFound)
	}
	return &rec, nil
}

// Save stores rec under key, replacing any prior record.
func (s *FileStore) Save(ctx context.Context, key string, rec *identity.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	return s.save(key, rec)
}

func (s *FileStore) save(key string, rec *identity.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record %q: %w", key, err)
	}

	dst := s.path(key)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("write record %q: %w", key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write record %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write record %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write record %q: %w", key, err)
	}
	return nil
}

// Update loads, transforms, and saves the record for key under its per-key
// lock. fn receives nil when no record exists yet; returning an error
// aborts without writing. Returning a nil record is also an abort.
func (s *FileStore) Update(ctx context.Context, key string, fn func(current *identity.Record) (*identity.Record, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.load(key)
	if err != nil && !errors.Is(err, identity.ErrRecordNotFound) {
		return err
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	if err := next.Validate(); err != nil {
		return err
	}
	return s.save(key, next)
}

// FindByContact scans all stored records for an exact email or phone match.
// Either argument may be empty; an empty pair matches nothing. The scan is
// linear over the store directory, which is fine at the expected scale of a
// per-operator blocklist.
func (s *FileStore) FindByContact(ctx context.Context, email, phone string) (*identity.Record, error) {
	if email == "" && phone == "" {
		return nil, identity.ErrRecordNotFound
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("scan store dir: %w", err)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		key := strings.TrimSuffix(e.Name(), ".json")
		rec, err := s.load(key)
		if err != nil {
			continue
		}
		if email != "" && contains(rec.Emails, email) {
			return rec, nil
		}
		if phone != "" && contains(rec.Phones, phone) {
			return rec, nil
		}
	}
	return nil, identity.ErrRecordNotFound
}

// Purge removes the record for key. Purging an absent key is a no-op.
func (s *FileStore) Purge(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("purge record %q: %w", key, err)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
