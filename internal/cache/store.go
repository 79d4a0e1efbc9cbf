package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketEntries = []byte("entries")

type entry struct {
	data      []byte
	writtenAt time.Time
	stale     bool
}

// Store is the process-wide local cache: a key-addressed map of
// server-derived JSON entries, memory-first with optional BoltDB
// persistence. Every cached view reads through the store; no component
// holds private mutable copies, which is what makes cross-view propagation
// effective.
type Store struct {
	db     *bolt.DB
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]entry
	gens    map[string]uint64
}

// NewStore opens the cache. An empty cacheDir gives a memory-only store
// (no persistence), which is what tests use.
func NewStore(cacheDir, serverURL string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		logger:  logger,
		entries: make(map[string]entry),
		gens:    make(map[string]uint64),
	}
	if cacheDir == "" {
		return s, nil
	}

	dir := cacheDir
	if serverURL != "" {
		dir = filepath.Join(cacheDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "vlogdeck.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEntries)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Raw entry access ===

// GetRaw returns the stored bytes for key. Entries promoted from disk after
// a restart are served but marked stale so they get revalidated.
func (s *Store) GetRaw(key string) ([]byte, bool) {
	s.mu.RLock()
	if e, ok := s.entries[key]; ok {
		s.mu.RUnlock()
		return e.data, true
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return nil, false
	}

	s.mu.Lock()
	s.entries[key] = entry{data: data, writtenAt: time.Now(), stale: true}
	s.mu.Unlock()

	return data, true
}

// PutRaw stores data under key as a fresh entry.
func (s *Store) PutRaw(key string, data []byte) {
	s.mu.Lock()
	s.entries[key] = entry{data: data, writtenAt: time.Now()}
	s.mu.Unlock()

	if s.db == nil {
		return
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketEntries).Put([]byte(key), data)
	}); err != nil {
		s.logger.Error("failed to persist cache entry", "key", key, "error", err)
	}
}

// Delete evicts key entirely (e.g. after a delete mutation).
func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()

	if s.db == nil {
		return
	}
	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		if b != nil {
			b.Delete([]byte(key))
		}
		return nil
	})
}

// Keys returns every cached key with the given prefix, from memory and disk.
func (s *Store) Keys(prefix string) []string {
	seen := make(map[string]bool)

	s.mu.RLock()
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			seen[k] = true
		}
	}
	s.mu.RUnlock()

	if s.db != nil {
		s.db.View(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucketEntries)
			if b == nil {
				return nil
			}
			c := b.Cursor()
			p := []byte(prefix)
			for k, _ := c.Seek(p); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
				seen[string(k)] = true
			}
			return nil
		})
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	return keys
}

// === Staleness ===

// Invalidate marks key stale. The entry stays readable; readers with a live
// subscriber schedule a background refetch on next access.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		e.stale = true
		s.entries[key] = e
	}
	s.mu.Unlock()
}

// InvalidatePrefix marks every entry with the given prefix stale.
func (s *Store) InvalidatePrefix(prefix string) {
	s.mu.Lock()
	for k, e := range s.entries {
		if strings.HasPrefix(k, prefix) {
			e.stale = true
			s.entries[k] = e
		}
	}
	s.mu.Unlock()
}

// IsStale reports whether key needs revalidation.
func (s *Store) IsStale(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return ok && e.stale
}

// Clear drops every entry, memory and disk. Used on logout.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.gens = make(map[string]uint64)
	s.mu.Unlock()

	if s.db == nil {
		return
	}
	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// === In-flight fetch generations ===

// BeginFetch registers a background fetch for key and returns its
// generation. The fetch result is only honored if the generation is still
// current at completion.
func (s *Store) BeginFetch(key string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gens[key]
}

// CancelInFlight suppresses any in-flight fetch for key so its result cannot
// clobber a fresher optimistic write. Called before every speculative write.
func (s *Store) CancelInFlight(key string) {
	s.mu.Lock()
	s.gens[key]++
	s.mu.Unlock()
}

// CompleteFetch stores a fetched response unless the fetch was cancelled
// while in flight. Returns false when the result was discarded.
func (s *Store) CompleteFetch(key string, gen uint64, data []byte) bool {
	s.mu.Lock()
	if s.gens[key] != gen {
		s.mu.Unlock()
		return false
	}
	s.entries[key] = entry{data: data, writtenAt: time.Now()}
	s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketEntries).Put([]byte(key), data)
		}); err != nil {
			s.logger.Error("failed to persist fetched entry", "key", key, "error", err)
		}
	}
	return true
}

// === Snapshots ===

// Snapshot captures entries verbatim for rollback. A nil value records that
// the key was absent when the snapshot was taken.
type Snapshot map[string][]byte

// SnapshotKeys captures the current raw bytes of the given keys.
func (s *Store) SnapshotKeys(keys ...string) Snapshot {
	snap := make(Snapshot, len(keys))
	for _, key := range keys {
		if data, ok := s.GetRaw(key); ok {
			copied := make([]byte, len(data))
			copy(copied, data)
			snap[key] = copied
		} else {
			snap[key] = nil
		}
	}
	return snap
}

// Restore writes every snapshotted entry back verbatim. Keys absent at
// snapshot time are deleted.
func (s *Store) Restore(snap Snapshot) {
	for key, data := range snap {
		if data == nil {
			s.Delete(key)
			continue
		}
		s.PutRaw(key, data)
	}
}

// === Typed access ===

// Read returns the unwrapped resource at key unmarshalled into T.
func Read[T any](s *Store, key string) (T, bool) {
	var zero T
	raw, ok := s.GetRaw(key)
	if !ok {
		return zero, false
	}
	v, err := DecodeResource[T](raw)
	if err != nil {
		s.logger.Warn("unreadable cache entry", "key", key, "error", err)
		return zero, false
	}
	return v, true
}

// Write stores v at key, preserving the envelope shape of any existing
// entry.
func Write[T any](s *Store, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if raw, ok := s.GetRaw(key); ok {
		if _, rewrap, err := Unwrap(raw); err == nil {
			if wrapped, err := rewrap(data); err == nil {
				data = wrapped
			}
		}
	}
	s.PutRaw(key, data)
	return nil
}

// Mutate applies a pure transform to the resource cached at key, preserving
// its envelope shape. Absent keys are left absent. A malformed entry returns
// an error so callers can fall back to coarse invalidation.
func Mutate[T any](s *Store, key string, fn func(T) T) (bool, error) {
	raw, ok := s.GetRaw(key)
	if !ok {
		return false, nil
	}
	inner, rewrap, err := Unwrap(raw)
	if err != nil {
		return false, err
	}
	var v T
	if err := json.Unmarshal(inner, &v); err != nil {
		return false, fmt.Errorf("malformed cache entry %q: %w", key, err)
	}
	out, err := json.Marshal(fn(v))
	if err != nil {
		return false, err
	}
	wrapped, err := rewrap(out)
	if err != nil {
		return false, err
	}
	s.PutRaw(key, wrapped)
	return true, nil
}

// MutateMatching applies the same transform to every cached entry whose key
// matches prefix. Returns the number of entries updated and the first
// malformed-entry error encountered.
func MutateMatching[T any](s *Store, prefix string, fn func(T) T) (int, error) {
	updated := 0
	for _, key := range s.Keys(prefix) {
		ok, err := Mutate(s, key, fn)
		if err != nil {
			return updated, err
		}
		if ok {
			updated++
		}
	}
	return updated, nil
}
