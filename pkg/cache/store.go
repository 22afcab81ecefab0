// Package cache persists keyed JSON payloads on disk with a write timestamp
// and serves them back only while they are younger than the configured TTL.
//
// Reads never fail: a missing, expired, unreadable or corrupt entry is a miss.
// The store assumes a single process; concurrent writers are last-write-wins
// and a reader racing a writer may see a miss.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fulmenhq/omniscript/pkg/logger"
	"github.com/fulmenhq/omniscript/pkg/safeio"
)

// DefaultTTL is the maximum age of an entry served from the cache.
const DefaultTTL = time.Hour

const entryExt = ".json"

// ErrNoRoot is returned by Write when the store has no cache root configured.
var ErrNoRoot = errors.New("cache root not configured")

// Options configures a Store. Root is injected once per process run.
type Options struct {
	Root     string
	TTL      time.Duration
	Disabled bool
	// Now overrides the clock, mainly for tests
	Now func() time.Time
}

// Stats counts cache traffic for the lifetime of a Store
type Stats struct {
	Hits   int
	Misses int
	Writes int
}

// Store is a directory of one JSON file per key
type Store struct {
	root     string
	ttl      time.Duration
	disabled bool
	now      func() time.Time

	mu    sync.Mutex
	stats Stats
}

// record is the on-disk shape of one entry
type record struct {
	CachedAt string          `json:"cached_at"`
	Data     json.RawMessage `json:"data"`
}

// NewStore creates a Store. A zero TTL means DefaultTTL.
func NewStore(opts Options) *Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		root:     opts.Root,
		ttl:      ttl,
		disabled: opts.Disabled,
		now:      now,
	}
}

// Root returns the cache namespace directory
func (s *Store) Root() string { return s.root }

// TTL returns the maximum entry age
func (s *Store) TTL() time.Duration { return s.ttl }

// Enabled reports whether reads and writes touch the disk
func (s *Store) Enabled() bool { return !s.disabled && s.root != "" }

// Read decodes the payload stored under key into dest and reports whether it
// was a fresh hit. dest is only written on a hit.
func (s *Store) Read(key string, dest any) bool {
	if !s.Enabled() {
		return false
	}

	raw, err := safeio.ReadFileContained(s.root, s.path(key))
	if err != nil {
		s.miss(key, "absent")
		return false
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.miss(key, "corrupt")
		return false
	}

	cachedAt, ok := parseTimestamp(rec.CachedAt)
	if !ok {
		s.miss(key, "bad timestamp")
		return false
	}
	if s.now().Sub(cachedAt) > s.ttl {
		s.miss(key, "expired")
		return false
	}

	if len(rec.Data) == 0 || string(rec.Data) == "null" {
		s.miss(key, "empty")
		return false
	}
	target := reflect.ValueOf(dest)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		s.miss(key, "invalid destination")
		return false
	}
	decoded := reflect.New(target.Elem().Type())
	if err := json.Unmarshal(rec.Data, decoded.Interface()); err != nil {
		s.miss(key, "payload mismatch")
		return false
	}
	target.Elem().Set(decoded.Elem())

	s.mu.Lock()
	s.stats.Hits++
	s.mu.Unlock()
	logger.Debug("cache hit", logger.String("key", key))
	return true
}

// Write stores value under key with the current time, replacing any prior
// entry. It is a no-op when the store is disabled.
func (s *Store) Write(key string, value any) error {
	if s.disabled {
		return nil
	}
	if s.root == "" {
		return ErrNoRoot
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache payload for %s: %w", key, err)
	}
	body, err := json.Marshal(record{
		CachedAt: s.now().In(time.Local).Format(timestampLayout),
		Data:     data,
	})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry for %s: %w", key, err)
	}

	if err := os.MkdirAll(s.root, 0o750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := safeio.WriteFileAtomic(s.path(key), body, 0o644); err != nil {
		return err
	}

	s.mu.Lock()
	s.stats.Writes++
	s.mu.Unlock()
	logger.Debug("cache write", logger.String("key", key))
	return nil
}

// Clear removes the whole cache namespace. It reports whether anything was
// there to remove.
func (s *Store) Clear() (bool, error) {
	if s.root == "" {
		return false, nil
	}
	if _, err := os.Stat(s.root); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat cache directory: %w", err)
	}
	if err := safeio.RemoveTree(s.root); err != nil {
		return false, fmt.Errorf("failed to clear cache: %w", err)
	}
	return true, nil
}

// Stats returns a snapshot of the traffic counters
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Store) miss(key, reason string) {
	s.mu.Lock()
	s.stats.Misses++
	s.mu.Unlock()
	logger.Debug("cache miss", logger.String("key", key), logger.String("reason", reason))
}

// path maps a key to a flat file name inside root. Escaping keeps keys with
// path separators from creating sub-directories or leaving the root.
func (s *Store) path(key string) string {
	return filepath.Join(s.root, fileName(key))
}

func fileName(key string) string {
	name := url.PathEscape(key)
	name = strings.ReplaceAll(name, `\`, "%5C")
	if strings.HasPrefix(name, ".") {
		name = "%2E" + name[1:]
	}
	return name + entryExt
}

func keyFromFileName(name string) (string, bool) {
	if !strings.HasSuffix(name, entryExt) || strings.HasPrefix(name, ".") {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(name, entryExt))
	if err != nil {
		return "", false
	}
	return key, true
}

// timestampLayout is a zone-less ISO-8601 local time with microseconds, the
// form other tools sharing the cache directory write and compare against
// their own local clock.
const timestampLayout = "2006-01-02T15:04:05.000000"

// Zone-less values are read as local time. RFC 3339 values with an offset
// are accepted too.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
