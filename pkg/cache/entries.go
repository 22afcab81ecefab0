package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/omniscript/pkg/logger"
	"github.com/fulmenhq/omniscript/pkg/safeio"
)

// ErrInvalidPattern is returned for a malformed match glob
var ErrInvalidPattern = errors.New("invalid match pattern")

// EntryInfo describes one on-disk entry without decoding its payload
type EntryInfo struct {
	Key      string        `json:"key" yaml:"key"`
	CachedAt time.Time     `json:"cached_at" yaml:"cached_at"`
	Age      time.Duration `json:"age" yaml:"age"`
	Size     int64         `json:"size" yaml:"size"`
	Expired  bool          `json:"expired" yaml:"expired"`
	// Corrupt entries have no usable timestamp and always read as a miss
	Corrupt bool `json:"corrupt,omitempty" yaml:"corrupt,omitempty"`
}

// Entries lists cache entries sorted by key. A non-empty match is a
// doublestar glob applied to keys, e.g. "dockerhub_*" or "tags_library_*".
func (s *Store) Entries(match string) ([]EntryInfo, error) {
	if match != "" && !doublestar.ValidatePattern(match) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, match)
	}
	if s.root == "" {
		return nil, nil
	}

	dirEntries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	now := s.now()
	var out []EntryInfo
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		key, ok := keyFromFileName(de.Name())
		if !ok {
			continue
		}
		if match != "" {
			if matched, _ := doublestar.Match(match, key); !matched {
				continue
			}
		}
		out = append(out, s.inspect(key, now))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Prune deletes entries that would read as a miss because of age or
// corruption. Fresh entries are never touched. It returns the number removed.
func (s *Store) Prune(match string) (int, error) {
	entries, err := s.Entries(match)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if !e.Expired && !e.Corrupt {
			continue
		}
		if err := os.Remove(s.path(e.Key)); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove %s: %w", e.Key, err)
		}
		removed++
		logger.Debug("pruned cache entry", logger.String("key", e.Key), logger.Bool("corrupt", e.Corrupt))
	}
	return removed, nil
}

func (s *Store) inspect(key string, now time.Time) EntryInfo {
	info := EntryInfo{Key: key}

	raw, err := safeio.ReadFileContained(s.root, s.path(key))
	if err != nil {
		info.Corrupt = true
		return info
	}
	info.Size = int64(len(raw))

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		info.Corrupt = true
		return info
	}
	cachedAt, ok := parseTimestamp(rec.CachedAt)
	if !ok {
		info.Corrupt = true
		return info
	}

	info.CachedAt = cachedAt
	info.Age = now.Sub(cachedAt)
	info.Expired = info.Age > s.ttl
	return info
}
