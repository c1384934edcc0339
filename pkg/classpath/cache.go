package classpath

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pierrec/lz4/v4"
)

// cacheEntry is the on-disk, lz4-compressed representation of one root's
// scan result, keyed by the root's own mtime so a cache whose root hasn't
// changed since the last run can be reused without a full re-scan.
type cacheEntry struct {
	RootModTime int64            `json:"root_mod_time"`
	Index       map[string]int64 `json:"index"` // qualified name -> last-modified unix nanos
}

// ErrCacheStale is returned by LoadCache when the persisted entry's root
// mtime no longer matches the live root, signaling the caller must re-scan.
var ErrCacheStale = errors.New("classpath: cache stale, root modified since persist")

// SaveCache persists p's scan result for root to cachePath, lz4-compressed.
func SaveCache(p *Probe, root, cachePath string) error {
	rootInfo, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("classpath: stat root: %w", err)
	}

	p.mu.RLock()
	index := make(map[string]int64, len(p.index))

	for name, info := range p.index {
		index[name] = info.lastModified.UnixNano()
	}
	p.mu.RUnlock()

	entry := cacheEntry{RootModTime: rootInfo.ModTime().UnixNano(), Index: index}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("classpath: marshal cache: %w", err)
	}

	var compressed bytes.Buffer

	writer := lz4.NewWriter(&compressed)
	if _, err := writer.Write(raw); err != nil {
		return fmt.Errorf("classpath: compress cache: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("classpath: close cache writer: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return fmt.Errorf("classpath: create cache dir: %w", err)
	}

	if err := os.WriteFile(cachePath, compressed.Bytes(), 0o644); err != nil { //nolint:gosec,mnd // cache file, not secret
		return fmt.Errorf("classpath: write cache: %w", err)
	}

	return nil
}

// LoadCache loads a persisted scan result for root from cachePath. Returns
// ErrCacheStale (wrapped) if root's mtime has advanced since the cache was
// written, in which case the caller should fall back to New(root).
func LoadCache(root, cachePath string) (*Probe, error) {
	rootInfo, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("classpath: stat root: %w", err)
	}

	compressed, err := os.ReadFile(cachePath) //nolint:gosec // cachePath is operator-controlled config, not user input
	if err != nil {
		return nil, fmt.Errorf("classpath: read cache: %w", err)
	}

	reader := lz4.NewReader(bytes.NewReader(compressed))

	var raw bytes.Buffer
	if _, err := raw.ReadFrom(reader); err != nil {
		return nil, fmt.Errorf("classpath: decompress cache: %w", err)
	}

	var entry cacheEntry
	if err := json.Unmarshal(raw.Bytes(), &entry); err != nil {
		return nil, fmt.Errorf("classpath: unmarshal cache: %w", err)
	}

	if entry.RootModTime != rootInfo.ModTime().UnixNano() {
		return nil, fmt.Errorf("%w: %s", ErrCacheStale, root)
	}

	p := &Probe{roots: []string{root}, index: make(map[string]fileInfo, len(entry.Index))}
	for name, nanos := range entry.Index {
		p.index[name] = fileInfo{lastModified: time.Unix(0, nanos)}
	}

	return p, nil
}
