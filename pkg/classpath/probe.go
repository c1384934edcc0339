// Package classpath implements the classpath probe (C12): a read-only,
// resource-existence-only scanner used to answer symbol-resolution
// questions without ever loading or executing target-language code. That
// restriction is a security invariant, not a performance shortcut.
package classpath

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Probe answers classpath existence questions by checking for a compiled
// class resource on disk, never by loading or executing it.
type Probe struct {
	roots  []string
	index  map[string]fileInfo // qualified name -> resource info
	closed atomic.Bool
	mu     sync.RWMutex
	hits   atomic.Int64
	misses atomic.Int64
}

type fileInfo struct {
	lastModified time.Time
}

// Empty constructs a Probe with no classpath roots, so class_exists and
// friends always report false without performing any filesystem scan.
func Empty() *Probe {
	return &Probe{index: make(map[string]fileInfo)}
}

// New constructs a Probe over the given classpath roots and eagerly scans
// them for ".class" resources.
func New(roots []string) (*Probe, error) {
	p := &Probe{roots: roots, index: make(map[string]fileInfo)}

	for _, root := range roots {
		if err := p.scanRoot(root); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (p *Probe) scanRoot(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err //nolint:wrapcheck // propagated as-is, caller wraps with root context
		}

		if info.IsDir() || !strings.HasSuffix(path, ".class") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil //nolint:nilerr // unreachable resources are simply not indexed
		}

		qualified := strings.TrimSuffix(rel, ".class")
		qualified = strings.ReplaceAll(qualified, string(filepath.Separator), ".")

		p.mu.Lock()
		p.index[qualified] = fileInfo{lastModified: info.ModTime()}
		p.mu.Unlock()

		return nil
	})
}

// ClassExists reports whether a compiled resource for qualifiedName is
// present on the classpath. It never loads the resource.
func (p *Probe) ClassExists(qualifiedName string) bool {
	p.mu.RLock()
	_, ok := p.index[qualifiedName]
	p.mu.RUnlock()

	if ok {
		p.hits.Add(1)
	} else {
		p.misses.Add(1)
	}

	return ok
}

// CacheHits returns the number of ClassExists lookups that found a resource,
// satisfying [github.com/styler-dev/styler/internal/observability.CacheStatsProvider].
func (p *Probe) CacheHits() int64 {
	return p.hits.Load()
}

// CacheMisses returns the number of ClassExists lookups that found no
// resource, satisfying [github.com/styler-dev/styler/internal/observability.CacheStatsProvider].
func (p *Probe) CacheMisses() int64 {
	return p.misses.Load()
}

// ClassLastModified returns the resource's modification time, if present.
func (p *Probe) ClassLastModified(qualifiedName string) (time.Time, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	info, ok := p.index[qualifiedName]

	return info.lastModified, ok
}

// ListPackageClasses returns every qualified class name directly in
// packageName (not recursively).
func (p *Probe) ListPackageClasses(packageName string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	prefix := packageName + "."

	var names []string

	for qualified := range p.index {
		rest, ok := strings.CutPrefix(qualified, prefix)
		if !ok || strings.Contains(rest, ".") {
			continue
		}

		names = append(names, qualified)
	}

	return names
}

// Close releases the probe. Idempotent via a CAS-guarded flag.
func (p *Probe) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}

	p.mu.Lock()
	p.index = nil
	p.mu.Unlock()
}
