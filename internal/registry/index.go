package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// IndexFile is the listing cache name under <config>/cache.
const IndexFile = "package-index.json"

// CachedIndex holds the discovered packages along with the store
// modification time used for invalidation.
type CachedIndex struct {
	Packages   []*Package `json:"packages"`
	Roots      []string   `json:"roots"`
	StoreMtime int64      `json:"store_mtime"`
	CachedAt   time.Time  `json:"cached_at"`
}

// DiscoverCached returns Discover(packagesDir), served from cachePath while
// the store has not changed. A stale or missing cache is rebuilt.
func DiscoverCached(packagesDir, cachePath string) ([]*Package, error) {
	cached, err := loadCache(cachePath)
	if err == nil && cached.StoreMtime != 0 && cached.StoreMtime == latestMtime(packagesDir) &&
		len(cached.Roots) == len(cached.Packages) {
		for i, p := range cached.Packages {
			p.Root = cached.Roots[i]
		}
		return cached.Packages, nil
	}

	pkgs, err := Discover(packagesDir)
	if err != nil {
		return nil, err
	}

	// Best effort: listing still works without the cache.
	writeCache(cachePath, pkgs, latestMtime(packagesDir))

	return pkgs, nil
}

// InvalidateCache removes the cache file.
func InvalidateCache(cachePath string) error {
	if err := os.Remove(cachePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func loadCache(path string) (*CachedIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idx CachedIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

// latestMtime returns the newest modification time (unix nanoseconds)
// across the store directory and each <name> directory. Adding or removing
// a version touches its name directory, so no full walk is needed.
func latestMtime(packagesDir string) int64 {
	info, err := os.Stat(packagesDir)
	if err != nil {
		return 0
	}
	latest := info.ModTime().UnixNano()

	entries, err := os.ReadDir(packagesDir)
	if err != nil {
		return latest
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if fi, err := os.Stat(filepath.Join(packagesDir, entry.Name())); err == nil {
			if t := fi.ModTime().UnixNano(); t > latest {
				latest = t
			}
		}
	}
	return latest
}

func writeCache(path string, pkgs []*Package, mtime int64) {
	roots := make([]string, len(pkgs))
	for i, p := range pkgs {
		roots[i] = p.Root
	}
	idx := CachedIndex{
		Packages:   pkgs,
		Roots:      roots,
		StoreMtime: mtime,
		CachedAt:   time.Now(),
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0o644)
}
