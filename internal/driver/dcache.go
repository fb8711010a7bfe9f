package driver

import (
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"nsattr/internal/resolve"
)

// Current schema version - increment when UnitPayload format changes.
const cacheSchemaVersion uint16 = 1

// UnitPayload is the cached projection of one resolved translation unit:
// enough to feed the whole-program consistency check without
// re-resolving an unchanged unit.
type UnitPayload struct {
	Schema      uint16
	Name        string
	Occurrences []resolve.Occurrence
	HasErrors   bool
}

// DiskCache stores per-unit payloads keyed by the unit description's
// content hash. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache initializes and returns a disk cache at the standard
// location ($XDG_CACHE_HOME/<app> or ~/.cache/<app>).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt opens a cache rooted at an explicit directory (tests).
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key [32]byte) string {
	// "units" subdirectory keeps the cache root inspectable.
	return filepath.Join(c.dir, "units", hex.EncodeToString(key[:])+".msgpack")
}

// Load returns the cached payload for key, or ok=false on miss, schema
// mismatch, or a corrupt entry.
func (c *DiskCache) Load(key [32]byte) (*UnitPayload, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return nil, false
	}
	var payload UnitPayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, false
	}
	return &payload, true
}

// Store writes the payload under key, creating the subdirectory lazily.
func (c *DiskCache) Store(key [32]byte, payload *UnitPayload) error {
	if payload == nil {
		return errors.New("dcache: nil payload")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Clear removes every cached unit payload.
func (c *DiskCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dir := filepath.Join(c.dir, "units")
	err := os.RemoveAll(dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
