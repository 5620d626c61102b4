package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	entryExtension = ".json"
	entriesDirName = "index"
	thumbsDirName  = "thumbs"
)

// Common cache errors.
var (
	ErrNotFound   = errors.New("cache entry not found")
	ErrExpired    = errors.New("cache entry expired")
	ErrInvalidKey = errors.New("cache key cannot be empty")
	ErrDisabled   = errors.New("cache is disabled")
)

// Index is a file-backed thumbnail index. Safe for concurrent use.
type Index struct {
	root       string
	enabled    bool
	ttlSeconds int

	mu sync.RWMutex
}

// NewIndex opens (creating if needed) an index rooted at dir. A disabled
// index answers every call with ErrDisabled.
func NewIndex(dir string, enabled bool, ttlSeconds int) (*Index, error) {
	if !enabled {
		return &Index{}, nil
	}
	if dir == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if ttlSeconds < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTTL, ttlSeconds)
	}

	for _, sub := range []string{entriesDirName, thumbsDirName} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	return &Index{root: dir, enabled: true, ttlSeconds: ttlSeconds}, nil
}

// Get returns the entry for key whose thumbnail file still exists.
func (x *Index) Get(key string) (*Entry, error) {
	if !x.enabled {
		return nil, ErrDisabled
	}
	if key == "" {
		return nil, ErrInvalidKey
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	entry, err := x.readEntry(x.entryPath(key))
	if err != nil {
		return nil, err
	}
	if entry.IsExpired() {
		return nil, ErrExpired
	}
	if _, statErr := os.Stat(filepath.Join(x.ThumbDir(), entry.Thumb)); statErr != nil {
		return nil, ErrNotFound
	}
	return entry, nil
}

// Put records that thumb, inside ThumbDir, was generated for source.
func (x *Index) Put(key, source, thumb string) error {
	if !x.enabled {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	data, err := json.MarshalIndent(NewEntry(key, source, thumb, x.ttlSeconds), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	path := x.entryPath(key)
	tempPath := path + ".tmp"
	if writeErr := os.WriteFile(tempPath, data, 0o600); writeErr != nil {
		return fmt.Errorf("failed to write cache entry: %w", writeErr)
	}
	if renameErr := os.Rename(tempPath, path); renameErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename cache entry: %w", renameErr)
	}
	return nil
}

// Delete removes an entry and its thumbnail. Missing entries are not an error.
func (x *Index) Delete(key string) error {
	if !x.enabled {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	return x.removeLocked(x.entryPath(key))
}

// Clear removes every entry and thumbnail.
func (x *Index) Clear() error {
	return x.sweep(func(*Entry) bool { return true })
}

// Prune removes expired entries and their thumbnails, and entries whose
// file cannot be decoded.
func (x *Index) Prune() error {
	return x.sweep((*Entry).IsExpired)
}

// Count returns the number of entries, including expired ones.
func (x *Index) Count() (int, error) {
	if !x.enabled {
		return 0, ErrDisabled
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	paths, err := x.entryPaths()
	return len(paths), err
}

// Size returns the total bytes used by thumbnails.
func (x *Index) Size() (int64, error) {
	if !x.enabled {
		return 0, ErrDisabled
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	files, err := os.ReadDir(x.ThumbDir())
	if err != nil {
		return 0, fmt.Errorf("failed to read thumbnail directory: %w", err)
	}
	var total int64
	for _, f := range files {
		if info, infoErr := f.Info(); infoErr == nil && !f.IsDir() {
			total += info.Size()
		}
	}
	return total, nil
}

// IsEnabled reports whether the index is active.
func (x *Index) IsEnabled() bool {
	return x.enabled
}

// ThumbDir is where indexed thumbnails are stored.
func (x *Index) ThumbDir() string {
	return filepath.Join(x.root, thumbsDirName)
}

// TTL returns the entry TTL in seconds.
func (x *Index) TTL() int {
	return x.ttlSeconds
}

func (x *Index) sweep(remove func(*Entry) bool) error {
	if !x.enabled {
		return ErrDisabled
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	paths, err := x.entryPaths()
	if err != nil {
		return err
	}
	for _, p := range paths {
		entry, readErr := x.readEntry(p)
		if readErr != nil && !errors.Is(readErr, errCorrupt) {
			continue
		}
		if readErr == nil && !remove(entry) {
			continue
		}
		if rmErr := x.removeLocked(p); rmErr != nil {
			return rmErr
		}
	}
	return nil
}

var errCorrupt = errors.New("corrupt cache entry")

func (x *Index) readEntry(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	var entry Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %w", errCorrupt, err)
	}
	return &entry, nil
}

// removeLocked deletes an entry file and, if decodable, its thumbnail.
func (x *Index) removeLocked(path string) error {
	if entry, err := x.readEntry(path); err == nil && entry.Thumb != "" {
		thumb := filepath.Join(x.ThumbDir(), filepath.Base(entry.Thumb))
		if rmErr := os.Remove(thumb); rmErr != nil && !os.IsNotExist(rmErr) {
			return fmt.Errorf("failed to delete thumbnail: %w", rmErr)
		}
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

func (x *Index) entryPaths() ([]string, error) {
	dir := filepath.Join(x.root, entriesDirName)
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}
	var out []string
	for _, f := range files {
		if !f.IsDir() && filepath.Ext(f.Name()) == entryExtension {
			out = append(out, filepath.Join(dir, f.Name()))
		}
	}
	return out, nil
}

// entryPath maps a key to its entry file. Keys are hex digests, but any
// path separators are flattened for safety.
func (x *Index) entryPath(key string) string {
	return filepath.Join(x.root, entriesDirName, filepath.Base(filepath.Clean("/"+key))+entryExtension)
}
