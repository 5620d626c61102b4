// Package library discovers the images served by the gallery and tracks
// which of them already have a thumbnail.
package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// URL prefixes under which the server exposes originals and thumbnails.
const (
	ImagePrefix     = "imgs/"
	ThumbnailPrefix = "thumbs/"
)

// ErrNotDirectory is returned when the gallery root is not a directory.
var ErrNotDirectory = errors.New("gallery root is not a directory")

// supportedExtensions are the file types the gallery shows.
//
//nolint:gochecknoglobals // Lookup table.
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Image is one gallery entry.
type Image struct {
	// AbsPath is the file's location on disk.
	AbsPath string

	// ServerPath is the URL path of the full-resolution image, "imgs/<rel>".
	ServerPath string

	// ThumbPath is the URL path of the thumbnail, or "" if none exists yet.
	ThumbPath string

	Size    int64
	ModTime time.Time
}

// Name is the file name shown in text listings.
func (im Image) Name() string {
	return path.Base(im.ServerPath)
}

// DisplayPath returns the thumbnail URL when one exists, else the original.
func (im Image) DisplayPath() string {
	if im.ThumbPath != "" {
		return im.ThumbPath
	}
	return im.ServerPath
}

// ScanOptions controls ordering of scanned images.
type ScanOptions struct {
	Randomize bool

	// Seed drives the shuffle. Zero means seed from the clock.
	Seed int64
}

// Scan walks root and returns every supported image in lexical order, or
// shuffled when opts.Randomize is set. Unreadable entries are skipped.
func Scan(ctx context.Context, root string, opts ScanOptions) ([]Image, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving gallery root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("reading gallery root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, absRoot)
	}

	var images []Image
	walkErr := filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil || d.IsDir() {
			return nil
		}
		if !supportedExtensions[strings.ToLower(filepath.Ext(p))] {
			return nil
		}

		fi, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		rel, relErr := filepath.Rel(absRoot, p)
		if relErr != nil {
			return nil
		}

		images = append(images, Image{
			AbsPath:    p,
			ServerPath: ImagePrefix + filepath.ToSlash(rel),
			Size:       fi.Size(),
			ModTime:    fi.ModTime(),
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scanning gallery root: %w", walkErr)
	}

	if opts.Randomize {
		Shuffle(images, opts.Seed)
	}
	return images, nil
}

// Shuffle reorders images in place. A zero seed uses the current time.
func Shuffle(images []Image, seed int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // Display order only.
	rng.Shuffle(len(images), func(i, j int) { images[i], images[j] = images[j], images[i] })
}

// Catalog is the thread-safe set of gallery images.
type Catalog struct {
	mu     sync.RWMutex
	images []Image
}

// NewCatalog takes ownership of images.
func NewCatalog(images []Image) *Catalog {
	return &Catalog{images: images}
}

// Len returns the number of images.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Rows returns the number of grid rows needed for cols columns.
func (c *Catalog) Rows(cols int) int {
	if cols < 1 {
		return 0
	}
	n := c.Len()
	return (n + cols - 1) / cols
}

// Get returns the image at i.
func (c *Catalog) Get(i int) (Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.images) {
		return Image{}, false
	}
	return c.images[i], true
}

// Slice returns a copy of the images in [start, end), clamped to the catalog.
func (c *Catalog) Slice(start, end int) []Image {
	c.mu.RLock()
	defer c.mu.RUnlock()
	start = max(start, 0)
	end = min(end, len(c.images))
	if start >= end {
		return nil
	}
	out := make([]Image, end-start)
	copy(out, c.images[start:end])
	return out
}

// SetThumbnail records the thumbnail URL path for the image at i.
func (c *Catalog) SetThumbnail(i int, thumbPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i >= 0 && i < len(c.images) {
		c.images[i].ThumbPath = thumbPath
	}
}

// MissingThumbnails returns the indices in [start, end) without a thumbnail.
func (c *Catalog) MissingThumbnails(start, end int) []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	start = max(start, 0)
	end = min(end, len(c.images))

	var missing []int
	for i := start; i < end; i++ {
		if c.images[i].ThumbPath == "" {
			missing = append(missing, i)
		}
	}
	return missing
}
