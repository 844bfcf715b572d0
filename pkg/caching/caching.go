// Package caching stores fetched documentation pages on disk with a TTL.
package caching

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const entryExt = ".html"

// Cache is a file-based page cache. Entries older than the TTL are misses
// and get removed on read. A non-positive TTL never expires entries.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewCache creates the cache directory if needed.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// entryPath names the file for pageURL by the SHA-256 of the URL.
func (c *Cache) entryPath(pageURL string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%x%s", sha256.Sum256([]byte(pageURL)), entryExt))
}

// Get returns the cached page and true on a fresh hit.
func (c *Cache) Get(pageURL string) ([]byte, bool) {
	path := c.entryPath(pageURL)

	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(info.ModTime()) > c.ttl {
		_ = os.Remove(path)
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores data for pageURL, replacing any previous entry.
func (c *Cache) Set(pageURL string, data []byte) error {
	tmp, err := os.CreateTemp(c.dir, "page-*")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.entryPath(pageURL)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// Delete drops the entry for pageURL. Missing entries are not an error.
func (c *Cache) Delete(pageURL string) error {
	if err := os.Remove(c.entryPath(pageURL)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}
