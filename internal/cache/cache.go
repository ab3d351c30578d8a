// Package cache stores fetched page extractions so repeated ingestion
// runs do not refetch the same URL. Entries are keyed by canonical URL
// and layered: a small in-memory cache in front of a JSON file cache.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the common get/set surface shared by both layers.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
}

// Key derives the cache key for a canonical URL.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "linkarium:v1:" + hex.EncodeToString(sum[:])
}

// Layered checks memory first and falls through to disk, promoting
// disk hits back into memory.
type Layered struct {
	memory Cache
	disk   Cache
}

// NewLayered builds the standard two-layer page cache.
func NewLayered(memoryTTL time.Duration, dir string, diskTTL time.Duration) *Layered {
	return &Layered{
		memory: NewMemory(memoryTTL),
		disk:   NewDisk(dir, diskTTL),
	}
}

// Get retrieves a value, checking memory before disk.
func (c *Layered) Get(key string) ([]byte, bool) {
	if val, ok := c.memory.Get(key); ok {
		return val, true
	}
	if val, ok := c.disk.Get(key); ok {
		_ = c.memory.Set(key, val, 0)
		return val, true
	}
	return nil, false
}

// Set stores a value in both layers.
func (c *Layered) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}
