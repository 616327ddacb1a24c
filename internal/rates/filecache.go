package rates

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fileEntry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FileCache keeps the last good snapshot on disk so it survives restarts.
type FileCache struct {
	mu       sync.RWMutex
	filePath string
	now      func() time.Time
}

func NewFileCache(filePath string) *FileCache {
	return &FileCache{filePath: filePath, now: time.Now}
}

// load reads the cache file. Returns an empty map if the file doesn't exist.
func (c *FileCache) load() (map[string]fileEntry, error) {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]fileEntry{}, nil
		}
		return nil, err
	}
	entries := map[string]fileEntry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *FileCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries, err := c.load()
	if err != nil {
		log.Printf("[WARN] read rate cache %s: %v", c.filePath, err)
		return "", false
	}
	e, ok := entries[key]
	if !ok {
		return "", false
	}
	if !e.ExpiresAt.IsZero() && !c.now().Before(e.ExpiresAt) {
		return "", false
	}
	return e.Value, true
}

func (c *FileCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, err := c.load()
	if err != nil {
		log.Printf("[WARN] rate cache %s unreadable, rewriting: %v", c.filePath, err)
		entries = map[string]fileEntry{}
	}
	e := fileEntry{Value: value}
	if ttl > 0 {
		e.ExpiresAt = c.now().Add(ttl)
	}
	entries[key] = e

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(c.filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(c.filePath, data, 0644)
}
