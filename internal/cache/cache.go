// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache implements an expiring key/value cache with a durable
// file-backed layer and an in-memory mirror. Entries survive process
// restarts; expired entries are treated as absent and swept opportunistically.
package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// entryExt is the durable file suffix, one file per cache key.
const entryExt = ".json"

// entry is the durable representation of one cached value. The payload is
// kept as raw JSON so the cache has no knowledge of caller types.
type entry struct {
	Payload   json.RawMessage `json:"data"`
	CreatedAt int64           `json:"timestamp"`
	TTLMillis int64           `json:"expiresIn"`
}

// expired reports whether the entry is past its TTL at time now.
func (e entry) expired(now time.Time) bool {
	return now.UnixMilli()-e.CreatedAt > e.TTLMillis
}

// Cache is a durable TTL cache. All methods are safe for concurrent use.
// The zero value is not usable; construct with New.
type Cache struct {
	mu   sync.RWMutex
	mem  map[string]entry
	dir  string
	warn io.Writer

	// now is replaceable in tests.
	now func() time.Time
}

// New opens the cache rooted at dir, creating the directory if needed. It
// scans the durable layer, drops entries that already expired, and loads the
// rest into the memory mirror. Unparseable entry files are removed.
// Warnings go to warn (nil discards them).
func New(dir string, warn io.Writer) (*Cache, error) {
	if warn == nil {
		warn = io.Discard
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	c := &Cache{
		mem:  make(map[string]entry),
		dir:  dir,
		warn: warn,
		now:  time.Now,
	}
	c.loadFromDisk()
	return c, nil
}

func (c *Cache) loadFromDisk() {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		fmt.Fprintf(c.warn, "warning: cache scan failed: %v\n", err)
		return
	}

	now := c.now()
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), entryExt) {
			continue
		}
		path := filepath.Join(c.dir, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(data, &e); err != nil || e.expired(now) {
			os.Remove(path)
			continue
		}
		c.mem[decodeKey(strings.TrimSuffix(f.Name(), entryExt))] = e
	}
}

// Get loads the value stored under key into v (a pointer) and reports
// whether a live entry was found. Expired entries are treated as absent and
// dropped from the mirror.
func (c *Cache) Get(key string, v any) bool {
	c.mu.Lock()
	e, ok := c.mem[key]
	if ok && e.expired(c.now()) {
		delete(c.mem, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		fmt.Fprintf(c.warn, "warning: cache entry %q undecodable: %v\n", key, err)
		return false
	}
	return true
}

// Set stores v under key for ttl. The value is written to both the memory
// mirror and the durable layer. A durable-write failure never fails the
// caller: the cache sweeps expired durable entries and retries once, and on
// a second failure keeps the in-memory copy only.
func (c *Cache) Set(key string, v any, ttl time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache entry %q: %w", key, err)
	}

	e := entry{
		Payload:   payload,
		CreatedAt: c.now().UnixMilli(),
		TTLMillis: ttl.Milliseconds(),
	}

	c.mu.Lock()
	c.mem[key] = e
	c.mu.Unlock()

	if err := c.writeEntry(key, e); err != nil {
		c.Sweep()
		if err := c.writeEntry(key, e); err != nil {
			fmt.Fprintf(c.warn, "warning: cache entry %q kept in memory only: %v\n", key, err)
		}
	}
	return nil
}

func (c *Cache) writeEntry(key string, e entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return os.WriteFile(c.entryPath(key), data, 0o644)
}

// Sweep removes expired entries from the durable layer and the mirror.
func (c *Cache) Sweep() {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}

	now := c.now()
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), entryExt) {
			continue
		}
		path := filepath.Join(c.dir, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(data, &e); err != nil || e.expired(now) {
			os.Remove(path)
			c.mu.Lock()
			delete(c.mem, decodeKey(strings.TrimSuffix(f.Name(), entryExt)))
			c.mu.Unlock()
		}
	}
}

// Clear drops every entry from both layers.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.mem = make(map[string]entry)
	c.mu.Unlock()

	files, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), entryExt) {
			os.Remove(filepath.Join(c.dir, f.Name()))
		}
	}
	return nil
}

// Len returns the number of live entries in the memory mirror.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.mem)
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, encodeKey(key)+entryExt)
}

// Cache keys contain query text, so they are percent-escaped into safe
// filenames. The escaping must round-trip: decodeKey(encodeKey(k)) == k.
func encodeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_':
			b.WriteRune(r)
		default:
			for _, byt := range []byte(string(r)) {
				fmt.Fprintf(&b, "%%%02X", byt)
			}
		}
	}
	return b.String()
}

func decodeKey(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		if name[i] == '%' && i+2 < len(name) {
			var byt byte
			if _, err := fmt.Sscanf(name[i+1:i+3], "%02X", &byt); err == nil {
				b.WriteByte(byt)
				i += 2
				continue
			}
		}
		b.WriteByte(name[i])
	}
	return b.String()
}
