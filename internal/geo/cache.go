// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package geo

import (
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"github.com/hmassawe/karatasi/internal/logging"
	"github.com/hmassawe/karatasi/internal/models"
)

// Cache stores resolved locations in BadgerDB with a TTL, so repeat visitors
// do not burn provider quota. An empty path gives an in-memory cache.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// NewCache opens the cache at the given path.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	// Badger logs through its own interface; silence it and rely on our
	// own logging at the call sites.
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open geolocation cache: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Cache{db: db, ttl: ttl}, nil
}

// Get returns the cached location for an IP, or (nil, false) on a miss.
func (c *Cache) Get(ip string) (*models.Geolocation, bool) {
	var loc models.Geolocation
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(ip))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &loc)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			logging.Debug().Err(err).Msg("geolocation cache read failed")
		}
		return nil, false
	}

	loc.Cached = true
	return &loc, true
}

// Put stores a resolved location. Failures are logged and ignored; the
// cache is an optimization, not a source of truth.
func (c *Cache) Put(ip string, loc *models.Geolocation) {
	data, err := json.Marshal(loc)
	if err != nil {
		logging.Debug().Err(err).Msg("failed to marshal geolocation for cache")
		return
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(cacheKey(ip), data).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		logging.Debug().Err(err).Msg("geolocation cache write failed")
	}
}

// Close flushes and closes the underlying store.
func (c *Cache) Close() error {
	return c.db.Close()
}

func cacheKey(ip string) []byte {
	return []byte("geo:" + ip)
}
