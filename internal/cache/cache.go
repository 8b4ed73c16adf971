// Package cache serves blend-ratio profiles with bounded staleness.
//
// The policy is stale-while-revalidate: reads always return immediately from
// memory (stale entry or the hard-coded default) and expired keys trigger a
// detached single-attempt refresh against the parameter store. Weights change
// at most once per promotion, so latency wins over freshness here.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/danielpatrickdp/response-fusion/go-controller/internal/store"
)

// #region cache-struct
// Cache holds the in-memory weight profiles and their freshness timestamps.
// One instance is constructed at process start and injected into every
// consumer; the maps are owned exclusively by the cache.
type Cache struct {
	mu      sync.Mutex
	entries map[string]store.WeightProfile
	fetched map[string]time.Time

	reader ProductionReader
	group  singleflight.Group
	config Config
	log    *zap.SugaredLogger
	now    func() time.Time
}

// New creates a weight cache over the given production reader.
func New(reader ProductionReader, config Config, log *zap.SugaredLogger) *Cache {
	return &Cache{
		entries: make(map[string]store.WeightProfile),
		fetched: make(map[string]time.Time),
		reader:  reader,
		config:  config,
		log:     log,
		now:     time.Now,
	}
}
// #endregion cache-struct

// #region get-weights
// GetWeights returns the weight profile for a context type without ever
// blocking on the backing store. Fresh entries are returned directly; expired
// or missing entries trigger a background refresh while the caller gets the
// stale value or the default profile immediately.
func (c *Cache) GetWeights(contextType string) store.WeightProfile {
	c.mu.Lock()
	entry, ok := c.entries[contextType]
	fresh := ok && c.now().Sub(c.fetched[contextType]) < c.config.TTL
	c.mu.Unlock()

	if fresh {
		return entry
	}

	go c.refresh(contextType)

	if ok {
		return entry
	}
	return store.DefaultProfile(contextType)
}
// #endregion get-weights

// #region refresh
// refresh reads the production row and overwrites the cached entry on
// success. Failures leave the old entry untouched; the next read past the
// TTL window re-triggers the attempt. singleflight collapses concurrent
// triggers for the same key into one store read.
func (c *Cache) refresh(contextType string) {
	c.group.Do(contextType, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), c.config.RefreshTimeout)
		defer cancel()

		profile, err := c.reader.GetProduction(ctx, contextType)
		if err != nil {
			c.log.Warnw("weight cache refresh failed", "context_type", contextType, "error", err)
			return nil, nil
		}

		c.mu.Lock()
		c.entries[contextType] = profile
		c.fetched[contextType] = c.now()
		c.mu.Unlock()
		return nil, nil
	})
}
// #endregion refresh

// #region invalidate
// Invalidate clears only the freshness timestamp for a context type: the next
// read still returns the old value immediately but is stale-by-definition and
// schedules a refresh. Called after a candidate promotion.
func (c *Cache) Invalidate(contextType string) {
	c.mu.Lock()
	delete(c.fetched, contextType)
	c.mu.Unlock()
}

// InvalidateAll clears every cached entry and timestamp. Administrative reset.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]store.WeightProfile)
	c.fetched = make(map[string]time.Time)
	c.mu.Unlock()
}
// #endregion invalidate
