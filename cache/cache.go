// Package cache memoizes configuration loads for the arming decision path.
// Concurrent requests for the same key share a single store round trip; a
// save or delete invalidates the key so decisions see their own writes.
package cache

import (
	"context"

	"github.com/vtpl1/ruleserver/models"
)

// LoadFunc fetches a configuration record from the backing store.
type LoadFunc func(ctx context.Context, key models.ConfigKey) (*models.ConfigRecord, error)

// ConfigCache serves lookups through a single goroutine owning the entry
// map, so no locking is needed around the map itself.
type ConfigCache struct {
	requests      chan request
	invalidations chan models.ConfigKey
}

type request struct {
	ctx      context.Context
	key      models.ConfigKey
	response chan result
}

type result struct {
	record *models.ConfigRecord
	err    error
}

type entry struct {
	res   result
	ready chan struct{}
}

// New starts the cache server goroutine.
func New(load LoadFunc) *ConfigCache {
	c := &ConfigCache{
		requests:      make(chan request),
		invalidations: make(chan models.ConfigKey),
	}
	go c.server(load)
	return c
}

// Get returns the cached record for the key, loading it on first use.
// Duplicate suppression: concurrent callers for the same key wait on the one
// in-flight load.
func (c *ConfigCache) Get(ctx context.Context, key models.ConfigKey) (*models.ConfigRecord, error) {
	response := make(chan result, 1)
	select {
	case c.requests <- request{ctx: ctx, key: key, response: response}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-response:
		return res.record, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops the cached entry for the key.
func (c *ConfigCache) Invalidate(key models.ConfigKey) {
	c.invalidations <- key
}

func (c *ConfigCache) server(load LoadFunc) {
	entries := make(map[models.ConfigKey]*entry)
	for {
		select {
		case key := <-c.invalidations:
			delete(entries, key)
		case req := <-c.requests:
			e, ok := entries[req.key]
			if ok && e.failed() {
				// Failed loads are not kept; retry on the next request.
				ok = false
			}
			if !ok {
				e = &entry{ready: make(chan struct{})}
				entries[req.key] = e
				go e.call(load, req.ctx, req.key)
			}
			go e.deliver(req.response)
		}
	}
}

func (e *entry) call(load LoadFunc, ctx context.Context, key models.ConfigKey) {
	e.res.record, e.res.err = load(ctx, key)
	close(e.ready)
}

func (e *entry) deliver(response chan<- result) {
	<-e.ready
	response <- e.res
}

func (e *entry) failed() bool {
	select {
	case <-e.ready:
		return e.res.err != nil
	default:
		return false
	}
}
