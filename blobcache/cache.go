package blobcache

import (
	"context"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/stagekit/stagekit/fetch"
	"github.com/stagekit/stagekit/song"
)

const (
	DefaultMaxBytes   = 64 * 1024 * 1024
	DefaultTTL        = 5 * time.Minute
	DefaultSweepEvery = 1 * time.Minute
)

// Entry is one cached binary asset. Size makes entries byte-weighted in the
// underlying store so the cache bounds total payload bytes, not entry count.
type Entry struct {
	Fingerprint song.Fingerprint
	Bytes       []byte
	MIMEType    string
	FetchedAt   time.Time
}

func (e *Entry) Size() int64 {
	return int64(len(e.Bytes))
}

type Stats struct {
	Entries  int
	InFlight int
}

type Options struct {
	MaxBytes   int64
	TTL        time.Duration
	SweepEvery time.Duration
	// OnEvict runs whenever an entry leaves the cache for any reason
	// (LRU pressure, TTL sweep, invalidation, clear) so the resource
	// bound to it can be released.
	OnEvict func(fp song.Fingerprint)
}

// Cache is a byte-bounded, TTL-aware store of fetched binary content.
// Concurrent fetches for the same fingerprint share a single in-flight
// request. Failed fetches are never cached.
type Cache struct {
	c          *ccache.Cache[*Entry]
	group      singleflight.Group
	mux        sync.Mutex
	inFlight   map[song.Fingerprint]struct{}
	ttl        time.Duration
	sweepEvery time.Duration
	sweepStop  chan struct{}
	sweepDone  chan struct{}
	logger     zerolog.Logger
}

func New(opts Options, logger zerolog.Logger) *Cache {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.SweepEvery <= 0 {
		opts.SweepEvery = DefaultSweepEvery
	}

	onDelete := func(item *ccache.Item[*Entry]) {
		if nil != opts.OnEvict {
			opts.OnEvict(item.Value().Fingerprint)
		}
	}

	store := ccache.New(
		ccache.Configure[*Entry]().
			MaxSize(opts.MaxBytes).
			GetsPerPromote(1).
			ItemsToPrune(2).
			OnDelete(onDelete),
	)

	return &Cache{
		c:          store,
		group:      singleflight.Group{},
		mux:        sync.Mutex{},
		inFlight:   make(map[song.Fingerprint]struct{}),
		ttl:        opts.TTL,
		sweepEvery: opts.SweepEvery,
		sweepStop:  nil,
		sweepDone:  nil,
		logger:     logger.With().Str("component", "blobcache").Logger(),
	}
}

// GetOrFetch returns the cached entry for fp, or invokes fetcher to populate
// it. A hit counts as an access for LRU purposes. Concurrent callers for the
// same fingerprint await one shared fetch; its failure propagates to all of
// them and nothing is cached.
func (c *Cache) GetOrFetch(ctx context.Context, fp song.Fingerprint, fetcher fetch.Func) (*Entry, error) {
	if e, ok := c.Get(fp); ok {
		return e, nil
	}

	v, err, _ := c.group.Do(fp.String(), func() (any, error) {
		// A waiter may arrive after the previous flight settled.
		if e, ok := c.Get(fp); ok {
			return e, nil
		}

		c.markInFlight(fp)
		defer c.unmarkInFlight(fp)

		payload, err := fetcher(ctx, fp.URL())
		if nil != err {
			c.logger.Debug().Err(err).Str("fingerprint", fp.String()).Msg("Content fetch failed")
			return nil, err
		}

		entry := &Entry{
			Fingerprint: fp,
			Bytes:       payload.Bytes,
			MIMEType:    payload.MIMEType,
			FetchedAt:   time.Now(),
		}
		c.c.Set(fp.String(), entry, c.ttl)
		c.logger.Trace().Str("fingerprint", fp.String()).Int("bytes", len(entry.Bytes)).Str("mime_type", entry.MIMEType).Msg("Cached content")
		return entry, nil
	})
	if nil != err {
		return nil, err
	}
	return v.(*Entry), nil
}

// Get returns a fresh entry and touches its LRU recency. Expired entries are
// dropped and reported as misses.
func (c *Cache) Get(fp song.Fingerprint) (*Entry, bool) {
	item := c.c.Get(fp.String())
	if item == nil {
		return nil, false
	}
	if item.Expired() {
		c.c.Delete(fp.String())
		return nil, false
	}
	return item.Value(), true
}

// Contains reports whether fp is cached and fresh, without promoting it.
func (c *Cache) Contains(fp song.Fingerprint) bool {
	item := c.c.Get(fp.String())
	return item != nil && !item.Expired()
}

// InFlight reports whether a fetch for fp is currently running.
func (c *Cache) InFlight(fp song.Fingerprint) bool {
	c.mux.Lock()
	defer c.mux.Unlock()
	_, ok := c.inFlight[fp]
	return ok
}

// Invalidate drops fp, e.g. after the user edits the underlying content.
// The store skips the delete hook for an entry whose promotion has not been
// processed yet, so pending updates are flushed first.
func (c *Cache) Invalidate(fp song.Fingerprint) {
	c.c.SyncUpdates()
	c.c.Delete(fp.String())
}

// Clear drops every entry through the delete path so eviction hooks fire.
func (c *Cache) Clear() {
	c.c.SyncUpdates()
	n := c.c.DeleteFunc(func(string, *ccache.Item[*Entry]) bool { return true })
	c.logger.Debug().Int("entries", n).Msg("Cleared content cache")
}

func (c *Cache) Stats() Stats {
	c.mux.Lock()
	inFlight := len(c.inFlight)
	c.mux.Unlock()
	return Stats{Entries: c.c.ItemCount(), InFlight: inFlight}
}

// Start launches the periodic TTL sweep that removes stale entries even when
// they are still recently used, since underlying URLs may have rotated.
func (c *Cache) Start() {
	c.mux.Lock()
	defer c.mux.Unlock()
	if nil != c.sweepStop {
		return
	}
	c.sweepStop = make(chan struct{})
	c.sweepDone = make(chan struct{})
	go c.sweep(c.sweepStop, c.sweepDone)
}

// Stop halts the sweep loop and the store's internal worker. The cache must
// not be used after Stop.
func (c *Cache) Stop() {
	c.mux.Lock()
	stop, done := c.sweepStop, c.sweepDone
	c.sweepStop, c.sweepDone = nil, nil
	c.mux.Unlock()

	if nil != stop {
		close(stop)
		<-done
	}
	c.c.Stop()
}

func (c *Cache) sweep(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n := c.c.DeleteFunc(func(_ string, item *ccache.Item[*Entry]) bool { return item.Expired() })
			if n > 0 {
				c.logger.Debug().Int("entries", n).Msg("Swept expired content cache entries")
			}
		case <-stop:
			return
		}
	}
}

func (c *Cache) markInFlight(fp song.Fingerprint) {
	c.mux.Lock()
	c.inFlight[fp] = struct{}{}
	c.mux.Unlock()
}

func (c *Cache) unmarkInFlight(fp song.Fingerprint) {
	c.mux.Lock()
	delete(c.inFlight, fp)
	c.mux.Unlock()
}
