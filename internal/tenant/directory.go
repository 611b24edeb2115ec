// internal/tenant/directory.go
//
// Cached tenant directory.
//
// Context
// -------
// The directory answers "which tenant is id N" and "which tenant serves
// host H" from the shared `tenant` table.  Lookups are cached in a sync.Map
// and deduplicated through singleflight, so a burst of requests for a cold
// host issues one query.  Host matching follows the comma-separated host
// list on each row: the directory scans all live tenants and the first
// match wins.
//
// Entries are evicted on idle TTL and LRU pressure by the loop in
// evictor.go.  Load successes and failures feed the Prometheus counters in
// internal/metrics.
package tenant

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/storekit/internal/metrics"
)

// Static defaults.  Override via the Directory options if desired.
const (
	IdleTTL       = 30 * time.Minute
	MaxEntries    = 1000
	EvictInterval = 5 * time.Minute
)

// ErrNotFound is returned when no live tenant matches the lookup.
var ErrNotFound = errors.New("tenant: not found")

type dirEntry struct {
	tenant   *Tenant
	lastSeen int64 // UnixNano
}

// Directory lazily loads tenant records, stores them in a sync.Map, and
// evicts them on idle TTL or LRU pressure.
type Directory struct {
	db          *sqlx.DB
	sfg         singleflight.Group
	m           sync.Map // "id:<n>" or "host:<h>" → *dirEntry
	evictTicker *time.Ticker
	quit        chan struct{}
	evictDone   chan struct{}
	closeOnce   sync.Once
	idleTTL     time.Duration
	maxEntries  int
}

// NewDirectory constructs a Directory and starts the background evictor.
func NewDirectory(db *sqlx.DB, idleTTL time.Duration, maxEntries int) *Directory {
	d := &Directory{
		db:         db,
		idleTTL:    idleTTL,
		maxEntries: maxEntries,
		quit:       make(chan struct{}),
		evictDone:  make(chan struct{}),
	}
	d.evictTicker = time.NewTicker(EvictInterval)
	go d.evictLoop()
	return d
}

// ByID returns the live tenant with the given id, loading it on demand.
func (d *Directory) ByID(ctx context.Context, id int64) (*Tenant, error) {
	return d.get(ctx, "id:"+strconv.FormatInt(id, 10), func() (*Tenant, error) {
		t, err := byID(ctx, d.db, id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return t, err
	})
}

// ByHost returns the first live tenant whose host list matches host.
func (d *Directory) ByHost(ctx context.Context, host string) (*Tenant, error) {
	if host == "" {
		return nil, ErrNotFound
	}
	return d.get(ctx, "host:"+host, func() (*Tenant, error) {
		all, err := allActive(ctx, d.db)
		if err != nil {
			return nil, err
		}
		for i := range all {
			if HostMatches(&all[i], host) {
				return &all[i], nil
			}
		}
		return nil, ErrNotFound
	})
}

// All returns every live tenant, uncached.  Admin surfaces only.
func (d *Directory) All(ctx context.Context) ([]Tenant, error) {
	return allActive(ctx, d.db)
}

// Count returns the number of live tenants, uncached.
func (d *Directory) Count(ctx context.Context) (int, error) {
	return countActive(ctx, d.db)
}

// get serves key from the cache, loading through singleflight on a miss.
// Negative results are not cached, so a newly created tenant is visible on
// the next request.
func (d *Directory) get(ctx context.Context, key string, load func() (*Tenant, error)) (*Tenant, error) {
	if v, ok := d.m.Load(key); ok {
		ent := v.(*dirEntry)
		atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
		return ent.tenant, nil
	}

	v, err, _ := d.sfg.Do(key, func() (interface{}, error) {
		// Double-check after singleflight barrier.
		if v, ok := d.m.Load(key); ok {
			ent := v.(*dirEntry)
			atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
			return ent.tenant, nil
		}
		t, err := load()
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				metrics.TenantLoadErrorsTotal.Inc()
			}
			return nil, err
		}
		d.m.Store(key, &dirEntry{tenant: t, lastSeen: time.Now().UnixNano()})
		metrics.TenantLoadTotal.Inc()
		metrics.CachedTenants.Inc()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Tenant), nil
}

// Close stops the evictor and waits for its goroutine to exit.  Safe to
// call more than once.
func (d *Directory) Close() {
	d.closeOnce.Do(func() {
		d.evictTicker.Stop()
		close(d.quit)
	})
	<-d.evictDone
}
