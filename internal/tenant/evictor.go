// evictor.go houses the eviction loop for Directory.  Every EvictInterval
// it scans the map and removes:
//
//   - entries idle longer than idleTTL
//   - least-recently-used entries when map size exceeds maxEntries
//
// Each eviction event is logged and updates Prometheus counters.
package tenant

import (
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/storekit/internal/metrics"
)

func (d *Directory) evictLoop() {
	defer close(d.evictDone)
	for {
		select {
		case <-d.quit:
			return
		case <-d.evictTicker.C:
		}

		now := time.Now().UnixNano()
		var count int

		// ----------------------------------------------------------------
		// Idle eviction pass
		// ----------------------------------------------------------------
		d.m.Range(func(key, value any) bool {
			count++
			ent := value.(*dirEntry)
			idle := time.Duration(now-atomic.LoadInt64(&ent.lastSeen)) * time.Nanosecond
			if idle > d.idleTTL {
				d.m.Delete(key)
				zap.S().Debugw("tenant cache entry evicted",
					"key", key, "idle", idle.Truncate(time.Second))
				metrics.CachedTenants.Dec()
			}
			return true
		})

		// ----------------------------------------------------------------
		// LRU eviction pass
		// ----------------------------------------------------------------
		if d.maxEntries > 0 && count > d.maxEntries {
			type kv struct {
				key string
				at  int64
			}
			var all []kv
			d.m.Range(func(key, value any) bool {
				ent := value.(*dirEntry)
				all = append(all, kv{key: key.(string), at: ent.lastSeen})
				return true
			})
			sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })
			for i := 0; i < count-d.maxEntries && i < len(all); i++ {
				if _, ok := d.m.Load(all[i].key); ok {
					d.m.Delete(all[i].key)
					zap.S().Debugw("tenant cache entry evicted (LRU pressure)",
						"key", all[i].key)
					metrics.CachedTenants.Dec()
				}
			}
		}
	}
}
