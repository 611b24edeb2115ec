// internal/settings/settings.go
//
// Typed access to the key-value `setting` table.
//
// Context
// -------
// Application settings are name/value rows in the shared database.  The
// only block the core consumes is CommonSettings, which carries the
// DefaultURL applied when a request arrives without a Host header.  The
// loaded block is cached in an atomic.Pointer, refreshed on a fixed TTL, so
// the resolver's fallback path never queries per request.
package settings

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
)

// CommonSettings holds cross-cutting values read by the resolver.
type CommonSettings struct {
	DefaultURL string
}

// Source is what the resolver consumes; Service satisfies it.
type Source interface {
	Common(ctx context.Context) (*CommonSettings, error)
}

const refreshTTL = 5 * time.Minute

type cached struct {
	val      *CommonSettings
	loadedAt time.Time
}

// Service loads setting rows over the shared pool.
type Service struct {
	db      *sqlx.DB
	current atomic.Pointer[cached]
}

// New wraps an already-connected pool.
func New(db *sqlx.DB) *Service { return &Service{db: db} }

// Common returns the cached CommonSettings block, loading or refreshing it
// as needed.  A missing row is not an error; the zero value applies.
func (s *Service) Common(ctx context.Context) (*CommonSettings, error) {
	if c := s.current.Load(); c != nil && time.Since(c.loadedAt) < refreshTTL {
		return c.val, nil
	}

	const q = `
	    SELECT name, value
	    FROM   setting
	    WHERE  name IN ('common.default_url')`
	var rows []struct {
		Name  string `db:"name"`
		Value string `db:"value"`
	}
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}

	cs := &CommonSettings{}
	for _, r := range rows {
		if r.Name == "common.default_url" {
			cs.DefaultURL = r.Value
		}
	}
	s.current.Store(&cached{val: cs, loadedAt: time.Now()})
	return cs, nil
}
