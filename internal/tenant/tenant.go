// internal/tenant/tenant.go
//
// Tenant record and host matching.
//
// Context
// -------
// One row in the `tenant` table describes a logical store sharing the
// physical database with every other store.  `Host` holds a comma-separated
// list of host values the tenant answers to, and `URL` is the public
// fallback URL used when a request carries no usable Host header.
//
// The zero value is the "empty tenant": ID 0, meaning unscoped, shared, or
// unresolved depending on where it appears.  Resolution never returns nil;
// it returns the empty tenant and lets callers decide whether absence is
// acceptable.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package tenant

import (
	"strings"
	"time"
)

// Tenant mirrors one row in the persistent `tenant` table.
type Tenant struct {
	ID        int64      `db:"id"`
	Name      string     `db:"name"`
	Host      string     `db:"host"` // comma-separated host values
	URL       string     `db:"url"`
	DeletedAt *time.Time `db:"deleted_at"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// Empty reports whether t is the unresolved/shared placeholder.
func (t *Tenant) Empty() bool { return t == nil || t.ID == 0 }

// HostMatches reports whether host appears in t's comma-separated host
// list.  Comparison is case-insensitive and ignores surrounding space.
func HostMatches(t *Tenant, host string) bool {
	if t == nil || host == "" {
		return false
	}
	for _, h := range strings.Split(t.Host, ",") {
		if strings.EqualFold(strings.TrimSpace(h), host) {
			return true
		}
	}
	return false
}
