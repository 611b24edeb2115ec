// internal/tenant/queries.go
//
// Query helpers for the `tenant` table.  These are thin, parameterised
// reads over the shared pool; the Directory layers its cache on top.
package tenant

import (
	"context"

	"github.com/jmoiron/sqlx"
)

const tenantColumns = `id, name, host, url, deleted_at, created_at, updated_at`

// byID fetches a single live tenant row.
func byID(ctx context.Context, db *sqlx.DB, id int64) (*Tenant, error) {
	const q = `
	    SELECT ` + tenantColumns + `
	    FROM   tenant
	    WHERE  id = ?
	      AND  deleted_at IS NULL
	    LIMIT  1`
	var t Tenant
	if err := db.GetContext(ctx, &t, q, id); err != nil {
		return nil, err
	}
	return &t, nil
}

// allActive returns every tenant that is not soft-deleted.
func allActive(ctx context.Context, db *sqlx.DB) ([]Tenant, error) {
	const q = `
	    SELECT ` + tenantColumns + `
	    FROM   tenant
	    WHERE  deleted_at IS NULL
	    ORDER  BY id`
	var rows []Tenant
	if err := db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// countActive returns the number of live tenants.  Used by the active-scope
// resolution, which only engages when more than one tenant exists.
func countActive(ctx context.Context, db *sqlx.DB) (int, error) {
	const q = `SELECT COUNT(*) FROM tenant WHERE deleted_at IS NULL`
	var n int
	if err := db.GetContext(ctx, &n, q); err != nil {
		return 0, err
	}
	return n, nil
}
