// internal/customer/customer.go
//
// Customer record and lookup helpers.
//
// Context
// -------
// Customers live in the shared database and carry their own tenant id.  The
// core only reads them on the mobile resolution path: a mobile client's
// identity claim names a username, the username names a customer, and the
// customer's tenant id becomes the active tenant.
//
// ByUsername deliberately returns inactive and must-relogin records as
// found.  Real access-control checks happen one layer up; the resolver only
// needs to know which tenant the device belongs to.  Soft-deleted rows are
// excluded in the query itself.
package customer

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/storekit/internal/entity"
)

// Record mirrors one row in the `customer` table.
type Record struct {
	entity.Base
	entity.Tenanted
	Username       string     `db:"username"`
	Email          string     `db:"email"`
	Active         bool       `db:"active"`
	Deleted        bool       `db:"deleted"`
	RequireRelogin bool       `db:"require_relogin"`
	CreatedAt      time.Time  `db:"created_at"`
	DeletedAt      *time.Time `db:"deleted_at"`
}

// Meta is the registered entity metadata for Record.
var Meta = entity.Register[Record]("customer")

// Lookup resolves customers for the tenant resolver.  The sqlx-backed Store
// satisfies it; tests substitute a fake.
type Lookup interface {
	ByUsername(ctx context.Context, username string) (*Record, error)
}

// Store performs customer reads over the shared pool.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an already-connected pool.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

// ByUsername returns the first non-deleted customer with the given
// username.  Absence yields (nil, nil).
func (s *Store) ByUsername(ctx context.Context, username string) (*Record, error) {
	const q = `
	    SELECT id, tenant_id, username, email, active, deleted,
	           require_relogin, created_at, deleted_at
	    FROM   customer
	    WHERE  username = ?
	      AND  deleted  = FALSE
	    LIMIT  1`
	var rec Record
	err := s.db.GetContext(ctx, &rec, q, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
