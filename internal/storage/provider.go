// internal/storage/provider.go
//
// Storage provider contract.
//
// Context
// -------
// The repository layer never touches a *sqlx.DB directly.  It speaks to this
// interface, which treats the database as an opaque, already-connected store
// keyed by entity metadata.  The contract the repositories rely on:
//
//   - BulkInsert is atomic: every row commits or none do.
//   - Failures are returned unchanged; the provider never retries.
//   - GetWhere reports absence as sql.ErrNoRows, not as a synthetic error.
//
// The sqlx implementation lives in sql.go; tests substitute an in-memory
// fake.
package storage

import (
	"context"

	"github.com/yanizio/storekit/internal/entity"
)

// Provider is the persistence collaborator consumed by repositories.
type Provider interface {
	// SelectWhere scans every row matching cond into dest (a *[]T).
	SelectWhere(ctx context.Context, meta *entity.Meta, dest any, cond Cond) error

	// GetWhere scans the first row matching cond into dest (a *T).
	// Absence surfaces as sql.ErrNoRows.
	GetWhere(ctx context.Context, meta *entity.Meta, dest any, cond Cond) error

	// Insert persists a single entity.
	Insert(ctx context.Context, meta *entity.Meta, e any) error

	// BulkInsert persists all entities inside one transaction.
	BulkInsert(ctx context.Context, meta *entity.Meta, es []any) error

	// Update persists an entity as given, matched on its identity column.
	Update(ctx context.Context, meta *entity.Meta, e any) error

	// BulkDelete removes rows by identity.
	BulkDelete(ctx context.Context, meta *entity.Meta, ids []int64) error

	// DeleteWhere removes every row matching cond.  An empty cond is
	// rejected rather than interpreted as "delete all".
	DeleteWhere(ctx context.Context, meta *entity.Meta, cond Cond) error

	// QueryProc executes a stored procedure and scans the result set into
	// dest (a *[]T).
	QueryProc(ctx context.Context, dest any, name string, args ...any) error

	// Truncate empties the table.  resetIdentity also resets the
	// auto-increment counter.
	Truncate(ctx context.Context, meta *entity.Meta, resetIdentity bool) error
}
