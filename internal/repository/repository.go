// internal/repository/repository.go
//
// Generic tenant-scoped repository.
//
// Context
// -------
// Repository[T] is the single CRUD surface the rest of the application uses.
// Reads consult the scope filter, so Query and GetByID can never leak
// another tenant's private rows.  Inserts stamp the active tenant onto
// tenant-bound entities, overwriting whatever the caller set.  Updates
// persist as given: ownership must not change through an update, so no
// re-stamp happens there.  Deletes are deliberately unscoped; callers are
// trusted to have selected their rows through the scoped read path first
// (see the repository tests, which pin this down).
//
// Storage failures pass through unchanged.  Absence of a row is an empty
// result, never an error.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yanizio/storekit/internal/entity"
	"github.com/yanizio/storekit/internal/scope"
	"github.com/yanizio/storekit/internal/storage"
)

// ErrInvalidArgument is returned when a nil entity, collection, or
// condition reaches a repository operation.  Nothing is persisted.
var ErrInvalidArgument = errors.New("repository: invalid argument")

// Repository provides scoped CRUD over one registered entity type.
type Repository[T any] struct {
	meta  *entity.Meta
	store storage.Provider
}

// New builds a repository for T, which must have been registered with the
// entity package at startup.
func New[T any](store storage.Provider) (*Repository[T], error) {
	meta, err := entity.MetaOf[T]()
	if err != nil {
		return nil, err
	}
	return &Repository[T]{meta: meta, store: store}, nil
}

// Meta exposes the entity metadata, mainly for logging and tests.
func (r *Repository[T]) Meta() *entity.Meta { return r.meta }

//
// Reads
//

// GetByID fetches one row by primary key with the scope filter applied.
// A missing or invisible row yields (nil, nil).
func (r *Repository[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	filter, err := scope.Filter(ctx, r.meta)
	if err != nil {
		return nil, err
	}

	var out T
	err = r.store.GetWhere(ctx, r.meta, &out, storage.Where("id = ?", id).And(filter))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Query returns every row visible to the active tenant.  This is the only
// read entry point guaranteed to exclude other tenants' private rows.
func (r *Repository[T]) Query(ctx context.Context) ([]T, error) {
	return r.QueryWhere(ctx, storage.Cond{})
}

// QueryWhere returns visible rows additionally restricted by cond.
func (r *Repository[T]) QueryWhere(ctx context.Context, cond storage.Cond) ([]T, error) {
	filter, err := scope.Filter(ctx, r.meta)
	if err != nil {
		return nil, err
	}

	var out []T
	if err := r.store.SelectWhere(ctx, r.meta, &out, cond.And(filter)); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadOriginalCopy re-fetches the persisted state of e by id, scoped, for
// diffing against an in-memory mutated copy before an update.
func (r *Repository[T]) LoadOriginalCopy(ctx context.Context, e *T) (*T, error) {
	if e == nil {
		return nil, ErrInvalidArgument
	}
	return r.GetByID(ctx, any(e).(entity.Entity).EntityID())
}

// FromProc runs a stored procedure and returns its rows.  No scope filter
// is applied; procedures own their filtering.
func (r *Repository[T]) FromProc(ctx context.Context, name string, args ...any) ([]T, error) {
	var out []T
	if err := r.store.QueryProc(ctx, &out, name, args...); err != nil {
		return nil, err
	}
	return out, nil
}

//
// Writes
//

// Insert stamps the active tenant onto a tenant-bound entity and persists
// it.  Any caller-supplied tenant id is overwritten.
func (r *Repository[T]) Insert(ctx context.Context, e *T) error {
	if e == nil {
		return ErrInvalidArgument
	}
	if err := r.stamp(ctx, e); err != nil {
		return err
	}
	return r.store.Insert(ctx, r.meta, e)
}

// BulkInsert stamps and persists the whole batch inside one transaction:
// either all rows commit or none do.
func (r *Repository[T]) BulkInsert(ctx context.Context, es []*T) error {
	if es == nil {
		return ErrInvalidArgument
	}
	if len(es) == 0 {
		return nil
	}

	batch := make([]any, 0, len(es))
	for _, e := range es {
		if e == nil {
			return ErrInvalidArgument
		}
		if err := r.stamp(ctx, e); err != nil {
			return err
		}
		batch = append(batch, e)
	}
	return r.store.BulkInsert(ctx, r.meta, batch)
}

// Update persists e as given.  Ownership is not re-stamped.
func (r *Repository[T]) Update(ctx context.Context, e *T) error {
	if e == nil {
		return ErrInvalidArgument
	}
	return r.store.Update(ctx, r.meta, e)
}

// BulkUpdate persists each entity in turn.
func (r *Repository[T]) BulkUpdate(ctx context.Context, es []*T) error {
	if es == nil {
		return ErrInvalidArgument
	}
	for _, e := range es {
		if err := r.Update(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes e by identity.  The tenant filter is not applied; the
// caller selected e through a scoped read.
func (r *Repository[T]) Delete(ctx context.Context, e *T) error {
	if e == nil {
		return ErrInvalidArgument
	}
	return r.store.BulkDelete(ctx, r.meta, []int64{any(e).(entity.Entity).EntityID()})
}

// BulkDelete removes every entity in the collection by identity, unscoped.
func (r *Repository[T]) BulkDelete(ctx context.Context, es []*T) error {
	if es == nil {
		return ErrInvalidArgument
	}
	ids := make([]int64, 0, len(es))
	for _, e := range es {
		if e == nil {
			return ErrInvalidArgument
		}
		ids = append(ids, any(e).(entity.Entity).EntityID())
	}
	return r.store.BulkDelete(ctx, r.meta, ids)
}

// DeleteWhere removes every row matching cond, unscoped.
func (r *Repository[T]) DeleteWhere(ctx context.Context, cond storage.Cond) error {
	if cond.Empty() {
		return ErrInvalidArgument
	}
	return r.store.DeleteWhere(ctx, r.meta, cond)
}

// Truncate empties the whole table regardless of tenant.  Administrative.
func (r *Repository[T]) Truncate(ctx context.Context, resetIdentity bool) error {
	return r.store.Truncate(ctx, r.meta, resetIdentity)
}

// stamp assigns the active tenant to tenant-bound entities.  The conditions
// mirror the read filter: no stamp for unbound types, tenant 0, or a
// disabled filter.
func (r *Repository[T]) stamp(ctx context.Context, e *T) error {
	id, apply, err := scope.Active(ctx, r.meta)
	if err != nil {
		return err
	}
	if !apply {
		return nil
	}
	any(e).(entity.TenantBound).SetTenantID(id)
	return nil
}
