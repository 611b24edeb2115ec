// internal/scope/filter.go
//
// Tenant visibility predicate.
//
// Context
// -------
// One rule, two renderings.  An active tenant T sees its own private rows
// plus every shared row:
//
//	tenant_id = T OR tenant_id = 0
//
// Filter renders the rule as a SQL condition for queryable reads, and Match
// applies the identical rule to an in-memory instance, so post-fetch checks
// can never drift from the query path.  The rule collapses to the identity
// (no restriction) when the type is not tenant-bound, the active tenant is
// 0, or the request disabled filtering.
package scope

import (
	"context"

	"github.com/yanizio/storekit/internal/entity"
	"github.com/yanizio/storekit/internal/storage"
)

// Active reports the tenant id for ctx and whether tenant scoping applies to
// entities described by meta.  Scoping applies when the type is
// tenant-bound, the active tenant is non-zero, and filtering is not
// disabled.
func Active(ctx context.Context, meta *entity.Meta) (int64, bool, error) {
	if !meta.TenantBound {
		return 0, false, nil
	}

	id, err := TenantID(ctx)
	if err != nil {
		return 0, false, err
	}
	if id == 0 {
		return 0, false, nil
	}

	if s, ok := FromContext(ctx); ok && s.Mode() == FilterDisabled {
		return id, false, nil
	}
	return id, true, nil
}

// Filter builds the visibility condition for meta under ctx.  The returned
// Cond is empty when no restriction applies.
func Filter(ctx context.Context, meta *entity.Meta) (storage.Cond, error) {
	id, apply, err := Active(ctx, meta)
	if err != nil {
		return storage.Cond{}, err
	}
	if !apply {
		return storage.Cond{}, nil
	}
	return storage.Where("(tenant_id = ? OR tenant_id = 0)", id), nil
}

// Match applies the same visibility rule to a single instance.
func Match(ctx context.Context, meta *entity.Meta, e entity.Entity) (bool, error) {
	id, apply, err := Active(ctx, meta)
	if err != nil {
		return false, err
	}
	if !apply {
		return true, nil
	}
	tb, ok := e.(entity.TenantBound)
	if !ok {
		return true, nil
	}
	owner := tb.TenantID()
	return owner == id || owner == 0, nil
}
