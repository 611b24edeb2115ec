// internal/tenant/request.go
//
// Per-request resolution context.
//
// Context
// -------
// A RequestContext is created empty when the request arrives and populated
// lazily: the strategy chain runs the first time a result is needed, and
// every later call within the same request returns the memoized value, even
// if directory data changes underneath.  A new request gets a fresh
// context and re-resolves.  Failures memoize the same way, so the error
// surfaces wherever the tenant is first required.
//
// The context is owned by its request's goroutine.  Work spawned from a
// request must go through the scope handle, whose own lock serializes the
// single forced resolution.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/yanizio/storekit/internal/auth"
	"github.com/yanizio/storekit/internal/customer"
	"github.com/yanizio/storekit/internal/metrics"
)

type result[T any] struct {
	done bool
	v    T
	err  error
}

// RequestContext memoizes one request's resolution results.
type RequestContext struct {
	res *Resolver
	req *http.Request

	tenant   result[*Tenant]
	customer result[*customer.Record]
	scopeID  result[int64]
}

// CurrentTenant runs the strategy chain once and returns the resolved
// tenant.  The result is never nil: an unmatched request yields the empty
// tenant (ID 0), which callers must treat as unscoped.
func (rc *RequestContext) CurrentTenant(ctx context.Context) (*Tenant, error) {
	if rc.tenant.done {
		return rc.tenant.v, rc.tenant.err
	}
	rc.tenant.v, rc.tenant.err = rc.resolveTenant(ctx)
	rc.tenant.done = true
	if rc.tenant.err != nil {
		metrics.TenantResolveErrorsTotal.Inc()
	}
	return rc.tenant.v, rc.tenant.err
}

func (rc *RequestContext) resolveTenant(ctx context.Context) (*Tenant, error) {
	r := rc.res
	host := stripPort(rc.req.Host)

	ten := &Tenant{}
	switch {
	case r.isRegistration(rc.req):
		// Explicit client declaration beats every other strategy.  The
		// form read blocks on the request body.
		if raw := rc.req.PostFormValue("storeId"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("tenant: registration storeId %q: %w", raw, err)
			}
			t, err := r.dir.ByID(ctx, id)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			if t != nil {
				ten = t
			}
		}
		metrics.TenantResolveTotal.WithLabelValues("form").Inc()

	case r.isMobileClient(rc.req):
		cust, err := rc.ActingCustomer(ctx)
		if err != nil {
			return nil, err
		}
		if cust != nil && cust.TenantID() != 0 {
			t, err := r.dir.ByID(ctx, cust.TenantID())
			if err != nil && !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			if t != nil {
				ten = t
			}
		}
		metrics.TenantResolveTotal.WithLabelValues("mobile").Inc()

	default:
		t, err := r.dir.ByHost(ctx, host)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if t != nil {
			ten = t
		}
		metrics.TenantResolveTotal.WithLabelValues("host").Inc()
	}

	// Non-HTTP invocations carry no host; fall back to the configured
	// default URL when the resolved tenant offers none.
	if host == "" && ten.URL == "" && r.settings != nil {
		cs, err := r.settings.Common(ctx)
		if err != nil {
			return nil, err
		}
		ten.URL = cs.DefaultURL
	}

	return ten, nil
}

// ActingCustomer resolves the customer behind a mobile request's identity
// claim.  Inactive or must-relogin records are returned as found; the
// caller decides how to react.  The scheduled-task path never carries an
// identity and is exempt.
func (rc *RequestContext) ActingCustomer(ctx context.Context) (*customer.Record, error) {
	if rc.customer.done {
		return rc.customer.v, rc.customer.err
	}
	rc.customer.v, rc.customer.err = rc.resolveCustomer(ctx)
	rc.customer.done = true
	return rc.customer.v, rc.customer.err
}

func (rc *RequestContext) resolveCustomer(ctx context.Context) (*customer.Record, error) {
	if rc.res.isTaskPath(rc.req) {
		return nil, nil
	}
	username, ok := auth.Username(rc.req.Context())
	if !ok {
		return nil, nil
	}
	return rc.res.customers().ByUsername(ctx, username)
}

// ActiveScope returns the administrative scope tenant id: 0 while a single
// tenant exists (nothing to scope between), otherwise the current tenant.
func (rc *RequestContext) ActiveScope(ctx context.Context) (int64, error) {
	if rc.scopeID.done {
		return rc.scopeID.v, rc.scopeID.err
	}
	rc.scopeID.v, rc.scopeID.err = rc.resolveActiveScope(ctx)
	rc.scopeID.done = true
	return rc.scopeID.v, rc.scopeID.err
}

func (rc *RequestContext) resolveActiveScope(ctx context.Context) (int64, error) {
	n, err := rc.res.dir.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n <= 1 {
		return 0, nil
	}
	t, err := rc.CurrentTenant(ctx)
	if err != nil {
		return 0, err
	}
	return t.ID, nil
}
