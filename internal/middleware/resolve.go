// internal/middleware/resolve.go
//
// Tenant resolution middleware.
//
// Context
// -------
// Sits after request-info enrichment and before any handler that touches a
// repository.  For every request it creates an empty RequestContext and a
// lazily bound scope handle, then stores both in the request context.  The
// strategy chain does not run here; it runs the first time a handler or a
// repository forces the scope, and the memoized result serves the rest of
// the request.  This is how the resolved tenant reaches code far from the
// HTTP layer without any process-wide slot.
package middleware

import (
	"net/http"

	"github.com/yanizio/storekit/internal/scope"
	"github.com/yanizio/storekit/internal/tenant"
)

// Resolve wires a per-request tenant scope around next.
func Resolve(res *tenant.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := res.NewRequestContext(r)

			ctx := tenant.WithRequestContext(r.Context(), rc)
			s := scope.Lazy(func() (int64, error) {
				t, err := rc.CurrentTenant(ctx)
				if err != nil {
					return 0, err
				}
				return t.ID, nil
			})
			ctx = scope.With(ctx, s)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
