// internal/tenant/resolver.go
//
// Tenant resolution strategy chain.
//
// Context
// -------
// Three strategies compete to name the tenant a request belongs to, in
// strict precedence order:
//
//  1. Registration form.  A request to the registration endpoint that
//     submits a `storeId` field names its tenant explicitly; the declared
//     id wins over everything else.
//  2. Mobile client.  A User-Agent carrying one of the configured app
//     markers resolves through the acting customer: claim → customer →
//     customer's tenant.  No customer means the empty tenant, not an error.
//  3. Host header.  The default web path; first directory match wins.
//
// When the request carries no host at all and the resolved tenant has no
// URL, the configured default URL from settings fills the gap.
//
// A Resolver is built once at boot.  The customer lookup is injected as a
// deferred factory because the customer side in turn consumes repositories
// that need tenant scoping; the factory breaks that cycle without a global
// service locator.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package tenant

import (
	"context"
	"net/http"
	"strings"

	"github.com/yanizio/storekit/internal/customer"
	"github.com/yanizio/storekit/internal/requestinfo"
	"github.com/yanizio/storekit/internal/settings"
	"github.com/yanizio/storekit/internal/ua"
)

// DirectorySource is the slice of the Directory the resolver consumes.
type DirectorySource interface {
	ByID(ctx context.Context, id int64) (*Tenant, error)
	ByHost(ctx context.Context, host string) (*Tenant, error)
	Count(ctx context.Context) (int, error)
}

// Options tune the strategy chain.  Zero fields take the defaults below.
type Options struct {
	RegistrationPath string   // path marker of the registration endpoint
	TaskPath         string   // scheduled-task endpoint, exempt from claims
	MobileMarkers    []string // User-Agent substrings of the mobile apps
}

const (
	defaultRegistrationPath = "/register"
	defaultTaskPath         = "/scheduletask"
)

var defaultMobileMarkers = []string{"EXA-IOS", "EXA-Android"}

// Resolver determines the active tenant for one request at a time.  Safe to
// share across requests; all per-request state lives in RequestContext.
type Resolver struct {
	dir       DirectorySource
	settings  settings.Source
	customers func() customer.Lookup
	opts      Options
}

// NewResolver wires the strategy chain.  customers is deferred; it is first
// invoked when a mobile request actually needs the acting customer.
func NewResolver(dir DirectorySource, set settings.Source, customers func() customer.Lookup, opts Options) *Resolver {
	if opts.RegistrationPath == "" {
		opts.RegistrationPath = defaultRegistrationPath
	}
	if opts.TaskPath == "" {
		opts.TaskPath = defaultTaskPath
	}
	if len(opts.MobileMarkers) == 0 {
		opts.MobileMarkers = defaultMobileMarkers
	}
	return &Resolver{dir: dir, settings: set, customers: customers, opts: opts}
}

// NewRequestContext starts an empty per-request resolution context.
func (r *Resolver) NewRequestContext(req *http.Request) *RequestContext {
	return &RequestContext{res: r, req: req}
}

// isRegistration reports whether req targets the registration endpoint.
func (r *Resolver) isRegistration(req *http.Request) bool {
	return strings.Contains(req.URL.Path, r.opts.RegistrationPath)
}

// isTaskPath reports whether req is the system-internal scheduled-task
// invocation, which carries no HTTP identity.
func (r *Resolver) isTaskPath(req *http.Request) bool {
	return strings.EqualFold(strings.TrimRight(req.URL.Path, "/"), r.opts.TaskPath)
}

// isMobileClient reports whether the declared client identity matches a
// known mobile-app signature.  The enrichment middleware's stored parse is
// preferred; the raw header is the fallback for unenriched requests.
func (r *Resolver) isMobileClient(req *http.Request) bool {
	raw := req.UserAgent()
	if info := requestinfo.FromContext(req.Context()); info != nil {
		raw = info.UA.Raw
	}
	return ua.MatchesAny(raw, r.opts.MobileMarkers)
}

// stripPort removes the :port suffix from a Host header value.
func stripPort(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}
