// internal/auth/context.go
//
// Identity-claim helpers.
//
// Context
// -------
// Authentication happens upstream (session middleware or an API gateway);
// by the time the core runs, the request context carries at most a verified
// username claim.  The mobile resolution path reads it to find the acting
// customer.  Claims issuance is explicitly out of scope here.
//
// Usage
// -----
//     // Attach a verified claim after login.
//     ctx = auth.WithUsername(ctx, "alice@example.com")
//
//     // Downstream code retrieves it.
//     name, ok := auth.Username(ctx)
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package auth

import "context"

// usernameKey is unexported to avoid context-key collisions.
type usernameKey struct{}

// WithUsername returns a new context carrying the verified username claim.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey{}, username)
}

// Username extracts the claim from ctx.  It returns ("", false) when no
// claim is set.
func Username(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(usernameKey{}).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
