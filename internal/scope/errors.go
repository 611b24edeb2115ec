package scope

import "errors"

// ErrNoTenant is returned by RequireTenant when the resolution chain was
// exhausted without producing a non-empty tenant.
var ErrNoTenant = errors.New("scope: no tenant resolved for request")
