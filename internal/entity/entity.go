// internal/entity/entity.go
//
// Entity capability interfaces and embeddable bases.
//
// Context
// -------
// Every domain record persisted through the repository layer has an integer
// identity.  A subset of entity types is additionally owned by one tenant;
// those types carry a `tenant_id` column and expose the TenantBound
// capability.  Ownership semantics:
//
//   - TenantID == 0  – shared row, visible to every tenant.
//   - TenantID == T  – private to tenant T; visible when the active tenant
//     is T, or when the caller runs unscoped (tenant 0).
//
// Whether a type is tenant-bound is a property of the *type*, never the
// instance.  The registry in registry.go records it once at startup, so hot
// paths never introspect.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package entity

// Entity is the minimal persistence contract: an integer identity.
type Entity interface {
	EntityID() int64
}

// TenantBound marks an entity type whose rows are private to one tenant
// unless the row's tenant id is 0 (shared).
type TenantBound interface {
	Entity
	TenantID() int64
	SetTenantID(int64)
}

//
// Embeddable bases
//

// Base supplies the identity column.  Embed it by pointer-receiver
// convention: repository methods operate on *T.
type Base struct {
	ID int64 `db:"id"`
}

// EntityID returns the primary-key value.
func (b *Base) EntityID() int64 { return b.ID }

// Tenanted supplies the ownership column for tenant-bound types.  Embedding
// it is what makes a type satisfy TenantBound.
type Tenanted struct {
	Tenant int64 `db:"tenant_id"`
}

// TenantID returns the owning tenant, 0 when the row is shared.
func (t *Tenanted) TenantID() int64 { return t.Tenant }

// SetTenantID stamps the owning tenant.
func (t *Tenanted) SetTenantID(id int64) { t.Tenant = id }
