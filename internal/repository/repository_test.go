// internal/repository/repository_test.go
//
// Unit-tests for the scoped repository against an in-memory provider fake.
// The fake interprets exactly the condition shapes the repository builds,
// so these tests double as a pin on the generated WHERE fragments.
//
// Run: go test ./internal/repository -v

package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/yanizio/storekit/internal/entity"
	"github.com/yanizio/storekit/internal/scope"
	"github.com/yanizio/storekit/internal/storage"
)

type product struct {
	entity.Base
	entity.Tenanted
	Name string `db:"name"`
}

type currency struct {
	entity.Base
	Code string `db:"code"`
}

var (
	productMeta  = entity.Register[product]("repo_product")
	currencyMeta = entity.Register[currency]("repo_currency")
)

//
// Provider fake
//

var errSimulated = errors.New("simulated row failure")

type fakeProvider struct {
	products []product
	inserted []any
	deleted  []int64
	lastCond storage.Cond

	failAt int // 1-based BulkInsert index that fails; 0 = never

	truncated     bool
	truncateReset bool
}

func (f *fakeProvider) match(cond storage.Cond, p *product) bool {
	switch cond.SQL {
	case "":
		return true
	case "(tenant_id = ? OR tenant_id = 0)":
		want := cond.Args[0].(int64)
		return p.Tenant == want || p.Tenant == 0
	case "id = ?":
		return p.ID == cond.Args[0].(int64)
	case "(id = ?) AND ((tenant_id = ? OR tenant_id = 0))":
		want := cond.Args[1].(int64)
		return p.ID == cond.Args[0].(int64) && (p.Tenant == want || p.Tenant == 0)
	}
	panic("fakeProvider: unexpected condition " + cond.SQL)
}

func (f *fakeProvider) SelectWhere(_ context.Context, _ *entity.Meta, dest any, cond storage.Cond) error {
	out := dest.(*[]product)
	for i := range f.products {
		if f.match(cond, &f.products[i]) {
			*out = append(*out, f.products[i])
		}
	}
	return nil
}

func (f *fakeProvider) GetWhere(_ context.Context, _ *entity.Meta, dest any, cond storage.Cond) error {
	for i := range f.products {
		if f.match(cond, &f.products[i]) {
			*dest.(*product) = f.products[i]
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeProvider) Insert(_ context.Context, _ *entity.Meta, e any) error {
	f.inserted = append(f.inserted, e)
	if p, ok := e.(*product); ok {
		f.products = append(f.products, *p)
	}
	return nil
}

func (f *fakeProvider) BulkInsert(_ context.Context, _ *entity.Meta, es []any) error {
	// Models the transaction: nothing commits when any row fails.
	for i, e := range es {
		if f.failAt > 0 && i+1 == f.failAt {
			return errSimulated
		}
		_ = e
	}
	for _, e := range es {
		f.inserted = append(f.inserted, e)
		if p, ok := e.(*product); ok {
			f.products = append(f.products, *p)
		}
	}
	return nil
}

func (f *fakeProvider) Update(_ context.Context, _ *entity.Meta, e any) error {
	p := e.(*product)
	for i := range f.products {
		if f.products[i].ID == p.ID {
			f.products[i] = *p
			return nil
		}
	}
	return nil
}

func (f *fakeProvider) BulkDelete(_ context.Context, _ *entity.Meta, ids []int64) error {
	f.deleted = append(f.deleted, ids...)
	kept := f.products[:0]
	for _, p := range f.products {
		drop := false
		for _, id := range ids {
			if p.ID == id {
				drop = true
			}
		}
		if !drop {
			kept = append(kept, p)
		}
	}
	f.products = kept
	return nil
}

func (f *fakeProvider) DeleteWhere(_ context.Context, _ *entity.Meta, cond storage.Cond) error {
	f.lastCond = cond
	return nil
}

func (f *fakeProvider) QueryProc(_ context.Context, dest any, _ string, _ ...any) error {
	*dest.(*[]product) = append([]product{}, f.products...)
	return nil
}

func (f *fakeProvider) Truncate(_ context.Context, _ *entity.Meta, resetIdentity bool) error {
	f.truncated = true
	f.truncateReset = resetIdentity
	f.products = nil
	return nil
}

//
// Helpers
//

func seeded() *fakeProvider {
	mk := func(id, owner int64, name string) product {
		p := product{Name: name}
		p.ID = id
		p.Tenant = owner
		return p
	}
	return &fakeProvider{products: []product{
		mk(1, 0, "shared"),
		mk(2, 1, "mine"),
		mk(3, 2, "theirs"),
	}}
}

func repo(t *testing.T, f *fakeProvider) *Repository[product] {
	t.Helper()
	r, err := New[product](f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func scoped(id int64) context.Context {
	return scope.With(context.Background(), scope.Fixed(id))
}

//
// Reads
//

func TestQueryVisibility(t *testing.T) {
	r := repo(t, seeded())

	got, err := r.Query(scoped(1))
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 2 || got[0].Name != "shared" || got[1].Name != "mine" {
		t.Fatalf("tenant 1 sees %v", got)
	}

	// Unscoped admin context sees everything.
	got, err = r.Query(context.Background())
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("unscoped sees %d rows, want 3", len(got))
	}
}

func TestQueryFilterDisabledSeesAllTenants(t *testing.T) {
	r := repo(t, seeded())

	s := scope.Fixed(1)
	s.SetFilterMode(scope.FilterDisabled)
	ctx := scope.With(context.Background(), s)

	got, err := r.Query(ctx)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("disabled filter sees %d rows, want 3", len(got))
	}
}

func TestGetByIDScoped(t *testing.T) {
	r := repo(t, seeded())

	// Own row and shared row are visible.
	for _, id := range []int64{1, 2} {
		got, err := r.GetByID(scoped(1), id)
		if err != nil || got == nil {
			t.Fatalf("GetByID(%d) = (%v, %v)", id, got, err)
		}
	}

	// Another tenant's private row is invisible, not an error.
	got, err := r.GetByID(scoped(1), 3)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("tenant 1 must not see row 3, got %+v", got)
	}
}

func TestGetByIDMissingIsNotAnError(t *testing.T) {
	r := repo(t, seeded())
	got, err := r.GetByID(scoped(1), 999)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("got %+v, want nil", got)
	}
}

func TestLoadOriginalCopy(t *testing.T) {
	r := repo(t, seeded())

	mutated := product{Name: "renamed"}
	mutated.ID = 2
	mutated.Tenant = 1

	orig, err := r.LoadOriginalCopy(scoped(1), &mutated)
	if err != nil {
		t.Fatalf("LoadOriginalCopy: %v", err)
	}
	if orig == nil || orig.Name != "mine" {
		t.Fatalf("original = %+v, want persisted state", orig)
	}
}

//
// Writes
//

func TestInsertStampsActiveTenant(t *testing.T) {
	f := &fakeProvider{}
	r := repo(t, f)

	p := &product{Name: "new"}
	p.Tenant = 99 // caller-supplied value must be overwritten
	if err := r.Insert(scoped(4), p); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if p.Tenant != 4 {
		t.Fatalf("tenant = %d, want 4", p.Tenant)
	}
}

func TestInsertUnscopedKeepsCallerValue(t *testing.T) {
	f := &fakeProvider{}
	r := repo(t, f)

	p := &product{Name: "new"}
	p.Tenant = 9
	if err := r.Insert(context.Background(), p); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if p.Tenant != 9 {
		t.Fatalf("unscoped insert must not stamp, tenant = %d", p.Tenant)
	}
}

func TestInsertUnboundTypeNeverStamps(t *testing.T) {
	f := &fakeProvider{}
	r, err := New[currency](f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := &currency{Code: "USD"}
	if err := r.Insert(scoped(4), c); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if len(f.inserted) != 1 {
		t.Fatalf("inserted %d, want 1", len(f.inserted))
	}
	_ = currencyMeta
}

func TestBulkInsertStampsEveryEntity(t *testing.T) {
	f := &fakeProvider{}
	r := repo(t, f)

	batch := []*product{{Name: "a"}, {Name: "b"}}
	batch[0].Tenant = 7
	if err := r.BulkInsert(scoped(4), batch); err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}
	for i, p := range batch {
		if p.Tenant != 4 {
			t.Fatalf("row %d tenant = %d, want 4", i, p.Tenant)
		}
	}
}

// TestBulkInsertAtomicity simulates a failure halfway through the batch and
// asserts that zero rows committed.
func TestBulkInsertAtomicity(t *testing.T) {
	f := &fakeProvider{failAt: 2}
	r := repo(t, f)

	batch := []*product{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}
	err := r.BulkInsert(scoped(1), batch)
	if !errors.Is(err, errSimulated) {
		t.Fatalf("err = %v, want simulated failure", err)
	}
	if len(f.products) != 0 || len(f.inserted) != 0 {
		t.Fatalf("partial commit observed: %d rows", len(f.products))
	}
}

func TestUpdateDoesNotRestamp(t *testing.T) {
	f := seeded()
	r := repo(t, f)

	upd := product{Name: "relabeled"}
	upd.ID = 3
	upd.Tenant = 2 // owned by tenant 2; active tenant is 1
	if err := r.Update(scoped(1), &upd); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if f.products[2].Tenant != 2 {
		t.Fatalf("update changed ownership to %d", f.products[2].Tenant)
	}
	if f.products[2].Name != "relabeled" {
		t.Fatalf("update did not persist, name = %q", f.products[2].Name)
	}
}

// TestDeleteIsUnscoped pins the open design question: deletion trusts the
// caller's selection and applies no tenant filter.
func TestDeleteIsUnscoped(t *testing.T) {
	f := seeded()
	r := repo(t, f)

	theirs := product{}
	theirs.ID = 3
	theirs.Tenant = 2
	if err := r.Delete(scoped(1), &theirs); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(f.products) != 2 {
		t.Fatalf("row not deleted; %d rows remain", len(f.products))
	}
}

func TestNilArguments(t *testing.T) {
	r := repo(t, &fakeProvider{})
	ctx := scoped(1)

	checks := map[string]error{
		"Insert":      r.Insert(ctx, nil),
		"BulkInsert":  r.BulkInsert(ctx, nil),
		"Update":      r.Update(ctx, nil),
		"BulkUpdate":  r.BulkUpdate(ctx, nil),
		"Delete":      r.Delete(ctx, nil),
		"BulkDelete":  r.BulkDelete(ctx, nil),
		"DeleteWhere": r.DeleteWhere(ctx, storage.Cond{}),
	}
	for op, err := range checks {
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s(nil) = %v, want ErrInvalidArgument", op, err)
		}
	}
}

func TestTruncateIsUnscopedAndWhole(t *testing.T) {
	f := seeded()
	r := repo(t, f)

	if err := r.Truncate(scoped(1), true); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if !f.truncated || !f.truncateReset {
		t.Fatal("truncate not delegated with resetIdentity")
	}
	if len(f.products) != 0 {
		t.Fatalf("%d rows survived truncate", len(f.products))
	}
}

func TestNewRejectsUnregisteredType(t *testing.T) {
	type unregistered struct {
		entity.Base
		X int `db:"x"`
	}
	if _, err := New[unregistered](&fakeProvider{}); err == nil {
		t.Fatal("expected error for unregistered type")
	}
}
