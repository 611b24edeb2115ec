// internal/scope/filter_test.go
//
// Unit-tests for the visibility predicate, in both its SQL and in-memory
// renderings.

package scope

import (
	"context"
	"testing"

	"github.com/yanizio/storekit/internal/entity"
)

type boundRow struct {
	entity.Base
	entity.Tenanted
	Label string `db:"label"`
}

type plainRow struct {
	entity.Base
	Label string `db:"label"`
}

var (
	boundMeta = entity.Register[boundRow]("scope_bound")
	plainMeta = entity.Register[plainRow]("scope_plain")
)

func scoped(id int64) context.Context {
	return With(context.Background(), Fixed(id))
}

func TestFilterBuildsTenantCondition(t *testing.T) {
	cond, err := Filter(scoped(3), boundMeta)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if cond.SQL != "(tenant_id = ? OR tenant_id = 0)" {
		t.Fatalf("sql = %q", cond.SQL)
	}
	if len(cond.Args) != 1 || cond.Args[0].(int64) != 3 {
		t.Fatalf("args = %v", cond.Args)
	}
}

func TestFilterIdentityCases(t *testing.T) {
	cases := []struct {
		name string
		ctx  context.Context
		meta *entity.Meta
	}{
		{"unbound type", scoped(3), plainMeta},
		{"tenant zero", scoped(0), boundMeta},
		{"no scope", context.Background(), boundMeta},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cond, err := Filter(tc.ctx, tc.meta)
			if err != nil {
				t.Fatalf("Filter: %v", err)
			}
			if !cond.Empty() {
				t.Fatalf("expected identity condition, got %q", cond.SQL)
			}
		})
	}
}

func TestFilterDisabledOverride(t *testing.T) {
	s := Fixed(3)
	s.SetFilterMode(FilterDisabled)
	ctx := With(context.Background(), s)

	cond, err := Filter(ctx, boundMeta)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if !cond.Empty() {
		t.Fatalf("disabled filter must not restrict, got %q", cond.SQL)
	}
}

// TestMatchVisibility pins the visibility rule: a row with owner T is
// visible to active tenant A iff A == 0, A == T, or T == 0.
func TestMatchVisibility(t *testing.T) {
	cases := []struct {
		active, owner int64
		want          bool
	}{
		{active: 0, owner: 0, want: true},
		{active: 0, owner: 2, want: true}, // unscoped admin sees all
		{active: 1, owner: 0, want: true}, // shared row
		{active: 1, owner: 1, want: true},
		{active: 1, owner: 2, want: false}, // other tenant's private row
	}
	for _, tc := range cases {
		row := &boundRow{}
		row.SetTenantID(tc.owner)
		got, err := Match(scoped(tc.active), boundMeta, row)
		if err != nil {
			t.Fatalf("Match: %v", err)
		}
		if got != tc.want {
			t.Fatalf("active=%d owner=%d: visible = %v, want %v",
				tc.active, tc.owner, got, tc.want)
		}
	}
}

func TestMatchUnboundAlwaysVisible(t *testing.T) {
	row := &plainRow{}
	got, err := Match(scoped(9), plainMeta, row)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if !got {
		t.Fatal("unbound entity must be visible to every tenant")
	}
}
