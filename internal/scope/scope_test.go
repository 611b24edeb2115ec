// internal/scope/scope_test.go
//
// Unit-tests for the request-scoped tenant handle.
//
// Run: go test ./internal/scope -v

package scope

import (
	"context"
	"errors"
	"testing"
)

func TestLazyResolvesOnceAndMemoizes(t *testing.T) {
	calls := 0
	s := Lazy(func() (int64, error) {
		calls++
		return 42, nil
	})

	for i := 0; i < 3; i++ {
		id, err := s.TenantID()
		if err != nil {
			t.Fatalf("TenantID: %v", err)
		}
		if id != 42 {
			t.Fatalf("id = %d, want 42", id)
		}
	}
	if calls != 1 {
		t.Fatalf("resolve ran %d times, want 1", calls)
	}
}

func TestLazyMemoizesFailure(t *testing.T) {
	boom := errors.New("directory down")
	calls := 0
	s := Lazy(func() (int64, error) {
		calls++
		return 0, boom
	})

	for i := 0; i < 2; i++ {
		if _, err := s.TenantID(); !errors.Is(err, boom) {
			t.Fatalf("err = %v, want %v", err, boom)
		}
	}
	if calls != 1 {
		t.Fatalf("resolve ran %d times, want 1", calls)
	}
}

func TestTenantIDWithoutScopeIsUnscoped(t *testing.T) {
	id, err := TenantID(context.Background())
	if err != nil || id != 0 {
		t.Fatalf("got (%d, %v), want (0, nil)", id, err)
	}
}

func TestRequireTenant(t *testing.T) {
	ctx := With(context.Background(), Fixed(5))
	id, err := RequireTenant(ctx)
	if err != nil || id != 5 {
		t.Fatalf("got (%d, %v), want (5, nil)", id, err)
	}

	ctx = With(context.Background(), Fixed(0))
	if _, err := RequireTenant(ctx); !errors.Is(err, ErrNoTenant) {
		t.Fatalf("err = %v, want ErrNoTenant", err)
	}

	// No scope at all is also a hard failure when a tenant is required.
	if _, err := RequireTenant(context.Background()); !errors.Is(err, ErrNoTenant) {
		t.Fatalf("err = %v, want ErrNoTenant", err)
	}
}

func TestFilterModeRoundTrip(t *testing.T) {
	s := Fixed(1)
	if s.Mode() != FilterDefault {
		t.Fatalf("fresh scope mode = %v, want FilterDefault", s.Mode())
	}
	s.SetFilterMode(FilterDisabled)
	if s.Mode() != FilterDisabled {
		t.Fatalf("mode = %v, want FilterDisabled", s.Mode())
	}
}
