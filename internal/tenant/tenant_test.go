// internal/tenant/tenant_test.go
//
// Unit-tests for host matching on the tenant record.

package tenant

import "testing"

func TestHostMatches(t *testing.T) {
	ten := &Tenant{Host: "shop.example.com, m.example.com ,Legacy.Example.net"}

	cases := []struct {
		host string
		want bool
	}{
		{"shop.example.com", true},
		{"m.example.com", true},
		{"legacy.example.net", true}, // case-insensitive
		{"SHOP.EXAMPLE.COM", true},
		{"other.example.com", false},
		{"example.com", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := HostMatches(ten, tc.host); got != tc.want {
			t.Errorf("HostMatches(%q) = %v, want %v", tc.host, got, tc.want)
		}
	}
}

func TestHostMatchesNilTenant(t *testing.T) {
	if HostMatches(nil, "shop.example.com") {
		t.Fatal("nil tenant must not match")
	}
}

func TestEmpty(t *testing.T) {
	var ten *Tenant
	if !ten.Empty() {
		t.Fatal("nil tenant must be empty")
	}
	if !(&Tenant{}).Empty() {
		t.Fatal("zero tenant must be empty")
	}
	if (&Tenant{ID: 1}).Empty() {
		t.Fatal("tenant 1 must not be empty")
	}
}
