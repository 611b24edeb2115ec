// internal/customer/customer_test.go
//
// Unit-tests for customer lookups using sqlmock.
//
// Run: go test ./internal/customer -v

package customer

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

const byUsernameQuery = `SELECT id, tenant_id, username, email, active, deleted, require_relogin, created_at, deleted_at FROM customer WHERE username = ? AND deleted = FALSE LIMIT 1`

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(sqlx.NewDb(db, "mysql")), mock
}

func TestByUsernameFound(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{
		"id", "tenant_id", "username", "email", "active", "deleted",
		"require_relogin", "created_at", "deleted_at",
	}).AddRow(11, 3, "alice", "alice@example.com", true, false, false, time.Now(), nil)

	mock.ExpectQuery(regexp.QuoteMeta(byUsernameQuery)).
		WithArgs("alice").
		WillReturnRows(rows)

	rec, err := store.ByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ByUsername: %v", err)
	}
	if rec == nil {
		t.Fatal("record is nil, want a hit")
	}
	if rec.TenantID() != 3 {
		t.Fatalf("tenant = %d, want 3", rec.TenantID())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestByUsernameAbsent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(byUsernameQuery)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec, err := store.ByUsername(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("ByUsername: %v", err)
	}
	if rec != nil {
		t.Fatalf("record = %+v, want nil for an absent username", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
