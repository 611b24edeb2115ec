// internal/storage/sql.go
//
// sqlx-backed storage provider.
//
// Context
// -------
// Statements are assembled once per entity type from the registered column
// list and cached; queries use `?` placeholders via the MySQL driver, and
// writes use sqlx named parameters so `db` tags do the mapping.  Bulk insert
// opens one transaction and rolls back on the first failing row, which is
// what gives the repository its all-or-nothing guarantee.
//
// Notes
// -----
// • Errors pass through untouched so callers can inspect driver codes.
// • Oxford commas, two spaces after periods.
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/storekit/internal/entity"
)

// SQL implements Provider over a shared *sqlx.DB pool.
type SQL struct {
	db    *sqlx.DB
	stmts sync.Map // *entity.Meta → stmtSet
}

type stmtSet struct {
	insert string
	update string
}

// NewSQL wraps an already-connected pool.
func NewSQL(db *sqlx.DB) *SQL {
	return &SQL{db: db}
}

// DB exposes the underlying pool for collaborators that run their own
// queries (directory, settings).
func (s *SQL) DB() *sqlx.DB { return s.db }

func (s *SQL) statements(meta *entity.Meta) stmtSet {
	if v, ok := s.stmts.Load(meta); ok {
		return v.(stmtSet)
	}

	cols := meta.InsertColumns()
	named := make([]string, len(cols))
	sets := make([]string, len(cols))
	for i, c := range cols {
		named[i] = ":" + c
		sets[i] = c + " = :" + c
	}

	set := stmtSet{
		insert: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			meta.Table, strings.Join(cols, ", "), strings.Join(named, ", ")),
		update: fmt.Sprintf("UPDATE %s SET %s WHERE id = :id",
			meta.Table, strings.Join(sets, ", ")),
	}
	s.stmts.Store(meta, set)
	return set
}

func selectQuery(meta *entity.Meta, cond Cond) string {
	q := "SELECT " + strings.Join(meta.Columns, ", ") + " FROM " + meta.Table
	if !cond.Empty() {
		q += " WHERE " + cond.SQL
	}
	return q
}

func (s *SQL) SelectWhere(ctx context.Context, meta *entity.Meta, dest any, cond Cond) error {
	return s.db.SelectContext(ctx, dest, selectQuery(meta, cond), cond.Args...)
}

func (s *SQL) GetWhere(ctx context.Context, meta *entity.Meta, dest any, cond Cond) error {
	return s.db.GetContext(ctx, dest, selectQuery(meta, cond)+" LIMIT 1", cond.Args...)
}

func (s *SQL) Insert(ctx context.Context, meta *entity.Meta, e any) error {
	_, err := s.db.NamedExecContext(ctx, s.statements(meta).insert, e)
	return err
}

func (s *SQL) BulkInsert(ctx context.Context, meta *entity.Meta, es []any) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	stmt := s.statements(meta).insert
	for _, e := range es {
		if _, err := tx.NamedExecContext(ctx, stmt, e); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *SQL) Update(ctx context.Context, meta *entity.Meta, e any) error {
	_, err := s.db.NamedExecContext(ctx, s.statements(meta).update, e)
	return err
}

func (s *SQL) BulkDelete(ctx context.Context, meta *entity.Meta, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In("DELETE FROM "+meta.Table+" WHERE id IN (?)", ids)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.db.Rebind(q), args...)
	return err
}

func (s *SQL) DeleteWhere(ctx context.Context, meta *entity.Meta, cond Cond) error {
	if cond.Empty() {
		return fmt.Errorf("storage: refusing unconditional delete on %s", meta.Table)
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM "+meta.Table+" WHERE "+cond.SQL, cond.Args...)
	return err
}

func (s *SQL) QueryProc(ctx context.Context, dest any, name string, args ...any) error {
	ph := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
	return s.db.SelectContext(ctx, dest, "CALL "+name+"("+ph+")", args...)
}

func (s *SQL) Truncate(ctx context.Context, meta *entity.Meta, resetIdentity bool) error {
	q := "DELETE FROM " + meta.Table
	if resetIdentity {
		q = "TRUNCATE TABLE " + meta.Table
	}
	_, err := s.db.ExecContext(ctx, q)
	return err
}
