// internal/storage/cond.go
//
// Minimal SQL condition fragments.
//
// A Cond is a raw WHERE fragment plus its positional arguments.  The scope
// filter builds one form of it (`tenant_id = ? OR tenant_id = 0`), and
// callers compose their own for QueryWhere and DeleteWhere.  Keeping the
// type here, next to the provider that consumes it, avoids a query-builder
// dependency for what is a handful of AND-joined fragments.
package storage

// Cond is a SQL boolean expression with `?` placeholders.
type Cond struct {
	SQL  string
	Args []any
}

// Where builds a Cond from a fragment and its arguments.
func Where(sql string, args ...any) Cond {
	return Cond{SQL: sql, Args: args}
}

// Empty reports whether the condition restricts nothing.
func (c Cond) Empty() bool { return c.SQL == "" }

// And conjoins two conditions.  Either side may be empty.
func (c Cond) And(other Cond) Cond {
	switch {
	case c.Empty():
		return other
	case other.Empty():
		return c
	}
	return Cond{
		SQL:  "(" + c.SQL + ") AND (" + other.SQL + ")",
		Args: append(append([]any{}, c.Args...), other.Args...),
	}
}
