// internal/entity/registry.go
//
// Startup-time metadata table for persisted entity types.
//
// Context
// -------
// Register is called once per entity type, normally from an init function in
// the package that declares the type.  It records the table name, the column
// list derived from `db` struct tags, and whether *T satisfies TenantBound.
// Later layers (scope filter, repository, storage) read the cached Meta and
// never reflect again.
//
// Notes
// -----
// • Registration runs before the first request; the map is read-only after
//   startup, so lookups take no lock.
// • Duplicate or tag-less registrations are programmer errors and panic.
package entity

import (
	"fmt"
	"reflect"
	"sync"
)

// Meta describes one registered entity type.
type Meta struct {
	Table       string   // backing table name
	Columns     []string // all mapped columns, identity first
	TenantBound bool     // *T implements TenantBound
	Type        reflect.Type
}

// InsertColumns returns the column list without the identity column, in
// registration order.  Used to build INSERT and UPDATE statements.
func (m *Meta) InsertColumns() []string {
	cols := make([]string, 0, len(m.Columns)-1)
	for _, c := range m.Columns {
		if c != "id" {
			cols = append(cols, c)
		}
	}
	return cols
}

var (
	regMu    sync.Mutex
	registry = make(map[reflect.Type]*Meta)
)

var (
	entityType      = reflect.TypeOf((*Entity)(nil)).Elem()
	tenantBoundType = reflect.TypeOf((*TenantBound)(nil)).Elem()
)

// Register records metadata for entity type T under the given table name.
// It panics on duplicate registration, when *T is not an Entity, or when T
// maps no columns.
func Register[T any](table string) *Meta {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		panic(fmt.Sprintf("entity: %s is not a struct", typ))
	}
	if !reflect.PointerTo(typ).Implements(entityType) {
		panic(fmt.Sprintf("entity: *%s does not implement Entity", typ))
	}

	cols := columnsOf(typ)
	if len(cols) == 0 {
		panic(fmt.Sprintf("entity: %s has no db-tagged fields", typ))
	}

	m := &Meta{
		Table:       table,
		Columns:     cols,
		TenantBound: reflect.PointerTo(typ).Implements(tenantBoundType),
		Type:        typ,
	}

	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := registry[typ]; dup {
		panic(fmt.Sprintf("entity: %s registered twice", typ))
	}
	registry[typ] = m
	return m
}

// MetaOf returns the Meta registered for T, or an error when T was never
// registered.
func MetaOf[T any]() (*Meta, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	regMu.Lock()
	defer regMu.Unlock()
	m, ok := registry[typ]
	if !ok {
		return nil, fmt.Errorf("entity: type %s is not registered", typ)
	}
	return m, nil
}

// columnsOf walks typ, descending into embedded structs, and collects the
// `db` tag of every exported field.  Untagged fields are skipped; "-"
// excludes a field explicitly.
func columnsOf(typ reflect.Type) []string {
	var cols []string
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if f.Anonymous {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				cols = append(cols, columnsOf(ft)...)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, tag)
	}
	return cols
}
