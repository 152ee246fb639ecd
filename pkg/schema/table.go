// Package schema loads table schemas and their integer row data.
//
// A Store is built once by Load and is read-only afterwards; every query
// evaluated against it sees the same immutable tables.
package schema

import "strings"

// Table is a loaded table. Attributes are qualified column names
// ("table.column") in declaration order, and every row has exactly
// len(Attributes) values.
type Table struct {
	Name       string
	Attributes []string
	Rows       [][]int64
}

// Columns returns the unqualified column names in declaration order.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.Attributes))
	for i, attr := range t.Attributes {
		cols[i] = ColumnName(attr)
	}
	return cols
}

// HasColumn reports whether the table declares the unqualified column name.
func (t *Table) HasColumn(column string) bool {
	for _, attr := range t.Attributes {
		if ColumnName(attr) == column {
			return true
		}
	}
	return false
}

// Qualify joins a table and column name into an attribute name.
func Qualify(table, column string) string {
	return table + "." + column
}

// ColumnName strips the "table." prefix from an attribute name.
func ColumnName(attr string) string {
	if i := strings.IndexByte(attr, '.'); i >= 0 {
		return attr[i+1:]
	}
	return attr
}

// Store owns every loaded table.
type Store struct {
	tables map[string]*Table
	order  []string
}

// NewStore builds a store from already-loaded tables, keeping their order.
func NewStore(tables ...*Table) *Store {
	s := &Store{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		s.tables[t.Name] = t
		s.order = append(s.order, t.Name)
	}
	return s
}

// Table returns the named table.
func (s *Store) Table(name string) (*Table, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// Names returns the table names in metadata order.
func (s *Store) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Tables returns the tables in metadata order.
func (s *Store) Tables() []*Table {
	out := make([]*Table, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.tables[name])
	}
	return out
}
