// Package engine executes a resolved query.QuerySpec over loaded tables.
//
// Execution is a straight pipeline: cross join the FROM tables in order,
// filter the joined rows with the WHERE predicates, then either aggregate a
// single column or project (and optionally de-duplicate) the output columns.
// There is no indexing; the cross join materialises the full product.
package engine

import (
	"github.com/leapstack-labs/leapselect/pkg/core"
	"github.com/leapstack-labs/leapselect/pkg/schema"
)

// Relation is an intermediate row set. Rows are positional against
// Attributes.
type Relation struct {
	Attributes []string
	Rows       [][]int64
}

// Index returns the position of a qualified attribute, or -1.
func (r *Relation) Index(attr string) int {
	for i, a := range r.Attributes {
		if a == attr {
			return i
		}
	}
	return -1
}

// CrossJoin left-folds tables into their Cartesian product. Attributes are
// concatenated in table order and each output row concatenates one row of
// every table in the same order.
func CrossJoin(tables []*schema.Table) (*Relation, error) {
	if len(tables) == 0 {
		return nil, core.Errorf(core.KindJoinExecution, "no tables to join")
	}

	var out *Relation
	for _, t := range tables {
		rel, err := relationOf(t)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = rel
			continue
		}
		out = product(out, rel)
	}
	return out, nil
}

func relationOf(t *schema.Table) (*Relation, error) {
	if t == nil {
		return nil, core.Errorf(core.KindJoinExecution, "nil table")
	}
	width := len(t.Attributes)
	for i, row := range t.Rows {
		if len(row) != width {
			return nil, core.Errorf(core.KindJoinExecution, "table %s row %d has %d values, expected %d", t.Name, i+1, len(row), width)
		}
	}
	return &Relation{Attributes: t.Attributes, Rows: t.Rows}, nil
}

func product(left, right *Relation) *Relation {
	attrs := make([]string, 0, len(left.Attributes)+len(right.Attributes))
	attrs = append(attrs, left.Attributes...)
	attrs = append(attrs, right.Attributes...)

	rows := make([][]int64, 0, len(left.Rows)*len(right.Rows))
	for _, l := range left.Rows {
		for _, r := range right.Rows {
			row := make([]int64, 0, len(attrs))
			row = append(row, l...)
			row = append(row, r...)
			rows = append(rows, row)
		}
	}
	return &Relation{Attributes: attrs, Rows: rows}
}
