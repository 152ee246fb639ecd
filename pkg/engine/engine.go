package engine

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapselect/pkg/core"
	"github.com/leapstack-labs/leapselect/pkg/query"
	"github.com/leapstack-labs/leapselect/pkg/schema"
)

// AggregateResult is the outcome of an aggregate query.
type AggregateResult struct {
	// Label is FUNC(table.column).
	Label string
	Value Scalar
}

// Result is either a projected row set or a single aggregate.
type Result struct {
	Columns   []string
	Rows      [][]int64
	Aggregate *AggregateResult
}

// IsAggregate reports whether the result is a single aggregate value.
func (r *Result) IsAggregate() bool {
	return r.Aggregate != nil
}

// RowCount is the number of output rows; an aggregate counts as one.
func (r *Result) RowCount() int {
	if r.Aggregate != nil {
		return 1
	}
	return len(r.Rows)
}

// Execute runs a resolved spec: cross join, filter, then aggregate or
// project. Column references in spec must already be qualified (see
// query.Resolve).
func Execute(spec *query.QuerySpec, catalog query.Catalog) (*Result, error) {
	tables := make([]*schema.Table, len(spec.Tables))
	for i, name := range spec.Tables {
		t, ok := catalog.Table(name)
		if !ok {
			return nil, core.Errorf(core.KindJoinExecution, "table %s is not loaded", name)
		}
		tables[i] = t
	}

	joined, err := CrossJoin(tables)
	if err != nil {
		return nil, err
	}

	filtered, err := Filter(joined, spec.Predicates, spec.Combinator)
	if err != nil {
		return nil, err
	}

	if agg, ok := spec.Aggregate(); ok && len(spec.Projections) == 1 {
		return aggregate(filtered, agg)
	}
	return project(filtered, spec, hiddenAttributes(joined, spec))
}

// hiddenAttributes reports the join attributes to drop from the output. Join
// attributes are only discovered by evaluating the WHERE clause against a
// row, so an empty cross join hides nothing.
func hiddenAttributes(joined *Relation, spec *query.QuerySpec) []string {
	if len(joined.Rows) == 0 {
		return nil
	}
	return JoinAttributes(spec.Predicates)
}

func aggregate(rel *Relation, agg query.Projection) (*Result, error) {
	attr := agg.Column.String()
	idx := rel.Index(attr)
	if idx < 0 {
		return nil, core.Errorf(core.KindUnknownAttribute, "attribute %s is not part of the joined tables", attr)
	}

	values := make([]int64, len(rel.Rows))
	for i, row := range rel.Rows {
		values[i] = row[idx]
	}
	v, err := Aggregate(agg.Function, values)
	if err != nil {
		return nil, err
	}
	return &Result{Aggregate: &AggregateResult{Label: agg.Label(), Value: v}}, nil
}

// OutputColumns lists the projected attributes: every attribute for *, then
// each explicit column, skipping hidden attributes and repeats.
func OutputColumns(attributes, hidden []string, spec *query.QuerySpec) []string {
	var cols []string
	add := func(attr string) {
		if contains(hidden, attr) || contains(cols, attr) {
			return
		}
		cols = append(cols, attr)
	}

	if spec.HasWildcard() {
		for _, attr := range attributes {
			add(attr)
		}
	}
	for _, p := range spec.Projections {
		if p.Kind == query.PlainColumn {
			add(p.Column.String())
		}
	}
	return cols
}

func project(rel *Relation, spec *query.QuerySpec, hidden []string) (*Result, error) {
	cols := OutputColumns(rel.Attributes, hidden, spec)
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = rel.Index(c)
		if idx[i] < 0 {
			return nil, core.Errorf(core.KindUnknownAttribute, "attribute %s is not part of the joined tables", c)
		}
	}

	res := &Result{Columns: cols, Rows: make([][]int64, 0, len(rel.Rows))}
	seen := make(map[string]bool)
	for _, row := range rel.Rows {
		out := make([]int64, len(idx))
		for i, j := range idx {
			out[i] = row[j]
		}
		if spec.Distinct {
			key := RowKey(out)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		res.Rows = append(res.Rows, out)
	}
	return res, nil
}

// RowKey renders a row the way the text output does; DISTINCT compares rows
// by this rendering.
func RowKey(row []int64) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}
