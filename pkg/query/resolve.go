package query

import (
	"strings"

	"github.com/leapstack-labs/leapselect/pkg/core"
	"github.com/leapstack-labs/leapselect/pkg/schema"
)

// Aggregate function names.
const (
	FuncMax = "MAX"
	FuncMin = "MIN"
	FuncSum = "SUM"
	FuncAvg = "AVG"
)

// SupportedFunctions lists the aggregate functions in display order.
var SupportedFunctions = []string{FuncMax, FuncMin, FuncSum, FuncAvg}

// IsSupportedFunction reports whether name (any case) is an aggregate function.
func IsSupportedFunction(name string) bool {
	upper := strings.ToUpper(name)
	for _, fn := range SupportedFunctions {
		if fn == upper {
			return true
		}
	}
	return false
}

// Catalog looks up loaded tables by name. *schema.Store implements it.
type Catalog interface {
	Table(name string) (*schema.Table, bool)
}

// Resolve validates spec against the catalog and returns a copy in which
// every column reference is qualified and aggregate names are upper-cased.
// spec itself is not modified.
func Resolve(spec *QuerySpec, catalog Catalog) (*QuerySpec, error) {
	if len(spec.Tables) == 0 {
		return nil, core.Errorf(core.KindEmptyQuery, "no tables in FROM clause")
	}
	if len(spec.Projections) == 0 {
		return nil, core.Errorf(core.KindEmptyQuery, "no columns selected")
	}

	r := &resolver{tables: make([]*schema.Table, 0, len(spec.Tables))}
	for _, name := range spec.Tables {
		t, ok := catalog.Table(name)
		if !ok {
			return nil, core.Errorf(core.KindUnknownTable, "table %s does not exist", name)
		}
		r.tables = append(r.tables, t)
	}

	if err := checkAggregates(spec.Projections); err != nil {
		return nil, err
	}

	out := spec.Clone()
	for i, p := range out.Projections {
		if p.Kind == Wildcard {
			continue
		}
		if p.Kind == Aggregate {
			p.Function = strings.ToUpper(p.Function)
			if p.Column.Column == "*" && !p.Column.Qualified() {
				return nil, core.Errorf(core.KindQueryStructure, "%s needs a column argument", p.Function)
			}
		}
		ref, err := r.resolve(p.Column)
		if err != nil {
			return nil, err
		}
		p.Column = ref
		out.Projections[i] = p
	}

	for i, pred := range out.Predicates {
		var err error
		if pred.Left, err = r.resolveOperand(pred.Left); err != nil {
			return nil, err
		}
		if pred.Right, err = r.resolveOperand(pred.Right); err != nil {
			return nil, err
		}
		out.Predicates[i] = pred
	}
	return out, nil
}

// checkAggregates enforces that an aggregate is a supported function and the
// only item of the select list.
func checkAggregates(projections []Projection) error {
	count := 0
	for _, p := range projections {
		if p.Kind != Aggregate {
			continue
		}
		if !IsSupportedFunction(p.Function) {
			return core.Errorf(core.KindUnsupportedFunc, "%s() is not a supported function (use one of %s)",
				p.Function, strings.Join(SupportedFunctions, ", "))
		}
		count++
	}
	switch {
	case count > 1:
		return core.Errorf(core.KindMultipleAggregate, "only one aggregate function is allowed, found %d", count)
	case count == 1 && len(projections) > 1:
		return core.Errorf(core.KindAggregateMix, "an aggregate function cannot be combined with other columns")
	}
	return nil
}

type resolver struct {
	tables []*schema.Table
}

func (r *resolver) resolveOperand(o Operand) (Operand, error) {
	if o.IsLiteral {
		return o, nil
	}
	ref, err := r.resolve(o.Column)
	if err != nil {
		return Operand{}, err
	}
	return ColumnOperand(ref), nil
}

func (r *resolver) resolve(ref ColumnRef) (ColumnRef, error) {
	if ref.Qualified() {
		for _, t := range r.tables {
			if t.Name != ref.Table {
				continue
			}
			if !t.HasColumn(ref.Column) {
				return ColumnRef{}, core.Errorf(core.KindUnknownAttribute, "attribute %s does not exist in table %s", ref.Column, ref.Table)
			}
			return ref, nil
		}
		return ColumnRef{}, core.Errorf(core.KindUnknownTable, "table %s of %s is not in the FROM clause", ref.Table, ref)
	}

	var matches []string
	for _, t := range r.tables {
		if t.HasColumn(ref.Column) {
			matches = append(matches, t.Name)
		}
	}
	switch len(matches) {
	case 0:
		return ColumnRef{}, core.Errorf(core.KindUnknownAttribute, "attribute %s does not exist in the given table(s)", ref.Column)
	case 1:
		return ColumnRef{Table: matches[0], Column: ref.Column}, nil
	default:
		return ColumnRef{}, core.Errorf(core.KindAmbiguousAttr, "attribute %s is ambiguous (found in %s); qualify it with a table name",
			ref.Column, strings.Join(matches, ", "))
	}
}
