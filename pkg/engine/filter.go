package engine

import (
	"github.com/leapstack-labs/leapselect/pkg/core"
	"github.com/leapstack-labs/leapselect/pkg/query"
)

// JoinAttributes returns the attributes hidden from the output because an
// equality predicate already shows their value through another column.
//
// Predicates are visited in order. A column = column predicate records its
// right-hand column; any predicate with an operator other than = clears
// everything recorded so far, so "a = b AND c > 1" hides nothing while
// "c > 1 AND a = b" hides b.
func JoinAttributes(preds []query.Predicate) []string {
	var attrs []string
	for _, p := range preds {
		if p.Operator != query.OpEq {
			attrs = nil
			continue
		}
		if !p.IsColumnEquality() {
			continue
		}
		name := p.Right.Column.String()
		if !contains(attrs, name) {
			attrs = append(attrs, name)
		}
	}
	return attrs
}

// compiledOperand reads either a fixed literal or a row position.
type compiledOperand struct {
	index   int
	literal int64
}

func (o compiledOperand) value(row []int64) int64 {
	if o.index < 0 {
		return o.literal
	}
	return row[o.index]
}

type compiledPredicate struct {
	left, right compiledOperand
	op          query.Operator
}

func compileOperand(rel *Relation, o query.Operand) (compiledOperand, error) {
	if o.IsLiteral {
		return compiledOperand{index: -1, literal: o.Literal}, nil
	}
	idx := rel.Index(o.Column.String())
	if idx < 0 {
		return compiledOperand{}, core.Errorf(core.KindUnknownAttribute, "attribute %s is not part of the joined tables", o.Column)
	}
	return compiledOperand{index: idx}, nil
}

// Filter keeps the rows satisfying the predicates combined with comb.
func Filter(rel *Relation, preds []query.Predicate, comb query.Combinator) (*Relation, error) {
	if err := checkWhereShape(preds, comb); err != nil {
		return nil, err
	}
	if len(preds) == 0 {
		return rel, nil
	}

	compiled := make([]compiledPredicate, len(preds))
	for i, p := range preds {
		left, err := compileOperand(rel, p.Left)
		if err != nil {
			return nil, err
		}
		right, err := compileOperand(rel, p.Right)
		if err != nil {
			return nil, err
		}
		compiled[i] = compiledPredicate{left: left, right: right, op: p.Operator}
	}

	out := &Relation{Attributes: rel.Attributes}
	for _, row := range rel.Rows {
		keep := compiled[0].op.Apply(compiled[0].left.value(row), compiled[0].right.value(row))
		if len(compiled) == 2 {
			second := compiled[1].op.Apply(compiled[1].left.value(row), compiled[1].right.value(row))
			if comb == query.CombinatorAnd {
				keep = keep && second
			} else {
				keep = keep || second
			}
		}
		if keep {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

func checkWhereShape(preds []query.Predicate, comb query.Combinator) error {
	switch len(preds) {
	case 0, 1:
		if comb != query.CombinatorNone {
			return core.Errorf(core.KindWhereStructure, "%s needs two predicates, found %d", comb, len(preds))
		}
	case 2:
		if comb != query.CombinatorAnd && comb != query.CombinatorOr {
			return core.Errorf(core.KindWhereStructure, "two predicates need AND or OR")
		}
	default:
		return core.Errorf(core.KindWhereStructure, "at most two predicates are supported, found %d", len(preds))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
