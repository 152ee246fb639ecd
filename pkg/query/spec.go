// Package query holds the structured representation of a SELECT statement
// and the two stages that produce it: Build turns classified tokens into a
// QuerySpec, and Resolve qualifies and validates it against loaded tables.
package query

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapselect/pkg/schema"
)

// ColumnRef names a column, optionally qualified by its table.
type ColumnRef struct {
	Table  string
	Column string
}

// ParseColumnRef splits "table.column" or "column".
func ParseColumnRef(s string) (ColumnRef, bool) {
	parts := strings.Split(s, ".")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return ColumnRef{Column: parts[0]}, true
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return ColumnRef{Table: parts[0], Column: parts[1]}, true
	default:
		return ColumnRef{}, false
	}
}

// Qualified reports whether the reference names its table.
func (c ColumnRef) Qualified() bool {
	return c.Table != ""
}

func (c ColumnRef) String() string {
	if c.Table == "" {
		return c.Column
	}
	return schema.Qualify(c.Table, c.Column)
}

// Operand is one side of a predicate: a column or an integer literal.
type Operand struct {
	Column    ColumnRef
	Literal   int64
	IsLiteral bool
}

// ColumnOperand returns a column operand.
func ColumnOperand(ref ColumnRef) Operand {
	return Operand{Column: ref}
}

// LiteralOperand returns an integer literal operand.
func LiteralOperand(v int64) Operand {
	return Operand{Literal: v, IsLiteral: true}
}

func (o Operand) String() string {
	if o.IsLiteral {
		return strconv.FormatInt(o.Literal, 10)
	}
	return o.Column.String()
}

// Operator is a relational operator.
type Operator string

// Relational operators.
const (
	OpEq Operator = "="
	OpNe Operator = "!="
	OpGt Operator = ">"
	OpGe Operator = ">="
	OpLt Operator = "<"
	OpLe Operator = "<="
)

// Apply evaluates "a op b".
func (op Operator) Apply(a, b int64) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNe:
		return a != b
	case OpGt:
		return a > b
	case OpGe:
		return a >= b
	case OpLt:
		return a < b
	case OpLe:
		return a <= b
	default:
		return false
	}
}

// Predicate compares two operands.
type Predicate struct {
	Left     Operand
	Operator Operator
	Right    Operand
}

// IsColumnEquality reports whether both operands are columns compared with =.
func (p Predicate) IsColumnEquality() bool {
	return p.Operator == OpEq && !p.Left.IsLiteral && !p.Right.IsLiteral
}

func (p Predicate) String() string {
	return p.Left.String() + " " + string(p.Operator) + " " + p.Right.String()
}

// Combinator joins two predicates.
type Combinator string

// Combinators. CombinatorNone is only valid with fewer than two predicates.
const (
	CombinatorNone Combinator = ""
	CombinatorAnd  Combinator = "AND"
	CombinatorOr   Combinator = "OR"
)

// ProjectionKind tags a projection item.
type ProjectionKind int

// Projection kinds.
const (
	PlainColumn ProjectionKind = iota
	Wildcard
	Aggregate
)

// Projection is one item of the select list.
type Projection struct {
	Kind ProjectionKind
	// Column is set for PlainColumn and Aggregate.
	Column ColumnRef
	// Function is the aggregate function name for Aggregate items.
	Function string
}

// Label is how the item is printed: the column, "*", or FUNC(column).
func (p Projection) Label() string {
	switch p.Kind {
	case Wildcard:
		return "*"
	case Aggregate:
		return p.Function + "(" + p.Column.String() + ")"
	default:
		return p.Column.String()
	}
}

// QuerySpec is the structured form of one SELECT statement.
type QuerySpec struct {
	Tables      []string
	Projections []Projection
	Predicates  []Predicate
	Combinator  Combinator
	Distinct    bool
}

// HasWildcard reports whether the select list contains *.
func (q *QuerySpec) HasWildcard() bool {
	for _, p := range q.Projections {
		if p.Kind == Wildcard {
			return true
		}
	}
	return false
}

// Aggregate returns the aggregate projection, if any.
func (q *QuerySpec) Aggregate() (Projection, bool) {
	for _, p := range q.Projections {
		if p.Kind == Aggregate {
			return p, true
		}
	}
	return Projection{}, false
}

// Clone returns a deep copy.
func (q *QuerySpec) Clone() *QuerySpec {
	return &QuerySpec{
		Tables:      append([]string(nil), q.Tables...),
		Projections: append([]Projection(nil), q.Projections...),
		Predicates:  append([]Predicate(nil), q.Predicates...),
		Combinator:  q.Combinator,
		Distinct:    q.Distinct,
	}
}
