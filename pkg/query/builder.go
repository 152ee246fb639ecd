package query

import (
	"strconv"

	"github.com/leapstack-labs/leapselect/pkg/core"
	"github.com/leapstack-labs/leapselect/pkg/token"
	"github.com/leapstack-labs/leapselect/pkg/tokenizer"
)

// Build turns a classified token stream into a QuerySpec.
//
// Tokens before FROM form the select list; identifiers after FROM are tables
// in join order; the WHERE group contributes predicates and at most one
// combinator. The statement must start with SELECT and end with a single ';'.
func Build(toks []tokenizer.Token) (*QuerySpec, error) {
	if len(toks) == 0 {
		return nil, core.Errorf(core.KindQueryStructure, "empty query")
	}
	if first := toks[0]; first.Category != tokenizer.Keyword || first.Type != token.SELECT {
		return nil, core.Errorf(core.KindQueryStructure, "query must start with SELECT, found %q", first.Value)
	}

	end := -1
	for i, tok := range toks {
		if tok.Category == tokenizer.Terminator {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, core.Errorf(core.KindQueryStructure, "missing terminating ';'")
	}
	if end != len(toks)-1 {
		return nil, core.Errorf(core.KindQueryStructure, "only one statement is allowed, found %q after ';'", toks[end+1].Value)
	}

	b := &builder{spec: &QuerySpec{}}
	for _, tok := range toks[1:end] {
		var err error
		if b.fromSeen {
			err = b.fromToken(tok)
		} else {
			err = b.selectToken(tok)
		}
		if err != nil {
			return nil, err
		}
	}
	if !b.fromSeen {
		return nil, core.Errorf(core.KindQueryStructure, "missing FROM clause")
	}
	return b.spec, nil
}

type builder struct {
	spec      *QuerySpec
	fromSeen  bool
	whereSeen bool
}

func (b *builder) selectToken(tok tokenizer.Token) error {
	switch tok.Category {
	case tokenizer.Keyword:
		switch tok.Type {
		case token.FROM:
			b.fromSeen = true
			return nil
		case token.DISTINCT:
			if b.spec.Distinct || len(b.spec.Projections) > 0 {
				return core.Errorf(core.KindQueryStructure, "DISTINCT must directly follow SELECT (at %s)", tok.Pos)
			}
			b.spec.Distinct = true
			return nil
		}
		return core.Errorf(core.KindQueryStructure, "unsupported keyword %s in select list", tok.Value)

	case tokenizer.IdentifierList:
		for _, item := range tok.Children {
			if err := b.selectItem(item); err != nil {
				return err
			}
		}
		return nil

	case tokenizer.Where:
		return core.Errorf(core.KindQueryStructure, "WHERE before FROM")

	default:
		return b.selectItem(tok)
	}
}

func (b *builder) selectItem(tok tokenizer.Token) error {
	switch tok.Category {
	case tokenizer.Wildcard:
		b.spec.Projections = append(b.spec.Projections, Projection{Kind: Wildcard})
	case tokenizer.Identifier:
		ref, err := columnRef(tok)
		if err != nil {
			return err
		}
		b.spec.Projections = append(b.spec.Projections, Projection{Kind: PlainColumn, Column: ref})
	case tokenizer.Function:
		arg := tok.Children[0]
		ref := ColumnRef{Column: "*"}
		if arg.Category == tokenizer.Identifier {
			var err error
			if ref, err = columnRef(arg); err != nil {
				return err
			}
		}
		b.spec.Projections = append(b.spec.Projections, Projection{
			Kind:     Aggregate,
			Column:   ref,
			Function: tok.FuncName(),
		})
	default:
		return core.Errorf(core.KindQueryStructure, "unexpected %s %q in select list", tok.Category, tok.Value)
	}
	return nil
}

func (b *builder) fromToken(tok tokenizer.Token) error {
	switch tok.Category {
	case tokenizer.Identifier:
		return b.addTable(tok)
	case tokenizer.IdentifierList:
		for _, item := range tok.Children {
			if item.Category != tokenizer.Identifier {
				return core.Errorf(core.KindQueryStructure, "expected table name, found %q", item.Value)
			}
			if err := b.addTable(item); err != nil {
				return err
			}
		}
		return nil
	case tokenizer.Where:
		if b.whereSeen {
			return core.Errorf(core.KindQueryStructure, "more than one WHERE clause")
		}
		b.whereSeen = true
		return b.where(tok)
	default:
		return core.Errorf(core.KindQueryStructure, "unexpected %s %q after FROM", tok.Category, tok.Value)
	}
}

func (b *builder) addTable(tok tokenizer.Token) error {
	if b.whereSeen {
		return core.Errorf(core.KindQueryStructure, "table %q after WHERE", tok.Value)
	}
	ref, ok := ParseColumnRef(tok.Value)
	if !ok || ref.Qualified() {
		return core.Errorf(core.KindQueryStructure, "invalid table name %q", tok.Value)
	}
	for _, existing := range b.spec.Tables {
		if existing == ref.Column {
			return core.Errorf(core.KindQueryStructure, "table %q listed more than once", ref.Column)
		}
	}
	b.spec.Tables = append(b.spec.Tables, ref.Column)
	return nil
}

// where fills predicates and the combinator. A combinator is only accepted
// right after the first predicate.
func (b *builder) where(group tokenizer.Token) error {
	for _, tok := range group.Children {
		switch tok.Category {
		case tokenizer.Comparison:
			if len(b.spec.Predicates) >= 2 {
				return core.Errorf(core.KindWhereStructure, "at most two predicates are supported")
			}
			pred, err := predicate(tok)
			if err != nil {
				return err
			}
			b.spec.Predicates = append(b.spec.Predicates, pred)

		case tokenizer.Keyword:
			if tok.Type == token.WHERE {
				continue
			}
			if len(b.spec.Predicates) != 1 || b.spec.Combinator != CombinatorNone {
				return core.Errorf(core.KindWhereStructure, "%s must appear between exactly two predicates", tok.Value)
			}
			switch tok.Type {
			case token.AND:
				b.spec.Combinator = CombinatorAnd
			case token.OR:
				b.spec.Combinator = CombinatorOr
			default:
				return core.Errorf(core.KindWhereStructure, "unsupported combinator %s", tok.Value)
			}

		default:
			return core.Errorf(core.KindWhereStructure, "unexpected %s %q in WHERE clause", tok.Category, tok.Value)
		}
	}

	switch n := len(b.spec.Predicates); {
	case n == 0:
		return core.Errorf(core.KindWhereStructure, "empty WHERE clause")
	case n == 1 && b.spec.Combinator != CombinatorNone:
		return core.Errorf(core.KindWhereStructure, "%s without a second predicate", b.spec.Combinator)
	case n == 2 && b.spec.Combinator == CombinatorNone:
		return core.Errorf(core.KindWhereStructure, "two predicates need AND or OR between them")
	}
	return nil
}

var operators = map[token.TokenType]Operator{
	token.EQ: OpEq,
	token.NE: OpNe,
	token.GT: OpGt,
	token.GE: OpGe,
	token.LT: OpLt,
	token.LE: OpLe,
}

func predicate(tok tokenizer.Token) (Predicate, error) {
	op, ok := operators[tok.Type]
	if !ok {
		return Predicate{}, core.Errorf(core.KindWhereStructure, "unsupported operator %q", tok.Operator())
	}
	left, err := operand(tok.Children[0])
	if err != nil {
		return Predicate{}, err
	}
	right, err := operand(tok.Children[1])
	if err != nil {
		return Predicate{}, err
	}
	return Predicate{Left: left, Operator: op, Right: right}, nil
}

func operand(tok tokenizer.Token) (Operand, error) {
	if tok.Category == tokenizer.Number {
		v, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return Operand{}, core.Errorf(core.KindQueryStructure, "integer literal %s out of range", tok.Value)
		}
		return LiteralOperand(v), nil
	}
	ref, err := columnRef(tok)
	if err != nil {
		return Operand{}, err
	}
	return ColumnOperand(ref), nil
}

func columnRef(tok tokenizer.Token) (ColumnRef, error) {
	ref, ok := ParseColumnRef(tok.Value)
	if !ok {
		return ColumnRef{}, core.Errorf(core.KindQueryStructure, "invalid column reference %q at %s", tok.Value, tok.Pos)
	}
	return ref, nil
}
