package tokenizer

import (
	"strings"

	"github.com/leapstack-labs/leapselect/pkg/core"
	"github.com/leapstack-labs/leapselect/pkg/token"
)

// Category is the classification of a grouped token.
type Category int

const (
	Keyword        Category = iota // SELECT, DISTINCT, FROM, AND, OR, ...
	Identifier                     // column or table name, possibly qualified
	IdentifierList                 // comma-separated identifiers, functions or wildcards
	Function                       // NAME(arg)
	Comparison                     // operand op operand
	Wildcard                       // *
	Number                         // integer literal
	Where                          // WHERE clause up to the terminator
	Terminator                     // ;
)

var categoryNames = [...]string{
	Keyword:        "keyword",
	Identifier:     "identifier",
	IdentifierList: "identifier list",
	Function:       "function",
	Comparison:     "comparison",
	Wildcard:       "wildcard",
	Number:         "number",
	Where:          "where clause",
	Terminator:     "terminator",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// Token is a classified token.
//
// Children depends on the category: the entries of an IdentifierList, the
// single argument of a Function, the left and right operands of a
// Comparison, or the keywords and comparisons inside a Where group.
type Token struct {
	Category Category
	// Value is the source text; keywords are upper-cased.
	Value string
	// Type is the raw token type: the keyword for Keyword tokens and the
	// operator for Comparison tokens.
	Type     token.TokenType
	Pos      token.Position
	Children []Token
}

// FuncName returns the function name of a Function token as written.
func (t Token) FuncName() string {
	name, _, _ := strings.Cut(t.Value, "(")
	return name
}

// Operator returns the comparison operator text of a Comparison token.
func (t Token) Operator() string {
	return t.Type.String()
}

// Classify lexes input and groups the tokens into categories.
func Classify(input string) ([]Token, error) {
	raw, err := Lex(input)
	if err != nil {
		return nil, err
	}
	c := &classifier{toks: raw}
	return c.run()
}

type classifier struct {
	toks []token.Token
	pos  int
}

func (c *classifier) peek() token.Token {
	if c.pos >= len(c.toks) {
		return token.Token{Type: token.EOF}
	}
	return c.toks[c.pos]
}

func (c *classifier) next() token.Token {
	tok := c.peek()
	if c.pos < len(c.toks) {
		c.pos++
	}
	return tok
}

func (c *classifier) run() ([]Token, error) {
	var out []Token
	for c.peek().Type != token.EOF {
		tok := c.peek()
		switch {
		case tok.Type == token.WHERE:
			where, err := c.where()
			if err != nil {
				return nil, err
			}
			out = append(out, where)
		case tok.Type == token.SEMICOLON:
			c.next()
			out = append(out, Token{Category: Terminator, Value: ";", Type: tok.Type, Pos: tok.Pos})
		case tok.Type == token.IDENT || tok.Type == token.STAR:
			item, err := c.itemOrList()
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		case tok.Type == token.NUMBER:
			c.next()
			out = append(out, Token{Category: Number, Value: tok.Literal, Type: tok.Type, Pos: tok.Pos})
		case token.IsKeyword(tok.Type):
			c.next()
			out = append(out, keywordToken(tok))
		default:
			return nil, unexpected(tok, "outside WHERE clause")
		}
	}
	return out, nil
}

// itemOrList reads one select/from item and, when commas follow, the rest of
// the list.
func (c *classifier) itemOrList() (Token, error) {
	first, err := c.item()
	if err != nil {
		return Token{}, err
	}
	if c.peek().Type != token.COMMA {
		return first, nil
	}

	list := Token{Category: IdentifierList, Pos: first.Pos, Children: []Token{first}}
	values := []string{first.Value}
	for c.peek().Type == token.COMMA {
		c.next()
		tok := c.peek()
		if tok.Type != token.IDENT && tok.Type != token.STAR {
			return Token{}, unexpected(tok, "after ','")
		}
		entry, err := c.item()
		if err != nil {
			return Token{}, err
		}
		list.Children = append(list.Children, entry)
		values = append(values, entry.Value)
	}
	list.Value = strings.Join(values, ", ")
	return list, nil
}

// item reads an identifier, a wildcard, or a function call.
func (c *classifier) item() (Token, error) {
	tok := c.next()
	if tok.Type == token.STAR {
		return Token{Category: Wildcard, Value: "*", Type: tok.Type, Pos: tok.Pos}, nil
	}
	if c.peek().Type != token.LPAREN {
		return identToken(tok), nil
	}

	c.next() // (
	argTok := c.next()
	var arg Token
	switch argTok.Type {
	case token.IDENT:
		arg = identToken(argTok)
	case token.STAR:
		arg = Token{Category: Wildcard, Value: "*", Type: argTok.Type, Pos: argTok.Pos}
	default:
		return Token{}, unexpected(argTok, "as function argument")
	}
	if closing := c.next(); closing.Type != token.RPAREN {
		return Token{}, unexpected(closing, "expected ')'")
	}
	return Token{
		Category: Function,
		Value:    tok.Literal + "(" + arg.Value + ")",
		Type:     tok.Type,
		Pos:      tok.Pos,
		Children: []Token{arg},
	}, nil
}

// where groups the WHERE keyword and everything up to the terminator.
func (c *classifier) where() (Token, error) {
	kw := c.next()
	group := Token{Category: Where, Value: "WHERE", Type: kw.Type, Pos: kw.Pos}
	group.Children = append(group.Children, keywordToken(kw))

	for {
		tok := c.peek()
		switch {
		case tok.Type == token.EOF || tok.Type == token.SEMICOLON:
			return group, nil
		case tok.Type == token.IDENT || tok.Type == token.NUMBER:
			cmp, err := c.comparison()
			if err != nil {
				return Token{}, err
			}
			group.Children = append(group.Children, cmp)
		case token.IsKeyword(tok.Type):
			c.next()
			group.Children = append(group.Children, keywordToken(tok))
		default:
			return Token{}, unexpected(tok, "in WHERE clause")
		}
	}
}

func (c *classifier) comparison() (Token, error) {
	left, err := c.operand()
	if err != nil {
		return Token{}, err
	}
	op := c.next()
	if !token.IsComparison(op.Type) {
		return Token{}, unexpected(op, "expected comparison operator")
	}
	right, err := c.operand()
	if err != nil {
		return Token{}, err
	}
	return Token{
		Category: Comparison,
		Value:    left.Value + " " + op.Literal + " " + right.Value,
		Type:     op.Type,
		Pos:      left.Pos,
		Children: []Token{left, right},
	}, nil
}

func (c *classifier) operand() (Token, error) {
	tok := c.next()
	switch tok.Type {
	case token.IDENT:
		return identToken(tok), nil
	case token.NUMBER:
		return Token{Category: Number, Value: tok.Literal, Type: tok.Type, Pos: tok.Pos}, nil
	default:
		return Token{}, unexpected(tok, "expected column or integer operand")
	}
}

func identToken(tok token.Token) Token {
	return Token{Category: Identifier, Value: tok.Literal, Type: tok.Type, Pos: tok.Pos}
}

func keywordToken(tok token.Token) Token {
	return Token{Category: Keyword, Value: strings.ToUpper(tok.Literal), Type: tok.Type, Pos: tok.Pos}
}

func unexpected(tok token.Token, context string) *core.Error {
	if tok.Type == token.EOF {
		return core.Errorf(core.KindQueryStructure, "unexpected end of query %s", context)
	}
	return core.Errorf(core.KindQueryStructure, "unexpected %q at %s %s", tok.Literal, tok.Pos, context)
}
