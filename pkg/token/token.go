// Package token defines the raw token types produced by the SQL lexer.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // token.TokenType reads clearly at call sites
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT  // identifier, possibly qualified (t.c)
	NUMBER // 123, -7

	// Operators
	STAR      // *
	EQ        // =
	NE        // != or <>
	LT        // <
	GT        // >
	LE        // <=
	GE        // >=
	COMMA     // ,
	LPAREN    // (
	RPAREN    // )
	SEMICOLON // ;

	// Keywords (alphabetical)
	ALL
	AND
	AS
	BY
	DISTINCT
	FROM
	GROUP
	HAVING
	JOIN
	LIMIT
	NOT
	ON
	OR
	ORDER
	SELECT
	UNION
	WHERE
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",

	STAR:      "*",
	EQ:        "=",
	NE:        "!=",
	LT:        "<",
	GT:        ">",
	LE:        "<=",
	GE:        ">=",
	COMMA:     ",",
	LPAREN:    "(",
	RPAREN:    ")",
	SEMICOLON: ";",

	ALL:      "ALL",
	AND:      "AND",
	AS:       "AS",
	BY:       "BY",
	DISTINCT: "DISTINCT",
	FROM:     "FROM",
	GROUP:    "GROUP",
	HAVING:   "HAVING",
	JOIN:     "JOIN",
	LIMIT:    "LIMIT",
	NOT:      "NOT",
	ON:       "ON",
	OR:       "OR",
	ORDER:    "ORDER",
	SELECT:   "SELECT",
	UNION:    "UNION",
	WHERE:    "WHERE",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"all":      ALL,
	"and":      AND,
	"as":       AS,
	"by":       BY,
	"distinct": DISTINCT,
	"from":     FROM,
	"group":    GROUP,
	"having":   HAVING,
	"join":     JOIN,
	"limit":    LIMIT,
	"not":      NOT,
	"on":       ON,
	"or":       OR,
	"order":    ORDER,
	"select":   SELECT,
	"union":    UNION,
	"where":    WHERE,
}

// LookupIdent returns the keyword token type for a lowercase identifier,
// or IDENT when it is not a keyword.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= ALL && t <= WHERE
}

// IsComparison returns true for the six relational operators.
func IsComparison(t TokenType) bool {
	return t >= EQ && t <= GE
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %s", t.Type, t.Literal, t.Pos)
}
