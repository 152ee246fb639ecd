// Package tokenizer turns raw query text into categorised tokens.
//
// Lexing happens in two passes. Lexer produces flat token.Token values with
// positions; Classify groups them into the categories the query model builder
// consumes (identifier lists, function calls, comparisons, the WHERE group).
package tokenizer

import (
	"strings"

	"github.com/leapstack-labs/leapselect/pkg/core"
	"github.com/leapstack-labs/leapselect/pkg/token"
)

// Lexer tokenizes query text.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// Lex returns every token of input up to and excluding EOF.
func Lex(input string) ([]token.Token, error) {
	l := NewLexer(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		switch tok.Type {
		case token.EOF:
			return toks, nil
		case token.ILLEGAL:
			return nil, core.Errorf(core.KindQueryStructure, "illegal character %q at %s", tok.Literal, tok.Pos)
		}
		toks = append(toks, tok)
	}
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()
	var tok token.Token

	switch l.ch {
	case 0:
		if l.pos < len(l.input) {
			tok = l.newToken(token.ILLEGAL, "\x00", pos)
			break
		}
		return token.Token{Type: token.EOF, Pos: pos}
	case '*':
		tok = l.newToken(token.STAR, "*", pos)
	case ',':
		tok = l.newToken(token.COMMA, ",", pos)
	case '(':
		tok = l.newToken(token.LPAREN, "(", pos)
	case ')':
		tok = l.newToken(token.RPAREN, ")", pos)
	case ';':
		tok = l.newToken(token.SEMICOLON, ";", pos)
	case '=':
		tok = l.newToken(token.EQ, "=", pos)
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = l.newToken(token.LE, "<=", pos)
		case '>':
			l.readChar()
			tok = l.newToken(token.NE, "<>", pos)
		default:
			tok = l.newToken(token.LT, "<", pos)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.newToken(token.GE, ">=", pos)
		} else {
			tok = l.newToken(token.GT, ">", pos)
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.newToken(token.NE, "!=", pos)
		} else {
			tok = l.newToken(token.ILLEGAL, "!", pos)
		}
	case '-':
		if isDigit(l.peekChar()) {
			l.readChar()
			return token.Token{Type: token.NUMBER, Literal: "-" + l.readNumber(), Pos: pos}
		}
		tok = l.newToken(token.ILLEGAL, "-", pos)
	default:
		switch {
		case isLetter(l.ch) || l.ch == '_':
			lit := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(strings.ToLower(lit)), Literal: lit, Pos: pos}
		case isDigit(l.ch):
			return token.Token{Type: token.NUMBER, Literal: l.readNumber(), Pos: pos}
		default:
			tok = l.newToken(token.ILLEGAL, string(l.ch), pos)
		}
	}

	l.readChar()
	return tok
}

func (l *Lexer) newToken(t token.TokenType, lit string, pos token.Position) token.Token {
	return token.Token{Type: t, Literal: lit, Pos: pos}
}

// skipWhitespaceAndComments skips blanks and "--" line comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '-' && l.peekChar() == '-' {
			for l.ch != '\n' && l.pos < len(l.input) {
				l.readChar()
			}
			continue
		}
		return
	}
}

// readIdentifier reads an identifier, including a table qualifier (t.c).
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '.' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
