// Package format renders a query in canonical form: keywords and aggregate
// names upper-cased, single spaces between items, and FROM and WHERE each
// starting a new line.
package format

import (
	"github.com/leapstack-labs/leapselect/pkg/tokenizer"
)

// Query classifies text and returns its canonical rendering. Errors are the
// tokenizer's.
func Query(text string) (string, error) {
	toks, err := tokenizer.Classify(text)
	if err != nil {
		return "", err
	}
	return Tokens(toks), nil
}

// Tokens renders already classified tokens.
func Tokens(toks []tokenizer.Token) string {
	p := newPrinter()
	for _, tok := range toks {
		switch tok.Category {
		case tokenizer.Terminator:
			p.write(tok.Value)
		case tokenizer.Where:
			p.clause()
			p.formatList(len(tok.Children), func(i int) {
				p.item(tok.Children[i])
			}, "")
		case tokenizer.Keyword:
			if tok.Value == "FROM" {
				p.clause()
			}
			p.keyword(tok.Value)
		default:
			p.item(tok)
		}
	}
	return p.String()
}

// item prints one select-list, FROM-list or WHERE element as a single word.
func (p *Printer) item(tok tokenizer.Token) {
	switch tok.Category {
	case tokenizer.Keyword:
		p.keyword(tok.Value)
	case tokenizer.IdentifierList:
		p.word("")
		p.formatList(len(tok.Children), func(i int) {
			p.write(p.text(tok.Children[i]))
		}, ", ")
	default:
		p.word(p.text(tok))
	}
}

func (p *Printer) text(tok tokenizer.Token) string {
	switch tok.Category {
	case tokenizer.Function:
		return p.upper.String(tok.FuncName()) + "(" + tok.Children[0].Value + ")"
	case tokenizer.Comparison:
		return tok.Children[0].Value + " " + tok.Operator() + " " + tok.Children[1].Value
	default:
		return tok.Value
	}
}
