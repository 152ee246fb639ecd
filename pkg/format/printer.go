package format

import (
	"bytes"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Printer accumulates canonical query text one clause per line.
type Printer struct {
	output      *bytes.Buffer
	upper       cases.Caser
	atLineStart bool
}

func newPrinter() *Printer {
	return &Printer{
		output:      &bytes.Buffer{},
		upper:       cases.Upper(language.Und),
		atLineStart: true,
	}
}

// String returns the formatted output without a trailing newline.
func (p *Printer) String() string {
	return p.output.String()
}

func (p *Printer) write(s string) {
	p.output.WriteString(s)
	p.atLineStart = false
}

// word writes s, separated from the previous word on the same line.
func (p *Printer) word(s string) {
	if !p.atLineStart {
		p.space()
	}
	p.write(s)
}

// clause starts a new line unless nothing has been printed yet.
func (p *Printer) clause() {
	if p.output.Len() > 0 && !p.atLineStart {
		p.output.WriteByte('\n')
		p.atLineStart = true
	}
}

func (p *Printer) keyword(s string) {
	p.word(p.upper.String(s))
}

func (p *Printer) space() {
	p.output.WriteByte(' ')
}

// formatList prints count items with sep between them.
func (p *Printer) formatList(count int, format func(i int), sep string) {
	for i := 0; i < count; i++ {
		format(i)
		if i < count-1 {
			p.write(sep)
		}
	}
}
