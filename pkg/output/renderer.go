package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapselect/pkg/engine"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Renderer writes results to out and diagnostics to errOut.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	return NewRendererWithTTY(out, errOut, mode, isTerminal(out))
}

// NewRendererWithTTY creates a renderer with explicit terminal detection.
func NewRendererWithTTY(out, errOut io.Writer, mode Mode, isTTY bool) *Renderer {
	if mode == "" {
		mode = ModeText
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: NewStyles(out, isTTY),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Mode returns the renderer's output mode.
func (r *Renderer) Mode() Mode { return r.mode }

// IsTTY reports whether results go to a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Writer returns the result writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// Styles returns the decoration styles.
func (r *Renderer) Styles() *Styles { return r.styles }

// Println writes a line to the result writer.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Muted writes a de-emphasised line to the result writer.
func (r *Renderer) Muted(msg string) {
	_, _ = fmt.Fprintln(r.out, r.styles.Muted.Render(msg))
}

// Success writes a highlighted confirmation line to the result writer.
func (r *Renderer) Success(msg string) {
	_, _ = fmt.Fprintln(r.out, r.styles.Success.Render(msg))
}

// Status values accepted by StatusLine.
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
)

// StatusLine writes one check result: a status marker, the label and an
// optional detail.
func (r *Renderer) StatusLine(label, status, detail string) {
	var marker string
	switch status {
	case StatusSuccess:
		marker = r.styles.Success.Render("✓")
	case StatusWarning:
		marker = r.styles.Warning.Render("!")
	default:
		marker = r.styles.Error.Render("✗")
	}
	line := "  " + marker + " " + label
	if detail != "" {
		line += "  " + r.styles.Muted.Render(detail)
	}
	_, _ = fmt.Fprintln(r.out, line)
}

// Error writes "Error: <err>" to the diagnostics writer.
func (r *Renderer) Error(err error) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("Error:")+" "+err.Error())
}

// Result renders an evaluation result in the renderer's mode.
func (r *Renderer) Result(res *engine.Result) error {
	if res.IsAggregate() {
		return r.aggregate(res.Aggregate)
	}
	return r.rows(res.Columns, res.Rows)
}

func (r *Renderer) aggregate(agg *engine.AggregateResult) error {
	switch r.mode {
	case ModeJSON:
		return r.encodeJSON(aggregateDoc{Label: agg.Label, Value: agg.Value.Value()})
	case ModeYAML:
		return r.encodeYAML(aggregateDoc{Label: agg.Label, Value: agg.Value.Value()})
	case ModeTable:
		r.table([]string{agg.Label}, [][]string{{agg.Value.String()}})
		return nil
	case ModeMarkdown:
		r.markdown([]string{agg.Label}, [][]string{{agg.Value.String()}})
		return nil
	default:
		_, _ = fmt.Fprintln(r.out, agg.Label)
		_, _ = fmt.Fprintln(r.out, agg.Value.String())
		return nil
	}
}

func (r *Renderer) rows(cols []string, rows [][]int64) error {
	switch r.mode {
	case ModeJSON:
		return r.encodeJSON(rowsDoc{Columns: nonNil(cols), Rows: nonNilRows(rows)})
	case ModeYAML:
		return r.encodeYAML(rowsDoc{Columns: nonNil(cols), Rows: nonNilRows(rows)})
	case ModeTable:
		r.table(cols, stringify(rows))
		r.Muted(rowCount(len(rows)))
		return nil
	case ModeMarkdown:
		r.markdown(cols, stringify(rows))
		return nil
	default:
		_, _ = fmt.Fprintln(r.out, strings.Join(cols, ","))
		for _, row := range rows {
			_, _ = fmt.Fprintln(r.out, engine.RowKey(row))
		}
		return nil
	}
}

// List renders a generic listing such as the loaded tables or the query
// history. Values are printed with %v; nil prints as NULL.
func (r *Renderer) List(headers []string, rows [][]any) error {
	switch r.mode {
	case ModeJSON:
		return r.encodeJSON(records(headers, rows))
	case ModeYAML:
		return r.encodeYAML(records(headers, rows))
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(row))
		for j, v := range row {
			cells[i][j] = formatValue(v)
		}
	}

	switch r.mode {
	case ModeTable:
		r.table(headers, cells)
		r.Muted(rowCount(len(rows)))
	case ModeMarkdown:
		r.markdown(headers, cells)
	default:
		_, _ = fmt.Fprintln(r.out, strings.Join(headers, ","))
		for _, row := range cells {
			_, _ = fmt.Fprintln(r.out, strings.Join(row, ","))
		}
	}
	return nil
}

func (r *Renderer) table(headers []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	t.AppendHeader(header)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, v := range row {
			tr[i] = v
		}
		t.AppendRow(tr)
	}
	t.Render()
}

func (r *Renderer) markdown(headers []string, rows [][]string) {
	_, _ = fmt.Fprintf(r.out, "| %s |\n", strings.Join(headers, " | "))
	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(r.out, "| %s |\n", strings.Join(seps, " | "))
	for _, row := range rows {
		_, _ = fmt.Fprintf(r.out, "| %s |\n", strings.Join(row, " | "))
	}
}

func (r *Renderer) encodeJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *Renderer) encodeYAML(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

type rowsDoc struct {
	Columns []string  `json:"columns" yaml:"columns"`
	Rows    [][]int64 `json:"rows" yaml:"rows"`
}

type aggregateDoc struct {
	Label string `json:"label" yaml:"label"`
	Value any    `json:"value" yaml:"value"`
}

// records turns a listing into key/value documents that keep header order.
func records(headers []string, rows [][]any) any {
	out := make([]recordDoc, len(rows))
	for i, row := range rows {
		out[i] = recordDoc{headers: headers, values: row}
	}
	return out
}

type recordDoc struct {
	headers []string
	values  []any
}

func (d recordDoc) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, h := range d.headers {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(h)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(d.value(i))
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func (d recordDoc) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for i, h := range d.headers {
		var val yaml.Node
		if err := val.Encode(d.value(i)); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: h}, &val)
	}
	return node, nil
}

func (d recordDoc) value(i int) any {
	if i < len(d.values) {
		return d.values[i]
	}
	return nil
}

func stringify(rows [][]int64) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = strconv.FormatInt(v, 10)
		}
	}
	return out
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func rowCount(n int) string {
	if n == 1 {
		return "(1 row)"
	}
	return fmt.Sprintf("(%d rows)", n)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilRows(rows [][]int64) [][]int64 {
	if rows == nil {
		return [][]int64{}
	}
	return rows
}
