package schema

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapselect/pkg/core"
)

// Format is the on-disk format of table data files.
type Format string

// Supported data formats.
const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ParseFormat validates a data format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatParquet:
		return f, nil
	case "":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported data format %q (expected csv or parquet)", s)
	}
}

// UnmarshalText lets config decoders fill a Format from a string.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// DataFile returns the path of a table's data file.
func (f Format) DataFile(dataDir, table string) string {
	return filepath.Join(dataDir, table+"."+string(f))
}

type loadOptions struct {
	logger *slog.Logger
	format Format
}

// Option configures Load.
type Option func(*loadOptions)

// WithLogger sets the logger used while loading.
func WithLogger(l *slog.Logger) Option {
	return func(o *loadOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFormat selects the data file format. The default is FormatCSV.
func WithFormat(f Format) Option {
	return func(o *loadOptions) {
		if f != "" {
			o.format = f
		}
	}
}

// Load reads the metadata file and then every declared table's data file
// from dataDir.
func Load(metadataPath, dataDir string, opts ...Option) (*Store, error) {
	o := newLoadOptions(opts)

	o.logger.Debug("loading metadata", slog.String("path", metadataPath))
	defs, err := ReadMetadataFile(metadataPath)
	if err != nil {
		return nil, err
	}

	tables := make([]*Table, 0, len(defs))
	for _, def := range defs {
		t, err := loadTable(def, dataDir, o)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	return NewStore(tables...), nil
}

// LoadTable reads the data file of a single declared table.
func LoadTable(def TableDef, dataDir string, opts ...Option) (*Table, error) {
	return loadTable(def, dataDir, newLoadOptions(opts))
}

func newLoadOptions(opts []Option) loadOptions {
	o := loadOptions{
		logger: slog.New(slog.DiscardHandler),
		format: FormatCSV,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func loadTable(def TableDef, dataDir string, o loadOptions) (*Table, error) {
	t := &Table{Name: def.Name, Attributes: make([]string, len(def.Columns))}
	for i, col := range def.Columns {
		t.Attributes[i] = Qualify(def.Name, col)
	}

	var err error
	path := o.format.DataFile(dataDir, def.Name)
	switch o.format {
	case FormatParquet:
		t.Rows, err = readParquetRows(path, def.Columns)
	default:
		t.Rows, err = readCSVFile(path, len(def.Columns))
	}
	if err != nil {
		return nil, err
	}

	o.logger.Debug("loaded table",
		slog.String("table", t.Name),
		slog.Int("columns", len(t.Attributes)),
		slog.Int("rows", len(t.Rows)))
	return t, nil
}

func readCSVFile(path string, width int) ([][]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.Wrap(core.KindTableData, err, "cannot open data file %s", path)
	}
	defer func() { _ = f.Close() }()

	return ReadCSV(f, filepath.Base(path), width)
}

// ReadCSV parses comma-separated integer rows. Every row must have exactly
// width values; name is used in error messages.
func ReadCSV(r io.Reader, name string, width int) ([][]int64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var rows [][]int64
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, core.Wrap(core.KindTableData, err, "reading %s", name)
		}
		line, _ := cr.FieldPos(0)

		if len(record) != width {
			return nil, core.Errorf(core.KindTableData,
				"%s line %d: %d values but the metadata declares %d columns", name, line, len(record), width)
		}

		row := make([]int64, width)
		for i, cell := range record {
			v, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
			if err != nil {
				return nil, core.Errorf(core.KindTableData, "%s line %d: value %q is not an integer", name, line, cell)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
}
