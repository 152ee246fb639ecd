package schema

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/leapselect/pkg/core"
)

// Metadata block markers.
const (
	BeginTable = "<begin_table>"
	EndTable   = "<end_table>"
)

// TableDef is a table declaration read from the metadata file.
type TableDef struct {
	Name    string
	Columns []string
}

// ReadMetadataFile parses the metadata file at path.
func ReadMetadataFile(path string) ([]TableDef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.Wrap(core.KindMetadataRead, err, "cannot open metadata file %s", path)
	}
	defer func() { _ = f.Close() }()

	return ParseMetadata(f)
}

// ParseMetadata parses <begin_table> ... <end_table> blocks. The first line of
// a block is the table name and each following line is one column.
func ParseMetadata(r io.Reader) ([]TableDef, error) {
	var (
		defs    []TableDef
		current *TableDef
		seen    = make(map[string]bool)
		lineNo  int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == BeginTable:
			if current != nil {
				return nil, core.Errorf(core.KindMetadataRead, "line %d: %s inside table %q", lineNo, BeginTable, current.Name)
			}
			current = &TableDef{}

		case line == EndTable:
			if current == nil {
				return nil, core.Errorf(core.KindMetadataRead, "line %d: %s without %s", lineNo, EndTable, BeginTable)
			}
			if current.Name == "" {
				return nil, core.Errorf(core.KindMetadataRead, "line %d: empty table block", lineNo)
			}
			if len(current.Columns) == 0 {
				return nil, core.Errorf(core.KindMetadataRead, "line %d: table %q declares no columns", lineNo, current.Name)
			}
			defs = append(defs, *current)
			current = nil

		case current == nil:
			return nil, core.Errorf(core.KindMetadataRead, "line %d: %q outside a table block", lineNo, line)

		case current.Name == "":
			if seen[line] {
				return nil, core.Errorf(core.KindMetadataRead, "line %d: table %q declared twice", lineNo, line)
			}
			seen[line] = true
			current.Name = line

		default:
			for _, col := range current.Columns {
				if col == line {
					return nil, core.Errorf(core.KindMetadataRead, "line %d: column %q declared twice in table %q", lineNo, line, current.Name)
				}
			}
			current.Columns = append(current.Columns, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, core.Wrap(core.KindMetadataRead, err, "reading metadata")
	}
	if current != nil {
		return nil, core.Errorf(core.KindMetadataRead, "unterminated block for table %q", current.Name)
	}
	return defs, nil
}
