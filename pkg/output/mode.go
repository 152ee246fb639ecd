// Package output renders evaluation results and listings for the terminal.
//
// ModeText is the plain format: a comma-joined header line followed by one
// comma-joined line per row, or a label line and a value line for an
// aggregate. The other modes present the same data as a box table, a
// markdown table, JSON or YAML.
package output

import (
	"fmt"
	"strings"
)

// Mode selects how results are written.
type Mode string

// Output modes.
const (
	ModeText     Mode = "text"
	ModeTable    Mode = "table"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
	ModeYAML     Mode = "yaml"
)

// Modes lists every mode in help order.
var Modes = []Mode{ModeText, ModeTable, ModeMarkdown, ModeJSON, ModeYAML}

// ParseMode accepts a mode name in any case. "" means ModeText and "md" is
// an alias for markdown.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeText, nil
	case "md":
		return ModeMarkdown, nil
	case ModeText, ModeTable, ModeMarkdown, ModeJSON, ModeYAML:
		return m, nil
	default:
		return "", fmt.Errorf("unknown output mode %q (want one of %s)", s, modeList())
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Mode) String() string {
	return string(m)
}

func modeList() string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
