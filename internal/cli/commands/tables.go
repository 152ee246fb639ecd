package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapselect/pkg/output"
	"github.com/leapstack-labs/leapselect/pkg/schema"
	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables [table]",
		Short: "List the loaded tables",
		Long: `List every table declared in the metadata file with its columns and row count.

With a table name, list that table's qualified attributes instead.`,
		Example: `  # List all tables
  leapselect tables

  # Show the attributes of one table as JSON
  leapselect tables table1 -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContextWithoutEvaluator(cmd)
			store, err := LoadStore(cc.Cfg, cc.Logger)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return renderSchema(cc.Renderer, store, args[0])
			}
			return renderTables(cc.Renderer, store)
		},
	}
	return cmd
}

func renderTables(r *output.Renderer, store *schema.Store) error {
	tables := store.Tables()
	rows := make([][]any, len(tables))
	for i, t := range tables {
		rows[i] = []any{t.Name, strings.Join(t.Columns(), " "), len(t.Rows)}
	}
	return r.List([]string{"table", "columns", "rows"}, rows)
}

func renderSchema(r *output.Renderer, store *schema.Store, name string) error {
	t, ok := store.Table(name)
	if !ok {
		return fmt.Errorf("table %s is not declared in the metadata file", name)
	}
	rows := make([][]any, len(t.Attributes))
	for i, attr := range t.Attributes {
		rows[i] = []any{i + 1, attr}
	}
	return r.List([]string{"position", "attribute"}, rows)
}
