package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapselect/pkg/query"
	"github.com/leapstack-labs/leapselect/pkg/schema"
	"github.com/spf13/cobra"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the leapselect version, build metadata and the query features
this binary supports.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			if short {
				_, _ = fmt.Fprintln(out, info.Version)
				return
			}
			_, _ = fmt.Fprintf(out, "leapselect v%s\n", info.Version)
			_, _ = fmt.Fprintln(out, "In-memory SELECT evaluator for integer CSV tables")
			_, _ = fmt.Fprintf(out, "  commit:      %s\n", info.Commit)
			_, _ = fmt.Fprintf(out, "  built:       %s\n", info.BuildDate)
			_, _ = fmt.Fprintf(out, "  aggregates:  %s\n", strings.Join(query.SupportedFunctions, ", "))
			_, _ = fmt.Fprintf(out, "  data files:  %s, %s\n", schema.FormatCSV, schema.FormatParquet)
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}
