package commands

import (
	"errors"
	"time"

	"github.com/leapstack-labs/leapselect/internal/state"
	"github.com/spf13/cobra"
)

// errHistoryDisabled is returned when no history database is configured.
var errHistoryDisabled = errors.New("query history is disabled (set history_path in leapselect.yaml or pass --history)")

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently evaluated queries",
		Long: `Show queries recorded in the history database, newest first.

History is only recorded when history_path (or --history) is set.`,
		Example: `  # Last 20 queries
  leapselect history --history .leapselect/history.db

  # Everything, as YAML
  leapselect history --limit 0 -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContextWithoutEvaluator(cmd)
			if cc.Cfg.HistoryPath == "" {
				return errHistoryDisabled
			}

			hist, err := state.OpenHistory(cmd.Context(), cc.Cfg.HistoryPath, cc.Logger)
			if err != nil {
				return err
			}
			defer func() { _ = hist.Close() }()

			entries, err := hist.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			rows := make([][]any, len(entries))
			for i, e := range entries {
				var errMsg any
				if e.Error != "" {
					errMsg = e.Error
				}
				rows[i] = []any{
					e.StartedAt.Local().Format(time.DateTime),
					string(e.Status),
					e.RowCount,
					e.Duration.Milliseconds(),
					e.Query,
					errMsg,
				}
			}
			return cc.Renderer.List([]string{"started_at", "status", "rows", "duration_ms", "query", "error"}, rows)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries (0 for all)")
	return cmd
}
