// Package cli provides the command-line interface for leapselect.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/leapstack-labs/leapselect/internal/cli/commands"
	"github.com/leapstack-labs/leapselect/internal/cli/config"
	"github.com/leapstack-labs/leapselect/pkg/output"
	"github.com/leapstack-labs/leapselect/pkg/schema"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   `leapselect [flags] "<query>"`,
		Short: "leapselect - SELECT over integer CSV tables",
		Long: `leapselect evaluates a single SQL SELECT statement against integer tables
loaded from CSV (or parquet) files described by a metadata file.

Supported: projection, DISTINCT, cross joins over several FROM tables, a WHERE
clause of up to two comparisons joined by AND or OR, and one of MAX, MIN,
SUM or AVG over a single column.`,
		Example: `  leapselect "SELECT * FROM table1;"
  leapselect -d ./files "SELECT DISTINCT A, D FROM table1, table2 WHERE table1.B = table2.B;"
  leapselect -o table "SELECT MAX(C) FROM table1;"`,
		Version: Version,
		Args:    exactlyOneQuery,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger := config.NewLogger(cmd.ErrOrStderr(), cfg)
			if cfg.ConfigFile != "" {
				logger.Debug("using config file", slog.String("path", cfg.ConfigFile))
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunQuery(cmd, args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
In-memory SELECT evaluator for integer CSV tables
`)

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./leapselect.yaml)")
	pf.StringP("data-dir", "d", "", "Directory holding metadata and table data files (default: ./files)")
	pf.StringP("metadata", "m", "", "Metadata file (default: <data-dir>/metadata.txt)")
	pf.String("data-format", "", "Table data format (csv|parquet)")
	pf.StringP("output", "o", "", "Output format (text|table|markdown|json|yaml)")
	pf.BoolP("echo", "e", false, "Print the canonical query before the result")
	pf.String("history", "", "Record evaluated queries in this SQLite database")
	pf.BoolP("verbose", "v", false, "Verbose output")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		modes := make([]string, len(output.Modes))
		for i, m := range output.Modes {
			modes[i] = string(m)
		}
		return modes, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("data-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(schema.FormatCSV), string(schema.FormatParquet)}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(commands.BuildInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildDate: BuildDate,
	}))
	rootCmd.AddCommand(commands.NewTablesCommand())
	rootCmd.AddCommand(commands.NewREPLCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// exactlyOneQuery accepts a single query argument. Any other count prints
// the usage message to stderr before failing; stdout only carries results.
func exactlyOneQuery(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
	return fmt.Errorf("expected exactly one query argument, got %d", len(args))
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes the root command with args, printing any error to stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output.NewRenderer(stdout, stderr, output.ModeText).Error(err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for leapselect.

To load completions:

Bash:
  $ source <(leapselect completion bash)

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  $ leapselect completion zsh > "${fpath[1]}/_leapselect"

Fish:
  $ leapselect completion fish | source

PowerShell:
  PS> leapselect completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
