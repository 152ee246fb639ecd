package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leapselect/internal/cli/config"
	"github.com/leapstack-labs/leapselect/pkg/output"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a sample leapselect project",
		Long: `Create a working leapselect project with sample data.

This creates:
  - leapselect.yaml configuration file
  - files/metadata.txt declaring table1(A, B, C) and table2(B, D)
  - files/table1.csv and files/table2.csv with sample rows`,
		Example: `  # Initialize in current directory
  leapselect init

  # Initialize in a new directory
  leapselect init my-project

  # Force overwrite existing files
  leapselect init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeText)
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, config.ConfigFileNames[0])
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.ConfigFileNames[0])
	}

	if err := copyTemplate("example", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, err := listTemplateFiles("example")
	if err != nil {
		return err
	}
	for _, f := range files {
		r.StatusLine(f, output.StatusSuccess, "")
	}

	r.Println()
	r.Success("leapselect project initialized!")
	r.Println()
	r.Println("Next steps:")
	r.Println(`  leapselect tables                          List the sample tables`)
	r.Println(`  leapselect "SELECT * FROM table1;"         Run a query`)
	r.Println(`  leapselect repl                            Start an interactive session`)
	return nil
}
