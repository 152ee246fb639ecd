package commands

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leapselect/internal/cli/config"
	"github.com/leapstack-labs/leapselect/internal/state"
	"github.com/leapstack-labs/leapselect/pkg/output"
	"github.com/leapstack-labs/leapselect/pkg/schema"
	"github.com/spf13/cobra"
)

// Check groups, in display order.
const (
	groupSetup   = "setup"
	groupTables  = "tables"
	groupQueries = "queries"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the configuration, metadata and data files",
		Long: `Check that every table declared in the metadata file can be loaded.

Unlike a query, which stops at the first failure, doctor reports every problem:
- Setup: config file, data directory, metadata file, history database
- Tables: one check per declared table's data file
- Queries: column names shared by several tables, which must be qualified`,
		Example: `  # Run health check
  leapselect doctor

  # Output as JSON
  leapselect doctor -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContextWithoutEvaluator(cmd)
			report := runDoctor(cmd, cc.Cfg)
			if err := renderDoctor(cc.Renderer, report); err != nil {
				return err
			}
			if report.ErrorCount() > 0 {
				return fmt.Errorf("doctor found %d problem(s)", report.ErrorCount())
			}
			return nil
		},
	}
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name   string
	Group  string
	Status string // output.StatusSuccess, StatusWarning or StatusError
	Detail string
}

// DoctorReport is the outcome of every check.
type DoctorReport struct {
	Tables int
	Rows   int
	Checks []HealthCheck
}

func (d *DoctorReport) add(group, name, status, detail string) {
	d.Checks = append(d.Checks, HealthCheck{Name: name, Group: group, Status: status, Detail: detail})
}

// ErrorCount returns the number of failed checks.
func (d *DoctorReport) ErrorCount() int {
	n := 0
	for _, c := range d.Checks {
		if c.Status == output.StatusError {
			n++
		}
	}
	return n
}

// Score is 100 minus 25 per failure and 5 per warning, floored at 0.
func (d *DoctorReport) Score() int {
	score := 100
	for _, c := range d.Checks {
		switch c.Status {
		case output.StatusError:
			score -= 25
		case output.StatusWarning:
			score -= 5
		}
	}
	return max(score, 0)
}

func runDoctor(cmd *cobra.Command, cfg *config.Config) *DoctorReport {
	report := &DoctorReport{}

	if cfg.ConfigFile != "" {
		report.add(groupSetup, "config file", output.StatusSuccess, cfg.ConfigFile)
	} else {
		report.add(groupSetup, "config file", output.StatusWarning, "none found, using defaults")
	}

	if info, err := os.Stat(cfg.DataDir); err != nil || !info.IsDir() {
		report.add(groupSetup, "data directory", output.StatusError, cfg.DataDir+" is not a directory")
	} else {
		report.add(groupSetup, "data directory", output.StatusSuccess, cfg.DataDir)
	}

	checkHistory(cmd, cfg, report)

	defs, err := schema.ReadMetadataFile(cfg.Metadata)
	if err != nil {
		report.add(groupSetup, "metadata", output.StatusError, err.Error())
		return report
	}
	report.add(groupSetup, "metadata", output.StatusSuccess, fmt.Sprintf("%d table(s) in %s", len(defs), cfg.Metadata))

	for _, def := range defs {
		t, err := schema.LoadTable(def, cfg.DataDir, schema.WithFormat(cfg.DataFormat))
		if err != nil {
			report.add(groupTables, def.Name, output.StatusError, err.Error())
			continue
		}
		report.Tables++
		report.Rows += len(t.Rows)
		report.add(groupTables, def.Name, output.StatusSuccess, fmt.Sprintf("%d column(s), %d row(s)", len(def.Columns), len(t.Rows)))
	}

	for _, col := range sharedColumns(defs) {
		report.add(groupQueries, col.name, output.StatusWarning,
			fmt.Sprintf("declared by %s; qualify it when selecting from more than one of them", strings.Join(col.tables, ", ")))
	}

	return report
}

func checkHistory(cmd *cobra.Command, cfg *config.Config, report *DoctorReport) {
	if cfg.HistoryPath == "" {
		report.add(groupSetup, "history", output.StatusWarning, "disabled")
		return
	}
	hist, err := state.OpenHistory(cmd.Context(), cfg.HistoryPath, config.GetLogger(cmd.Context()))
	if err != nil {
		report.add(groupSetup, "history", output.StatusError, err.Error())
		return
	}
	defer func() { _ = hist.Close() }()

	version, err := hist.MigrationVersion(cmd.Context())
	if err != nil {
		report.add(groupSetup, "history", output.StatusError, err.Error())
		return
	}
	report.add(groupSetup, "history", output.StatusSuccess, fmt.Sprintf("%s (schema v%d)", cfg.HistoryPath, version))
}

type sharedColumn struct {
	name   string
	tables []string
}

// sharedColumns lists column names declared by more than one table, sorted by name.
func sharedColumns(defs []schema.TableDef) []sharedColumn {
	owners := make(map[string][]string)
	for _, def := range defs {
		for _, col := range def.Columns {
			owners[col] = append(owners[col], def.Name)
		}
	}

	var shared []sharedColumn
	for name, tables := range owners {
		if len(tables) > 1 {
			shared = append(shared, sharedColumn{name: name, tables: tables})
		}
	}
	sort.Slice(shared, func(i, j int) bool { return shared[i].name < shared[j].name })
	return shared
}

func renderDoctor(r *output.Renderer, report *DoctorReport) error {
	if r.Mode() != output.ModeText {
		rows := make([][]any, len(report.Checks))
		for i, c := range report.Checks {
			rows[i] = []any{c.Group, c.Name, c.Status, c.Detail}
		}
		return r.List([]string{"group", "check", "status", "detail"}, rows)
	}

	titleCaser := cases.Title(language.English)
	header := r.Styles().Header

	r.Println(header.Render("leapselect doctor"))
	r.Println(fmt.Sprintf("%d table(s) loaded, %d row(s)", report.Tables, report.Rows))

	for _, group := range []string{groupSetup, groupTables, groupQueries} {
		first := true
		for _, c := range report.Checks {
			if c.Group != group {
				continue
			}
			if first {
				r.Println()
				r.Println(header.Render(titleCaser.String(group)))
				first = false
			}
			r.StatusLine(c.Name, c.Status, c.Detail)
		}
	}

	r.Println()
	r.Println(fmt.Sprintf("Health score: %d/100", report.Score()))
	return nil
}
