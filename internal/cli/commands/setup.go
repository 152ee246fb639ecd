package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/leapstack-labs/leapselect/internal/cli/config"
	"github.com/leapstack-labs/leapselect/internal/evaluator"
	"github.com/leapstack-labs/leapselect/internal/state"
	"github.com/leapstack-labs/leapselect/pkg/output"
	"github.com/leapstack-labs/leapselect/pkg/schema"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg       *config.Config
	Logger    *slog.Logger
	Evaluator *evaluator.Evaluator
	// History is nil when history_path is not configured.
	History  *state.SQLiteStore
	Renderer *output.Renderer
}

// NewCommandContext loads the tables, opens the history store when one is
// configured, and builds the evaluator and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc := NewCommandContextWithoutEvaluator(cmd)

	store, err := LoadStore(cc.Cfg, cc.Logger)
	if err != nil {
		return nil, nil, err
	}

	var recorder evaluator.Recorder
	if cc.Cfg.HistoryPath != "" {
		hist, err := state.OpenHistory(cmd.Context(), cc.Cfg.HistoryPath, cc.Logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open history: %w", err)
		}
		cc.History = hist
		recorder = hist
	}

	ev, err := evaluator.New(evaluator.Config{
		Store:   store,
		Logger:  cc.Logger,
		History: recorder,
	})
	if err != nil {
		cc.close()
		return nil, nil, err
	}
	cc.Evaluator = ev

	return cc, cc.close, nil
}

// NewCommandContextWithoutEvaluator creates a CommandContext for commands
// that do not evaluate queries.
func NewCommandContextWithoutEvaluator(cmd *cobra.Command) *CommandContext {
	cfg := getConfig(cmd.Context())
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Output),
	}
}

func (cc *CommandContext) close() {
	if cc.History != nil {
		if err := cc.History.Close(); err != nil {
			cc.Logger.Warn("failed to close history", slog.String("error", err.Error()))
		}
	}
}

// LoadStore loads the tables described by the configured metadata file.
func LoadStore(cfg *config.Config, logger *slog.Logger) (*schema.Store, error) {
	return schema.Load(cfg.Metadata, cfg.DataDir,
		schema.WithLogger(logger),
		schema.WithFormat(cfg.DataFormat),
	)
}

// getConfig returns the config loaded by the root command, or the defaults
// when the command runs without it (tests, help).
func getConfig(ctx context.Context) *config.Config {
	if cfg := config.FromContext(ctx); cfg != nil {
		return cfg
	}
	cfg, err := config.LoadConfig("", nil)
	if err != nil {
		return &config.Config{
			DataDir:    config.DefaultDataDir,
			Metadata:   filepath.Join(config.DefaultDataDir, config.DefaultMetadataFile),
			DataFormat: config.DefaultDataFormat,
			Output:     config.DefaultOutput,
		}
	}
	return cfg
}
