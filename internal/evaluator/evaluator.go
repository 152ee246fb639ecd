// Package evaluator runs the full query pipeline: classify the text, build a
// QuerySpec, resolve it against the loaded tables, execute it, and optionally
// record the outcome in the query history.
package evaluator

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/leapstack-labs/leapselect/internal/state"
	"github.com/leapstack-labs/leapselect/pkg/core"
	"github.com/leapstack-labs/leapselect/pkg/engine"
	"github.com/leapstack-labs/leapselect/pkg/query"
	"github.com/leapstack-labs/leapselect/pkg/schema"
	"github.com/leapstack-labs/leapselect/pkg/tokenizer"
)

// Recorder receives one history entry per evaluation.
type Recorder interface {
	Record(ctx context.Context, e state.Entry) error
}

// Config holds evaluator configuration.
type Config struct {
	// Store holds the loaded tables (required)
	Store *schema.Store
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// History records every evaluation (optional)
	History Recorder
}

// Evaluator evaluates queries against a schema store. It is safe for
// concurrent use; every evaluation builds its own QuerySpec and the store can
// be swapped atomically with SetStore.
type Evaluator struct {
	store   atomic.Pointer[schema.Store]
	logger  *slog.Logger
	history Recorder
	now     func() time.Time
}

// New creates an evaluator.
func New(cfg Config) (*Evaluator, error) {
	if cfg.Store == nil {
		return nil, errors.New("evaluator: schema store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := &Evaluator{
		logger:  logger,
		history: cfg.History,
		now:     time.Now,
	}
	e.store.Store(cfg.Store)
	return e, nil
}

// Store returns the current schema store.
func (e *Evaluator) Store() *schema.Store {
	return e.store.Load()
}

// SetStore replaces the schema store used by later evaluations.
func (e *Evaluator) SetStore(s *schema.Store) {
	if s != nil {
		e.store.Store(s)
	}
}

// Parse classifies text and builds an unresolved QuerySpec.
func Parse(text string) (*query.QuerySpec, error) {
	toks, err := tokenizer.Classify(text)
	if err != nil {
		return nil, err
	}
	return query.Build(toks)
}

// Evaluate runs text through the whole pipeline.
func (e *Evaluator) Evaluate(ctx context.Context, text string) (*engine.Result, error) {
	start := e.now()
	res, err := e.evaluate(ctx, text)
	if err != nil {
		e.logFailure(err)
	}
	e.record(ctx, text, start, res, err)
	return res, err
}

func (e *Evaluator) logFailure(err error) {
	var qerr *core.Error
	if !errors.As(err, &qerr) {
		e.logger.Debug("query failed", slog.String("error", err.Error()))
		return
	}
	e.logger.Debug("query failed",
		slog.String("kind", string(qerr.Kind)),
		slog.String("message", qerr.Message),
	)
}

func (e *Evaluator) evaluate(ctx context.Context, text string) (*engine.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	spec, err := Parse(text)
	if err != nil {
		return nil, err
	}

	store := e.store.Load()
	resolved, err := query.Resolve(spec, store)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("resolved query",
		slog.Any("tables", resolved.Tables),
		slog.Int("projections", len(resolved.Projections)),
		slog.Int("predicates", len(resolved.Predicates)),
		slog.Bool("distinct", resolved.Distinct),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := engine.Execute(resolved, store)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("query executed", slog.Int("rows", res.RowCount()))
	return res, nil
}

func (e *Evaluator) record(ctx context.Context, text string, start time.Time, res *engine.Result, evalErr error) {
	if e.history == nil {
		return
	}

	entry := state.Entry{
		Query:     text,
		Status:    state.StatusSuccess,
		StartedAt: start,
		Duration:  e.now().Sub(start),
	}
	if evalErr != nil {
		entry.Status = state.StatusFailed
		entry.Error = evalErr.Error()
	} else {
		entry.RowCount = res.RowCount()
	}

	if err := e.history.Record(context.WithoutCancel(ctx), entry); err != nil {
		e.logger.Warn("failed to record query history", slog.String("error", err.Error()))
	}
}
