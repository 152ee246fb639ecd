package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"
	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/leapselect/pkg/format"
	"github.com/leapstack-labs/leapselect/pkg/query"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	replPrompt         = "leapselect> "
	replContinuePrompt = "       ...> "
	reloadDebounce     = 100 * time.Millisecond
)

// lineReader is the subset of *readline.Instance the REPL loop needs.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Evaluate queries interactively",
		Long: `Start an interactive session against the loaded tables.

Queries may span several lines and are evaluated once a line ends with ';'.
With --watch, the tables are reloaded whenever a file in the data directory changes.`,
		Example: `  # Start the REPL
  leapselect repl

  # Reload tables while editing the CSV files
  leapselect repl --watch -d ./files`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, watch)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload tables when data files change")
	return cmd
}

func runREPL(cmd *cobra.Command, watch bool) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := newREPL(cc)
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     replHistoryFile(cc.Cfg.HistoryPath),
		AutoComplete:    &wordCompleter{words: r.completions},
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}

	r.Println(fmt.Sprintf("leapselect REPL (data: %s)", cc.Cfg.DataDir))
	r.Println("Type .help for commands, .quit to exit")
	r.Println()

	if !watch {
		return r.run(cmd.Context(), rl)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return watchData(egctx, cc.Logger, watchDirs(cc.Cfg.DataDir, cc.Cfg.Metadata), r.reloadQuietly)
	})
	eg.Go(func() error {
		defer cancel()
		return r.run(egctx, rl)
	})
	return eg.Wait()
}

// replHistoryFile keeps readline history next to the query history database.
func replHistoryFile(historyPath string) string {
	if historyPath == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(historyPath), "repl_history")
}

type repl struct {
	*CommandContext
	// reloadMu serializes reloads from .reload and the watcher.
	reloadMu sync.Mutex
}

func newREPL(cc *CommandContext) *repl {
	return &repl{CommandContext: cc}
}

func (r *repl) Println(a ...any) {
	r.Renderer.Println(a...)
}

// run reads statements until EOF, .quit or context cancellation.
func (r *repl) run(ctx context.Context, in lineReader) error {
	defer func() { _ = in.Close() }()

	var buf strings.Builder
	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			in.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && strings.HasPrefix(line, ".") {
			if quit := r.dotCommand(line); quit {
				return nil
			}
			continue
		}

		buf.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buf.WriteString(" ")
			in.SetPrompt(replContinuePrompt)
			continue
		}
		in.SetPrompt(replPrompt)

		text := buf.String()
		buf.Reset()

		if err := r.execute(ctx, text); err != nil {
			r.Renderer.Error(err)
		}
		r.Println()
	}
}

// execute evaluates one statement, terminator included.
func (r *repl) execute(ctx context.Context, text string) error {
	if r.Cfg.Echo {
		canonical, err := format.Query(text)
		if err != nil {
			return err
		}
		r.Println(canonical)
		r.Println()
	}

	res, err := r.Evaluator.Evaluate(ctx, text)
	if err != nil {
		return err
	}
	return r.Renderer.Result(res)
}

// dotCommand handles a REPL meta command and reports whether to quit.
func (r *repl) dotCommand(line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		r.printHelp()

	case ".tables":
		if err := renderTables(r.Renderer, r.Evaluator.Store()); err != nil {
			r.Renderer.Error(err)
		}

	case ".schema":
		if len(parts) < 2 {
			r.Renderer.Error(errors.New("usage: .schema <table>"))
			return false
		}
		if err := renderSchema(r.Renderer, r.Evaluator.Store(), parts[1]); err != nil {
			r.Renderer.Error(err)
		}

	case ".reload":
		n, err := r.reload()
		if err != nil {
			r.Renderer.Error(err)
			return false
		}
		r.Renderer.Muted(fmt.Sprintf("reloaded %d tables", n))

	case ".clear":
		_, _ = fmt.Fprint(r.Renderer.Writer(), "\033[H\033[2J")

	default:
		r.Renderer.Error(fmt.Errorf("unknown command: %s (type .help for commands)", command))
	}
	return false
}

// reload re-reads the metadata file and every data file. On failure the
// previous tables stay in place.
func (r *repl) reload() (int, error) {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	store, err := LoadStore(r.Cfg, r.Logger)
	if err != nil {
		return 0, err
	}
	r.Evaluator.SetStore(store)
	return len(store.Names()), nil
}

func (r *repl) reloadQuietly() {
	n, err := r.reload()
	if err != nil {
		r.Logger.Error("reload failed, keeping previous tables", slog.String("error", err.Error()))
		return
	}
	r.Logger.Info("tables reloaded", slog.Int("tables", n))
}

func (r *repl) printHelp() {
	r.Println(`
Commands:
  .help           Show this help message
  .tables         List all tables
  .schema <name>  Show the attributes of a table
  .reload         Reload the metadata and data files
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - Queries must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for keywords, tables and columns`)
}

// completions lists the words offered by tab completion.
func (r *repl) completions() []string {
	words := []string{
		"SELECT", "DISTINCT", "FROM", "WHERE", "AND", "OR",
		query.FuncMax + "(", query.FuncMin + "(", query.FuncSum + "(", query.FuncAvg + "(",
		".help", ".tables", ".schema", ".reload", ".clear", ".quit", ".exit",
	}
	seen := make(map[string]bool)
	for _, t := range r.Evaluator.Store().Tables() {
		words = append(words, t.Name)
		words = append(words, t.Attributes...)
		for _, col := range t.Columns() {
			if !seen[col] {
				seen[col] = true
				words = append(words, col)
			}
		}
	}
	return words
}

// wordCompleter completes the word under the cursor against a candidate list.
// Candidates match case-insensitively.
type wordCompleter struct {
	words func() []string
}

// Do implements readline.AutoCompleter.
func (c *wordCompleter) Do(line []rune, pos int) ([][]rune, int) {
	start := pos
	for start > 0 && !isWordBreak(line[start-1]) {
		start--
	}
	prefix := string(line[start:pos])

	var matches []string
	for _, w := range c.words() {
		if len(w) > len(prefix) && strings.EqualFold(w[:len(prefix)], prefix) {
			matches = append(matches, w[len(prefix):])
		}
	}
	sort.Strings(matches)

	out := make([][]rune, len(matches))
	for i, m := range matches {
		out[i] = []rune(m)
	}
	return out, len([]rune(prefix))
}

func isWordBreak(r rune) bool {
	switch r {
	case ' ', '\t', ',', '(', ')', ';':
		return true
	}
	return false
}

// watchDirs returns the directories holding the data files and the metadata file.
func watchDirs(dataDir, metadataPath string) []string {
	dirs := []string{dataDir}
	if metaDir := filepath.Dir(metadataPath); filepath.Clean(metaDir) != filepath.Clean(dataDir) {
		dirs = append(dirs, metaDir)
	}
	return dirs
}

// isDataFile reports whether a change to path can affect the loaded tables.
func isDataFile(path string) bool {
	switch filepath.Ext(path) {
	case ".csv", ".parquet", ".txt":
		return true
	}
	return false
}

// watchData calls reload, debounced, whenever a data or metadata file changes.
func watchData(ctx context.Context, logger *slog.Logger, dirs []string, reload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range dirs {
		if err := watchDirRecursive(watcher, dir); err != nil {
			logger.Error("failed to watch directory", slog.String("dir", dir), slog.String("error", err.Error()))
		}
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !isDataFile(event.Name) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(reloadDebounce, func() {
				logger.Debug("data file changed, reloading", slog.String("file", name))
				reload()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
