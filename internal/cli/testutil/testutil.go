// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapselect/internal/cli/config"
	dataset "github.com/leapstack-labs/leapselect/internal/testutil"
	"github.com/leapstack-labs/leapselect/pkg/output"
	"github.com/spf13/cobra"
)

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, mode, isTTY),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// SetupTestProject writes the sample dataset and returns a config pointing at it.
func SetupTestProject(t *testing.T) *config.Config {
	t.Helper()

	dir := dataset.WriteDataset(t, dataset.SampleTables())
	return &config.Config{
		DataDir:    dir,
		Metadata:   filepath.Join(dir, config.DefaultMetadataFile),
		DataFormat: config.DefaultDataFormat,
		Output:     config.DefaultOutput,
		LogLevel:   config.DefaultLogLevel,
	}
}

// TestCommand is a command wired with a config and captured output.
type TestCommand struct {
	Cmd    *cobra.Command
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestCommand attaches cfg and a test logger to cmd's context and
// captures its output.
func NewTestCommand(t *testing.T, cmd *cobra.Command, cfg *config.Config) *TestCommand {
	t.Helper()

	ctx := config.WithConfig(context.Background(), cfg)
	ctx = config.WithLogger(ctx, dataset.NewTestLogger(t))
	cmd.SetContext(ctx)

	tc := &TestCommand{Cmd: cmd, Out: &bytes.Buffer{}, ErrOut: &bytes.Buffer{}}
	cmd.SetOut(tc.Out)
	cmd.SetErr(tc.ErrOut)
	return tc
}

// Run executes the command with args.
func (tc *TestCommand) Run(args ...string) error {
	tc.Cmd.SetArgs(args)
	return tc.Cmd.ExecuteContext(tc.Cmd.Context())
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertContains checks that the string contains the expected substring.
func AssertContains(t *testing.T, s, expected string) {
	t.Helper()
	if !strings.Contains(s, expected) {
		t.Errorf("string %q does not contain expected %q", s, expected)
	}
}
