package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapselect/internal/testutil"
	"github.com/leapstack-labs/leapselect/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRun_Query(t *testing.T) {
	dir := testutil.WriteDataset(t, testutil.SampleTables())

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "wildcard",
			args: []string{"-d", dir, "SELECT * FROM table2 WHERE D = 5;"},
			want: "table2.B,table2.D\n10,5\n30,5\n",
		},
		{
			name: "join collapses the shared column",
			args: []string{"--data-dir", dir, "SELECT * FROM table1, table2 WHERE D > 0 AND table1.B = table2.B;"},
			want: "table1.A,table1.B,table1.C,table2.D\n1,10,100,5\n2,20,200,7\n3,10,300,5\n",
		},
		{
			name: "aggregate",
			args: []string{"-d", dir, "SELECT AVG(A) FROM table1;"},
			want: "AVG(table1.A)\n2\n",
		},
		{
			name: "echo",
			args: []string{"-d", dir, "-e", "select A from table1 where A = 2;"},
			want: "SELECT A\nFROM table1\nWHERE A = 2;\n\ntable1.A\n2\n",
		},
		{
			name: "explicit metadata path",
			args: []string{"-d", dir, "-m", filepath.Join(dir, "metadata.txt"), "SELECT D FROM table2 WHERE D < 0;"},
			want: "table2.D\n-1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := run(t, tt.args...)
			require.NoError(t, err, stderr)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestRun_WrongArgumentCount(t *testing.T) {
	dir := testutil.WriteDataset(t, testutil.SampleTables())

	for _, args := range [][]string{
		{"-d", dir},
		{"-d", dir, "SELECT A FROM table1;", "extra"},
	} {
		stdout, stderr, err := run(t, args...)
		require.Error(t, err)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "Usage:")
		assert.Contains(t, stderr, "Error: expected exactly one query argument")
	}
}

func TestRun_QueryErrors(t *testing.T) {
	dir := testutil.WriteDataset(t, testutil.SampleTables())

	tests := []struct {
		name  string
		query string
		kind  core.ErrorKind
	}{
		{"ambiguous attribute", "SELECT B FROM table1, table2;", core.KindAmbiguousAttr},
		{"aggregate mix", "SELECT A, MAX(C) FROM table1;", core.KindAggregateMix},
		{"unsupported function", "SELECT COUNT(A) FROM table1;", core.KindUnsupportedFunc},
		{"three predicates", "SELECT A FROM table1 WHERE A = 1 AND B = 2 AND C = 3;", core.KindWhereStructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := run(t, "-d", dir, tt.query)
			require.Error(t, err)
			assert.Equal(t, tt.kind, core.KindOf(err))
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "Error: "+string(tt.kind))
		})
	}
}

func TestRun_MissingDataFile(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "metadata.txt"), "<begin_table>\nt\nA\n<end_table>\n")

	_, stderr, err := run(t, "-d", dir, "SELECT A FROM t;")
	require.Error(t, err)
	assert.Equal(t, core.KindTableData, core.KindOf(err))
	assert.Contains(t, stderr, "TableDataError")
}

func TestRun_ConfigFile(t *testing.T) {
	dir := testutil.WriteDataset(t, testutil.SampleTables())
	cfgDir := t.TempDir()
	cfgPath := filepath.Join(cfgDir, "leapselect.yaml")
	testutil.WriteFile(t, cfgPath, "data_dir: "+dir+"\noutput: json\n")

	stdout, _, err := run(t, "--config", cfgPath, "SELECT MIN(D) FROM table2;")
	require.NoError(t, err)
	assert.JSONEq(t, `{"label": "MIN(table2.D)", "value": -1}`, stdout)

	stdout, _, err = run(t, "--config", cfgPath, "-o", "text", "SELECT MIN(D) FROM table2;")
	require.NoError(t, err)
	assert.Equal(t, "MIN(table2.D)\n-1\n", stdout)
}

func TestRun_InvalidOutputMode(t *testing.T) {
	dir := testutil.WriteDataset(t, testutil.SampleTables())

	_, stderr, err := run(t, "-d", dir, "-o", "xml", "SELECT A FROM table1;")
	require.Error(t, err)
	assert.Contains(t, stderr, "xml")
}

func TestRun_Subcommands(t *testing.T) {
	dir := testutil.WriteDataset(t, testutil.SampleTables())

	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "leapselect v"+Version)

	stdout, _, err = run(t, "tables", "-d", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "table2,B D,4")

	stdout, _, err = run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "leapselect")
}

func TestRun_History(t *testing.T) {
	dir := testutil.WriteDataset(t, testutil.SampleTables())
	hist := filepath.Join(t.TempDir(), "history.db")

	_, _, err := run(t, "-d", dir, "--history", hist, "SELECT SUM(C) FROM table1;")
	require.NoError(t, err)

	stdout, _, err := run(t, "history", "-d", dir, "--history", hist, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "query: SELECT SUM(C) FROM table1;")
	assert.Contains(t, stdout, "status: success")
	assert.Contains(t, stdout, "rows: 1")
}

func TestNewRootCmd_Flags(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"config", "data-dir", "metadata", "data-format", "output", "echo", "history", "verbose", "log-level"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "flag %q should exist", name)
	}
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
}
