package schema_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapselect/internal/testutil"
	"github.com/leapstack-labs/leapselect/pkg/core"
	"github.com/leapstack-labs/leapselect/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := testutil.WriteDataset(t, testutil.SampleTables())

	store, err := schema.Load(filepath.Join(dir, "metadata.txt"), dir, schema.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)

	assert.Equal(t, []string{"table1", "table2"}, store.Names())

	t1, ok := store.Table("table1")
	require.True(t, ok)
	assert.Equal(t, []string{"table1.A", "table1.B", "table1.C"}, t1.Attributes)
	assert.Equal(t, []string{"A", "B", "C"}, t1.Columns())
	assert.Equal(t, [][]int64{{1, 10, 100}, {2, 20, 200}, {3, 10, 300}}, t1.Rows)
	assert.True(t, t1.HasColumn("B"))
	assert.False(t, t1.HasColumn("D"))

	_, ok = store.Table("missing")
	assert.False(t, ok)
	assert.Len(t, store.Tables(), 2)
}

func TestLoadWidthMismatchIsFatal(t *testing.T) {
	dir := testutil.WriteDataset(t, testutil.SampleTables())
	testutil.WriteFile(t, filepath.Join(dir, "table2.csv"), "10,5\n20\n")

	_, err := schema.Load(filepath.Join(dir, "metadata.txt"), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrTableData)
	assert.Contains(t, err.Error(), "table2.csv line 2")
}

func TestLoadMissingDataFile(t *testing.T) {
	dir := testutil.WriteDataset(t, testutil.SampleTables())
	require.NoError(t, os.Remove(filepath.Join(dir, "table1.csv")))

	_, err := schema.Load(filepath.Join(dir, "metadata.txt"), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrTableData)
}

func TestLoadTable(t *testing.T) {
	dir := testutil.WriteDataset(t, testutil.SampleTables())

	tbl, err := schema.LoadTable(schema.TableDef{Name: "table2", Columns: []string{"B", "D"}}, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"table2.B", "table2.D"}, tbl.Attributes)
	assert.Len(t, tbl.Rows, 4)

	_, err = schema.LoadTable(schema.TableDef{Name: "table2", Columns: []string{"B", "D", "E"}}, dir)
	assert.ErrorIs(t, err, core.ErrTableData)
}

func TestLoadMissingMetadata(t *testing.T) {
	dir := t.TempDir()
	_, err := schema.Load(filepath.Join(dir, "metadata.txt"), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMetadataRead)
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		width   int
		want    [][]int64
		wantErr string
	}{
		{
			name:  "plain",
			input: "1,2\n3,4\n",
			width: 2,
			want:  [][]int64{{1, 2}, {3, 4}},
		},
		{
			name:  "quoted values and blank lines",
			input: "\"1\",\"-2\"\n\n3, 4\n",
			width: 2,
			want:  [][]int64{{1, -2}, {3, 4}},
		},
		{
			name:  "empty file",
			input: "",
			width: 3,
			want:  nil,
		},
		{
			name:    "too many values",
			input:   "1,2,3\n",
			width:   2,
			wantErr: "3 values but the metadata declares 2 columns",
		},
		{
			name:    "not an integer",
			input:   "1,x\n",
			width:   2,
			wantErr: "is not an integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := schema.ReadCSV(strings.NewReader(tt.input), "t.csv", tt.width)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, core.ErrTableData)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := schema.ParseFormat("Parquet")
	require.NoError(t, err)
	assert.Equal(t, schema.FormatParquet, f)

	f, err = schema.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, schema.FormatCSV, f)

	_, err = schema.ParseFormat("xlsx")
	assert.Error(t, err)

	var decoded schema.Format
	require.NoError(t, decoded.UnmarshalText([]byte("csv")))
	assert.Equal(t, schema.FormatCSV, decoded)
	assert.Equal(t, filepath.Join("data", "t.parquet"), schema.FormatParquet.DataFile("data", "t"))
}
