package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// FixtureTable describes one table written by WriteDataset.
type FixtureTable struct {
	Name    string
	Columns []string
	Rows    [][]int64
}

// SampleTables is the dataset used across package tests:
//
//	table1(A, B, C): 3 rows
//	table2(B, D):    4 rows, B shared with table1
func SampleTables() []FixtureTable {
	return []FixtureTable{
		{
			Name:    "table1",
			Columns: []string{"A", "B", "C"},
			Rows: [][]int64{
				{1, 10, 100},
				{2, 20, 200},
				{3, 10, 300},
			},
		},
		{
			Name:    "table2",
			Columns: []string{"B", "D"},
			Rows: [][]int64{
				{10, 5},
				{20, 7},
				{30, 5},
				{10, -1},
			},
		},
	}
}

// WriteDataset writes metadata.txt and one CSV file per table into a fresh
// temporary directory and returns its path.
func WriteDataset(t testing.TB, tables []FixtureTable) string {
	t.Helper()

	dir := t.TempDir()
	var meta strings.Builder
	for _, tbl := range tables {
		meta.WriteString("<begin_table>\n")
		meta.WriteString(tbl.Name + "\n")
		for _, col := range tbl.Columns {
			meta.WriteString(col + "\n")
		}
		meta.WriteString("<end_table>\n")

		WriteFile(t, filepath.Join(dir, tbl.Name+".csv"), CSV(tbl.Rows))
	}
	WriteFile(t, filepath.Join(dir, "metadata.txt"), meta.String())
	return dir
}

// CSV renders rows as comma-separated lines.
func CSV(rows [][]int64) string {
	var b strings.Builder
	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.FormatInt(v, 10))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteFile writes content to path, failing the test on error.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
