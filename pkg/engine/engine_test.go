package engine

import (
	"testing"

	"github.com/leapstack-labs/leapselect/internal/testutil"
	"github.com/leapstack-labs/leapselect/pkg/core"
	"github.com/leapstack-labs/leapselect/pkg/query"
	"github.com/leapstack-labs/leapselect/pkg/schema"
	"github.com/leapstack-labs/leapselect/pkg/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStore() *schema.Store {
	var tables []*schema.Table
	for _, ft := range testutil.SampleTables() {
		t := &schema.Table{Name: ft.Name, Rows: ft.Rows}
		for _, c := range ft.Columns {
			t.Attributes = append(t.Attributes, schema.Qualify(ft.Name, c))
		}
		tables = append(tables, t)
	}
	return schema.NewStore(tables...)
}

func run(t *testing.T, store *schema.Store, sql string) (*Result, error) {
	t.Helper()
	toks, err := tokenizer.Classify(sql)
	require.NoError(t, err)
	spec, err := query.Build(toks)
	require.NoError(t, err)
	resolved, err := query.Resolve(spec, store)
	require.NoError(t, err)
	return Execute(resolved, store)
}

func TestExecuteSelectStar(t *testing.T) {
	store := sampleStore()
	res, err := run(t, store, "SELECT * FROM table1;")
	require.NoError(t, err)

	assert.Equal(t, []string{"table1.A", "table1.B", "table1.C"}, res.Columns)
	table1, _ := store.Table("table1")
	assert.Equal(t, table1.Rows, res.Rows)
	assert.False(t, res.IsAggregate())
}

func TestExecuteCrossJoin(t *testing.T) {
	res, err := run(t, sampleStore(), "SELECT * FROM table1, table2;")
	require.NoError(t, err)

	assert.Len(t, res.Columns, 5)
	assert.Len(t, res.Rows, 12)
	assert.Equal(t, []int64{1, 10, 100, 10, 5}, res.Rows[0])
	assert.Equal(t, []int64{3, 10, 300, 10, -1}, res.Rows[11])
}

func TestExecuteJoinCollapsesRightColumn(t *testing.T) {
	res, err := run(t, sampleStore(), "SELECT * FROM table1, table2 WHERE table1.B = table2.B;")
	require.NoError(t, err)

	assert.Equal(t, []string{"table1.A", "table1.B", "table1.C", "table2.D"}, res.Columns)
	assert.Equal(t, [][]int64{
		{1, 10, 100, 5},
		{1, 10, 100, -1},
		{2, 20, 200, 7},
		{3, 10, 300, 5},
		{3, 10, 300, -1},
	}, res.Rows)
}

func TestExecuteJoinAttributeReset(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		columns []string
	}{
		{
			name:    "equality then inequality shows both columns",
			sql:     "SELECT table1.B, table2.B FROM table1, table2 WHERE table1.B = table2.B AND A > 1;",
			columns: []string{"table1.B", "table2.B"},
		},
		{
			name:    "inequality then equality hides right column",
			sql:     "SELECT table1.B, table2.B FROM table1, table2 WHERE A > 1 AND table1.B = table2.B;",
			columns: []string{"table1.B"},
		},
		{
			name:    "literal equality does not reset",
			sql:     "SELECT table1.B, table2.B FROM table1, table2 WHERE table1.B = table2.B AND A = 1;",
			columns: []string{"table1.B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := run(t, sampleStore(), tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.columns, res.Columns)
		})
	}
}

func TestExecuteHiddenColumnsSkippedEvenWhenEmpty(t *testing.T) {
	res, err := run(t, sampleStore(), "SELECT * FROM table1, table2 WHERE table1.B = table2.B AND A = 42;")
	require.NoError(t, err)
	assert.Equal(t, []string{"table1.A", "table1.B", "table1.C", "table2.D"}, res.Columns)
	assert.Empty(t, res.Rows)
	assert.Equal(t, 0, res.RowCount())
}

func TestExecuteEmptyCrossJoinHidesNothing(t *testing.T) {
	store := schema.NewStore(
		&schema.Table{Name: "a", Attributes: []string{"a.X"}},
		&schema.Table{Name: "b", Attributes: []string{"b.Y"}, Rows: [][]int64{{1}, {2}}},
	)

	res, err := run(t, store, "SELECT * FROM a, b WHERE X = Y;")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.X", "b.Y"}, res.Columns)
	assert.Empty(t, res.Rows)
}

func TestExecuteDistinct(t *testing.T) {
	store := schema.NewStore(&schema.Table{
		Name:       "t",
		Attributes: []string{"t.X", "t.Y"},
		Rows:       [][]int64{{1, 0}, {2, 1}, {1, 2}, {3, 3}, {2, 4}},
	})

	res, err := run(t, store, "SELECT DISTINCT X FROM t;")
	require.NoError(t, err)
	assert.Equal(t, [][]int64{{1}, {2}, {3}}, res.Rows)

	res, err = run(t, store, "SELECT X FROM t;")
	require.NoError(t, err)
	assert.Len(t, res.Rows, 5)
}

func TestExecuteProjectionOrderAndDuplicates(t *testing.T) {
	res, err := run(t, sampleStore(), "SELECT C, A, table1.C FROM table1 WHERE A <= 2;")
	require.NoError(t, err)
	assert.Equal(t, []string{"table1.C", "table1.A"}, res.Columns)
	assert.Equal(t, [][]int64{{100, 1}, {200, 2}}, res.Rows)
}

func TestExecuteWhere(t *testing.T) {
	tests := []struct {
		sql  string
		rows [][]int64
	}{
		{"SELECT A FROM table1 WHERE B = 10;", [][]int64{{1}, {3}}},
		{"SELECT A FROM table1 WHERE B != 10;", [][]int64{{2}}},
		{"SELECT A FROM table1 WHERE 200 <= C;", [][]int64{{2}, {3}}},
		{"SELECT A FROM table1 WHERE A = 1 OR C = 300;", [][]int64{{1}, {3}}},
		{"SELECT A FROM table1 WHERE A >= 1 AND C < 300;", [][]int64{{1}, {2}}},
		{"SELECT A FROM table1 WHERE A > 5;", [][]int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			res, err := run(t, sampleStore(), tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.rows, res.Rows)
		})
	}
}

func TestExecuteAggregate(t *testing.T) {
	tests := []struct {
		sql   string
		label string
		value string
	}{
		{"SELECT MAX(D) FROM table2;", "MAX(table2.D)", "7"},
		{"SELECT min(D) FROM table2;", "MIN(table2.D)", "-1"},
		{"SELECT SUM(table2.D) FROM table2;", "SUM(table2.D)", "16"},
		{"SELECT AVG(D) FROM table2;", "AVG(table2.D)", "4"},
		{"SELECT AVG(A) FROM table1 WHERE A < 3;", "AVG(table1.A)", "1.5"},
		{"SELECT SUM(A) FROM table1 WHERE A > 3;", "SUM(table1.A)", "0"},
		{"SELECT MAX(A) FROM table1 WHERE A > 3;", "MAX(table1.A)", "NULL"},
		{"SELECT MAX(D) FROM table1, table2 WHERE table1.B = table2.B;", "MAX(table2.D)", "7"},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			res, err := run(t, sampleStore(), tt.sql)
			require.NoError(t, err)
			require.True(t, res.IsAggregate())
			assert.Equal(t, tt.label, res.Aggregate.Label)
			assert.Equal(t, tt.value, res.Aggregate.Value.String())
			assert.Equal(t, 1, res.RowCount())
		})
	}
}

func TestExecuteMissingTable(t *testing.T) {
	spec := &query.QuerySpec{
		Tables:      []string{"nope"},
		Projections: []query.Projection{{Kind: query.Wildcard}},
	}
	_, err := Execute(spec, sampleStore())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrJoinExecution)
}

func TestExecuteUnresolvedColumn(t *testing.T) {
	spec := &query.QuerySpec{
		Tables:      []string{"table1"},
		Projections: []query.Projection{{Kind: query.PlainColumn, Column: query.ColumnRef{Column: "A"}}},
	}
	_, err := Execute(spec, sampleStore())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownAttribute)
}
