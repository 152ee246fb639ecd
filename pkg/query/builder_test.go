package query

import (
	"testing"

	"github.com/leapstack-labs/leapselect/pkg/core"
	"github.com/leapstack-labs/leapselect/pkg/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, sql string) (*QuerySpec, error) {
	t.Helper()
	toks, err := tokenizer.Classify(sql)
	require.NoError(t, err)
	return Build(toks)
}

func col(s string) ColumnRef {
	ref, _ := ParseColumnRef(s)
	return ref
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want *QuerySpec
	}{
		{
			name: "wildcard",
			sql:  "SELECT * FROM table1;",
			want: &QuerySpec{
				Tables:      []string{"table1"},
				Projections: []Projection{{Kind: Wildcard}},
			},
		},
		{
			name: "distinct columns across two tables",
			sql:  "select distinct A, table2.D from table1, table2;",
			want: &QuerySpec{
				Tables: []string{"table1", "table2"},
				Projections: []Projection{
					{Kind: PlainColumn, Column: col("A")},
					{Kind: PlainColumn, Column: col("table2.D")},
				},
				Distinct: true,
			},
		},
		{
			name: "aggregate",
			sql:  "SELECT max(D) FROM table2;",
			want: &QuerySpec{
				Tables:      []string{"table2"},
				Projections: []Projection{{Kind: Aggregate, Function: "max", Column: col("D")}},
			},
		},
		{
			name: "wildcard with extra column",
			sql:  "SELECT *, C FROM table1;",
			want: &QuerySpec{
				Tables: []string{"table1"},
				Projections: []Projection{
					{Kind: Wildcard},
					{Kind: PlainColumn, Column: col("C")},
				},
			},
		},
		{
			name: "single predicate",
			sql:  "SELECT A FROM table1 WHERE A >= -3;",
			want: &QuerySpec{
				Tables:      []string{"table1"},
				Projections: []Projection{{Kind: PlainColumn, Column: col("A")}},
				Predicates: []Predicate{
					{Left: ColumnOperand(col("A")), Operator: OpGe, Right: LiteralOperand(-3)},
				},
			},
		},
		{
			name: "two predicates joined by OR",
			sql:  "SELECT A FROM table1, table2 WHERE table1.B = table2.B OR 5 < D;",
			want: &QuerySpec{
				Tables:      []string{"table1", "table2"},
				Projections: []Projection{{Kind: PlainColumn, Column: col("A")}},
				Predicates: []Predicate{
					{Left: ColumnOperand(col("table1.B")), Operator: OpEq, Right: ColumnOperand(col("table2.B"))},
					{Left: LiteralOperand(5), Operator: OpLt, Right: ColumnOperand(col("D"))},
				},
				Combinator: CombinatorOr,
			},
		},
		{
			name: "not-equal spellings",
			sql:  "SELECT A FROM t WHERE A <> 1;",
			want: &QuerySpec{
				Tables:      []string{"t"},
				Projections: []Projection{{Kind: PlainColumn, Column: col("A")}},
				Predicates: []Predicate{
					{Left: ColumnOperand(col("A")), Operator: OpNe, Right: LiteralOperand(1)},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := build(t, tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildQueryStructureErrors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{"does not start with SELECT", "FROM t SELECT a;"},
		{"missing FROM", "SELECT a;"},
		{"missing terminator", "SELECT a FROM t"},
		{"two statements", "SELECT a FROM t; SELECT b FROM t;"},
		{"duplicate table", "SELECT a FROM t, t;"},
		{"qualified table", "SELECT a FROM db.t;"},
		{"unsupported clause", "SELECT a FROM t GROUP BY a;"},
		{"where before from", "SELECT a WHERE a = 1;"},
		{"distinct after column", "SELECT a DISTINCT FROM t;"},
		{"number in select list", "SELECT 1 FROM t;"},
		{"over-qualified column", "SELECT a.b.c FROM t;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := build(t, tt.sql)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrQueryStructure)
		})
	}
}

func TestBuildEmptyTokenStream(t *testing.T) {
	_, err := Build(nil)
	assert.ErrorIs(t, err, core.ErrQueryStructure)
}

func TestBuildWhereStructure(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		wantErr bool
		want    Combinator
	}{
		{name: "no predicates no combinator", sql: "SELECT a FROM t;"},
		{name: "one predicate", sql: "SELECT a FROM t WHERE a = 1;"},
		{name: "two predicates with AND", sql: "SELECT a FROM t WHERE a = 1 AND b = 2;", want: CombinatorAnd},
		{name: "combinator first", sql: "SELECT a FROM t WHERE AND a = 1;", wantErr: true},
		{name: "dangling combinator", sql: "SELECT a FROM t WHERE a = 1 AND;", wantErr: true},
		{name: "two predicates without combinator", sql: "SELECT a FROM t WHERE a = 1 b = 2;", wantErr: true},
		{name: "three predicates", sql: "SELECT a FROM t WHERE a = 1 AND b = 2 AND c = 3;", wantErr: true},
		{name: "two combinators", sql: "SELECT a FROM t WHERE a = 1 AND OR b = 2;", wantErr: true},
		{name: "unsupported combinator", sql: "SELECT a FROM t WHERE a = 1 NOT b = 2;", wantErr: true},
		{name: "empty where", sql: "SELECT a FROM t WHERE;", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := build(t, tt.sql)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, core.ErrWhereStructure)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.Combinator)
			assert.LessOrEqual(t, len(spec.Predicates), 2)
		})
	}
}
