package tokenizer

import (
	"testing"

	"github.com/leapstack-labs/leapselect/pkg/core"
	"github.com/leapstack-labs/leapselect/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categories(toks []Token) []Category {
	out := make([]Category, len(toks))
	for i, tok := range toks {
		out[i] = tok.Category
	}
	return out
}

func TestClassifyCategories(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Category
	}{
		{
			name:  "wildcard",
			input: "SELECT * FROM t;",
			want:  []Category{Keyword, Wildcard, Keyword, Identifier, Terminator},
		},
		{
			name:  "distinct column",
			input: "SELECT DISTINCT a FROM t;",
			want:  []Category{Keyword, Keyword, Identifier, Keyword, Identifier, Terminator},
		},
		{
			name:  "lists on both sides",
			input: "SELECT a, b FROM t1, t2;",
			want:  []Category{Keyword, IdentifierList, Keyword, IdentifierList, Terminator},
		},
		{
			name:  "aggregate",
			input: "SELECT max(D) FROM t;",
			want:  []Category{Keyword, Function, Keyword, Identifier, Terminator},
		},
		{
			name:  "where group",
			input: "SELECT a FROM t WHERE a = 1 AND b < c;",
			want:  []Category{Keyword, Identifier, Keyword, Identifier, Where, Terminator},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Classify(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, categories(toks))
		})
	}
}

func TestClassifyWhereChildren(t *testing.T) {
	toks, err := Classify("SELECT a FROM t WHERE t.a >= 10 or b != c;")
	require.NoError(t, err)
	require.Len(t, toks, 6)

	where := toks[4]
	require.Equal(t, Where, where.Category)
	assert.Equal(t, []Category{Keyword, Comparison, Keyword, Comparison}, categories(where.Children))

	first := where.Children[1]
	assert.Equal(t, token.GE, first.Type)
	assert.Equal(t, ">=", first.Operator())
	require.Len(t, first.Children, 2)
	assert.Equal(t, Identifier, first.Children[0].Category)
	assert.Equal(t, "t.a", first.Children[0].Value)
	assert.Equal(t, Number, first.Children[1].Category)

	assert.Equal(t, "OR", where.Children[2].Value)
}

func TestClassifyFunction(t *testing.T) {
	toks, err := Classify("SELECT Sum(t1.B) FROM t1;")
	require.NoError(t, err)

	fn := toks[1]
	require.Equal(t, Function, fn.Category)
	assert.Equal(t, "Sum", fn.FuncName())
	require.Len(t, fn.Children, 1)
	assert.Equal(t, "t1.B", fn.Children[0].Value)
}

func TestClassifyListWithWildcard(t *testing.T) {
	toks, err := Classify("SELECT *, a FROM t;")
	require.NoError(t, err)

	list := toks[1]
	require.Equal(t, IdentifierList, list.Category)
	assert.Equal(t, []Category{Wildcard, Identifier}, categories(list.Children))
	assert.Equal(t, "*, a", list.Value)
}

func TestClassifyErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"dangling comma", "SELECT a, FROM t;"},
		{"unclosed function", "SELECT max(a FROM t;"},
		{"missing operator", "SELECT a FROM t WHERE a b;"},
		{"missing operand", "SELECT a FROM t WHERE a =;"},
		{"stray paren", "SELECT ( FROM t;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrQueryStructure)
		})
	}
}
