package engine

import (
	"math"
	"math/big"
	"testing"

	"github.com/leapstack-labs/leapselect/pkg/core"
	"github.com/leapstack-labs/leapselect/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	values := []int64{4, -2, 9, 1}

	tests := []struct {
		fn     string
		values []int64
		want   string
		null   bool
	}{
		{query.FuncMax, values, "9", false},
		{query.FuncMin, values, "-2", false},
		{query.FuncSum, values, "12", false},
		{query.FuncAvg, values, "3", false},
		{query.FuncAvg, []int64{1, 2}, "1.5", false},
		{query.FuncAvg, []int64{1, 1, 2}, "1.3333333333333333", false},
		{query.FuncSum, nil, "0", false},
		{query.FuncMax, nil, "NULL", true},
		{query.FuncMin, nil, "NULL", true},
		{query.FuncAvg, nil, "NULL", true},
		{query.FuncSum, []int64{math.MaxInt64, 1}, "9223372036854775808", false},
		{query.FuncSum, []int64{math.MinInt64, -1}, "-9223372036854775809", false},
		{query.FuncSum, []int64{math.MaxInt64, 1, -2}, "9223372036854775806", false},
		{query.FuncAvg, []int64{math.MaxInt64, math.MaxInt64}, "9223372036854775807", false},
		{query.FuncAvg, []int64{math.MaxInt64, 1}, "4611686018427387904", false},
		{query.FuncAvg, []int64{math.MinInt64, -2}, "-4611686018427387905", false},
	}

	for _, tt := range tests {
		t.Run(tt.fn+"/"+tt.want, func(t *testing.T) {
			got, err := Aggregate(tt.fn, tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, tt.null, got.Null)
		})
	}
}

func TestAggregateUnsupported(t *testing.T) {
	_, err := Aggregate("COUNT", []int64{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnsupportedFunc)
}

func TestScalarValue(t *testing.T) {
	assert.Nil(t, Scalar{Null: true}.Value())
	assert.Equal(t, int64(3), Scalar{Int: 3}.Value())
	assert.Equal(t, 1.5, Scalar{Float: 1.5, IsFloat: true}.Value())

	n, ok := new(big.Int).SetString("9223372036854775808", 10)
	require.True(t, ok)
	assert.Equal(t, n, Scalar{Big: n}.Value())
}
