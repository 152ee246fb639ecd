package engine

import (
	"math/big"
	"strconv"

	"github.com/leapstack-labs/leapselect/pkg/core"
	"github.com/leapstack-labs/leapselect/pkg/query"
)

// Scalar is an aggregate value. MAX, MIN and SUM are always integral; AVG is
// integral only when the mean divides evenly.
type Scalar struct {
	Int     int64
	Float   float64
	IsFloat bool
	// Big holds an integral result that does not fit in an int64.
	Big *big.Int
	// Null is set when MAX, MIN or AVG ran over no rows.
	Null bool
}

func (s Scalar) String() string {
	switch {
	case s.Null:
		return "NULL"
	case s.IsFloat:
		return strconv.FormatFloat(s.Float, 'f', -1, 64)
	case s.Big != nil:
		return s.Big.String()
	default:
		return strconv.FormatInt(s.Int, 10)
	}
}

// Value returns the scalar as a plain Go value for encoders.
func (s Scalar) Value() any {
	switch {
	case s.Null:
		return nil
	case s.IsFloat:
		return s.Float
	case s.Big != nil:
		return s.Big
	default:
		return s.Int
	}
}

// Aggregate applies an aggregate function to values.
func Aggregate(fn string, values []int64) (Scalar, error) {
	switch fn {
	case query.FuncSum:
		return intScalar(sum(values)), nil
	case query.FuncMax, query.FuncMin, query.FuncAvg:
		if len(values) == 0 {
			return Scalar{Null: true}, nil
		}
	default:
		return Scalar{}, core.Errorf(core.KindUnsupportedFunc, "%s() is not a supported function", fn)
	}

	switch fn {
	case query.FuncMax:
		best := values[0]
		for _, v := range values[1:] {
			if v > best {
				best = v
			}
		}
		return Scalar{Int: best}, nil
	case query.FuncMin:
		best := values[0]
		for _, v := range values[1:] {
			if v < best {
				best = v
			}
		}
		return Scalar{Int: best}, nil
	default:
		mean := new(big.Rat).SetFrac(sum(values), big.NewInt(int64(len(values))))
		if mean.IsInt() {
			return intScalar(mean.Num()), nil
		}
		f, _ := mean.Float64()
		return Scalar{Float: f, IsFloat: true}, nil
	}
}

// sum adds values without wrapping at the int64 bounds.
func sum(values []int64) *big.Int {
	total := new(big.Int)
	var v big.Int
	for _, x := range values {
		total.Add(total, v.SetInt64(x))
	}
	return total
}

func intScalar(n *big.Int) Scalar {
	if n.IsInt64() {
		return Scalar{Int: n.Int64()}
	}
	return Scalar{Big: n}
}
