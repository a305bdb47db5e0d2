package vm

import (
	"math"

	"github.com/funvibe/arrayvm/internal/geom"
)

// Operator combines a left and right operand at element index i.
// Most operators ignore i; those that can fail report it.
type Operator[T, R any] = func(a, b T, i int) (R, error)

func divideByZero(i int) error {
	return &ElementError{Index: i, Err: ErrDivideByZero}
}

// Arithmetic

func Plus[T Number | string](a, b T, _ int) (T, error) { return a + b, nil }
func Minus[T Number](a, b T, _ int) (T, error)          { return a - b, nil }
func Times[T Number](a, b T, _ int) (T, error)          { return a * b, nil }

// Divide always yields a real, so 1/2 is 0.5 for ints too.
func Divide[T Number](a, b T, i int) (float64, error) {
	if b == 0 {
		return 0, divideByZero(i)
	}
	return float64(a) / float64(b), nil
}

// Quotient is floor division on ints.
func Quotient(a, b int64, i int) (int64, error) {
	if b == 0 {
		return 0, divideByZero(i)
	}
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q, nil
}

// Mod is the remainder taking the sign of the divisor.
func Mod[T Number](a, b T, i int) (T, error) {
	if b == 0 {
		return 0, divideByZero(i)
	}
	switch x := any(a).(type) {
	case int64:
		y := any(b).(int64)
		r := x % y
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}
		return T(r), nil
	default:
		x64, y := float64(a), float64(b)
		r := math.Mod(x64, y)
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}
		return T(r), nil
	}
}

func Power[T Number](a, b T, _ int) (T, error) {
	if x, ok := any(a).(int64); ok {
		return T(intPow(x, any(b).(int64))), nil
	}
	return T(math.Pow(float64(a), float64(b))), nil
}

// intPow computes base**exp by repeated squaring; negative exponents give 0.
func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	result := int64(1)
	for exp > 0 {
		if exp%2 == 1 {
			result *= base
		}
		base *= base
		exp /= 2
	}
	return result
}

// Vector arithmetic

func VectorPlus[T VectorScalar[T]](a, b T, _ int) (T, error)  { return a.Add(b), nil }
func VectorMinus[T VectorScalar[T]](a, b T, _ int) (T, error) { return a.Sub(b), nil }

// PairTimes is complex multiplication.
func PairTimes(a, b geom.Pair, _ int) (geom.Pair, error) { return a.Mul(b), nil }

// PairDivide is complex division.
func PairDivide(a, b geom.Pair, i int) (geom.Pair, error) {
	q, ok := a.Div(b)
	if !ok {
		return geom.Pair{}, divideByZero(i)
	}
	return q, nil
}

// Comparison

func Less[T Ordered](a, b T, _ int) (bool, error)          { return a < b, nil }
func LessEquals[T Ordered](a, b T, _ int) (bool, error)    { return a <= b, nil }
func Greater[T Ordered](a, b T, _ int) (bool, error)       { return a > b, nil }
func GreaterEquals[T Ordered](a, b T, _ int) (bool, error) { return a >= b, nil }

func Equals[T Scalar](a, b T, _ int) (bool, error)    { return a == b, nil }
func NotEquals[T Scalar](a, b T, _ int) (bool, error) { return a != b, nil }

// Logical

func And(a, b bool, _ int) (bool, error) { return a && b, nil }
func Or(a, b bool, _ int) (bool, error)  { return a || b, nil }
func Xor(a, b bool, _ int) (bool, error) { return a != b, nil }

// Extrema

func Min[T Ordered](a, b T, _ int) (T, error) { return min(a, b), nil }
func Max[T Ordered](a, b T, _ int) (T, error) { return max(a, b), nil }
