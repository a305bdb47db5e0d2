// Package geom holds the composite scalar types the VM stores in array
// slots: planar pairs and spatial triples.
package geom

import (
	"math"
	"strconv"
)

// Pair is a point or complex number in the plane.
type Pair struct {
	X, Y float64
}

// Triple is a point in space.
type Triple struct {
	X, Y, Z float64
}

// Pair arithmetic. Multiplication and division are complex.

func (p Pair) Add(q Pair) Pair { return Pair{p.X + q.X, p.Y + q.Y} }
func (p Pair) Sub(q Pair) Pair { return Pair{p.X - q.X, p.Y - q.Y} }
func (p Pair) Neg() Pair       { return Pair{-p.X, -p.Y} }

func (p Pair) Mul(q Pair) Pair {
	return Pair{p.X*q.X - p.Y*q.Y, p.X*q.Y + p.Y*q.X}
}

// Div returns p/q. ok is false when q is zero.
func (p Pair) Div(q Pair) (Pair, bool) {
	d := q.X*q.X + q.Y*q.Y
	if d == 0 {
		return Pair{}, false
	}
	return Pair{(p.X*q.X + p.Y*q.Y) / d, (p.Y*q.X - p.X*q.Y) / d}, true
}

// Length returns |p|.
func (p Pair) Length() float64 { return math.Hypot(p.X, p.Y) }

// Triple arithmetic.

func (t Triple) Add(u Triple) Triple { return Triple{t.X + u.X, t.Y + u.Y, t.Z + u.Z} }
func (t Triple) Sub(u Triple) Triple { return Triple{t.X - u.X, t.Y - u.Y, t.Z - u.Z} }
func (t Triple) Neg() Triple         { return Triple{-t.X, -t.Y, -t.Z} }

// Scale multiplies every component by s.
func (t Triple) Scale(s float64) Triple { return Triple{t.X * s, t.Y * s, t.Z * s} }

// FormatReal renders x the way a C++ ostream does at the given precision:
// shortest of fixed or exponent notation, trailing zeros dropped.
func FormatReal(x float64, precision int) string {
	if precision <= 0 {
		precision = 6
	}
	switch {
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	case math.IsNaN(x):
		return "nan"
	}
	return strconv.FormatFloat(x, 'g', precision, 64)
}

// Format renders p as "(x,y)".
func (p Pair) Format(precision int) string {
	return "(" + FormatReal(p.X, precision) + "," + FormatReal(p.Y, precision) + ")"
}

// Format renders t as "(x,y,z)".
func (t Triple) Format(precision int) string {
	return "(" + FormatReal(t.X, precision) + "," + FormatReal(t.Y, precision) + "," +
		FormatReal(t.Z, precision) + ")"
}

func (p Pair) String() string   { return p.Format(6) }
func (t Triple) String() string { return t.Format(6) }
