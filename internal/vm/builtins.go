package vm

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/funvibe/arrayvm/internal/geom"
)

// builtins maps signature names such as "+(real[],real)" to instructions.
type builtins map[string]Instruction

var defaultBuiltins = sync.OnceValue(func() builtins {
	b := make(builtins)

	registerNumber[int64](b)
	registerNumber[float64](b)
	elementwise[int64, int64](b, "#", Quotient)

	registerOrdered[int64](b)
	registerOrdered[float64](b)
	registerOrdered[string](b)
	elementwise[string, string](b, "+", Plus[string])

	elementwise[bool, bool](b, "&", And)
	elementwise[bool, bool](b, "|", Or)
	elementwise[bool, bool](b, "^", Xor)

	registerVector[geom.Pair](b)
	registerVector[geom.Triple](b)
	elementwise[geom.Pair, geom.Pair](b, "*", PairTimes)
	elementwise[geom.Pair, geom.Pair](b, "/", PairDivide)

	registerEquality[bool](b)
	registerEquality[int64](b)
	registerEquality[float64](b)
	registerEquality[string](b)
	registerEquality[geom.Pair](b)
	registerEquality[geom.Triple](b)

	registerWrite[bool](b)
	registerWrite[int64](b)
	registerWrite[float64](b)
	registerWrite[string](b)
	registerWrite[geom.Pair](b)
	registerWrite[geom.Triple](b)

	for name, f := range realFuncs {
		b[name+"(real[])"] = RealArrayFunc(f)
	}
	return b
})

// builtinTable returns a private copy of the builtin table.
func builtinTable() map[string]Instruction {
	return maps.Clone(defaultBuiltins())
}

// BuiltinNames lists every builtin signature in sorted order.
func BuiltinNames() []string {
	return slices.Sorted(maps.Keys(defaultBuiltins()))
}

// elementwise registers the array-array, array-scalar and scalar-array
// forms of op.
func elementwise[T, R Scalar](b builtins, op string, f Operator[T, R]) {
	n := typeName[T]()
	b[fmt.Sprintf("%s(%s[],%s[])", op, n, n)] = ArrayArrayOp(f)
	b[fmt.Sprintf("%s(%s[],%s)", op, n, n)] = ArrayOp(f)
	b[fmt.Sprintf("%s(%s,%s[])", op, n, n)] = OpArray(f)
}

func registerNumber[T Number](b builtins) {
	n := typeName[T]()
	elementwise[T, T](b, "+", Plus[T])
	elementwise[T, T](b, "-", Minus[T])
	elementwise[T, T](b, "*", Times[T])
	elementwise[T, float64](b, "/", Divide[T])
	elementwise[T, T](b, "%", Mod[T])
	elementwise[T, T](b, "^", Power[T])
	b[fmt.Sprintf("-(%s[])", n)] = ArrayNegate[T]()
	b[fmt.Sprintf("sum(%s[])", n)] = SumArray[T]()
}

func registerOrdered[T Ordered](b builtins) {
	n := typeName[T]()
	elementwise[T, bool](b, "<", Less[T])
	elementwise[T, bool](b, "<=", LessEquals[T])
	elementwise[T, bool](b, ">", Greater[T])
	elementwise[T, bool](b, ">=", GreaterEquals[T])
	elementwise[T, T](b, "min", Min[T])
	elementwise[T, T](b, "max", Max[T])
	b[fmt.Sprintf("max(%s[])", n)] = MaxArray[T]()
	b[fmt.Sprintf("min(%s[])", n)] = MinArray[T]()
	b[fmt.Sprintf("sort(%s[])", n)] = SortArray[T]()
	b[fmt.Sprintf("sort(%s[][])", n)] = SortArray2[T]()
	b[fmt.Sprintf("search(%s[],%s)", n, n)] = SearchArray[T]()
}

func registerVector[T VectorScalar[T]](b builtins) {
	n := typeName[T]()
	elementwise[T, T](b, "+", VectorPlus[T])
	elementwise[T, T](b, "-", VectorMinus[T])
	b[fmt.Sprintf("-(%s[])", n)] = ArrayNegateVector[T]()
	b[fmt.Sprintf("sum(%s[])", n)] = SumArrayVector[T]()
}

func registerEquality[T Scalar](b builtins) {
	elementwise[T, bool](b, "==", Equals[T])
	elementwise[T, bool](b, "!=", NotEquals[T])
}

func registerWrite[T Scalar](b builtins) {
	n := typeName[T]()
	b[fmt.Sprintf("write(%s[])", n)] = WriteArray[T]()
	b[fmt.Sprintf("write(%s[][])", n)] = WriteArray2[T]()
	b[fmt.Sprintf("write(%s[][][])", n)] = WriteArray3[T]()
	b[fmt.Sprintf("write(%s,%s[])", n, n)] = Write[T]()
	b[fmt.Sprintf("writeP(%s,%s[])", n, n)] = WriteP[T]()
}

var realFuncs = map[string]func(float64) float64{
	"sqrt":  math.Sqrt,
	"cbrt":  math.Cbrt,
	"exp":   math.Exp,
	"expm1": math.Expm1,
	"log":   math.Log,
	"log1p": math.Log1p,
	"log10": math.Log10,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"asinh": math.Asinh,
	"acosh": math.Acosh,
	"atanh": math.Atanh,
	"fabs":  math.Abs,
}
