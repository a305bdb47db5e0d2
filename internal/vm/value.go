package vm

import (
	"fmt"
	"math"
	"strings"

	"github.com/funvibe/arrayvm/internal/geom"
	"github.com/funvibe/arrayvm/internal/sink"
)

// ValueType identifies the type of value stored in the Value struct
type ValueType uint8

const (
	ValDefault ValueType = iota // "use the default" sentinel for optional operands
	ValBool
	ValInt
	ValReal
	ValString
	ValPair
	ValTriple
	ValArray
	ValCallable
	ValSink
	ValRef // owned reference to a scalar stored out of line
)

var valueTypeNames = [...]string{
	ValDefault:  "default",
	ValBool:     "bool",
	ValInt:      "int",
	ValReal:     "real",
	ValString:   "string",
	ValPair:     "pair",
	ValTriple:   "triple",
	ValArray:    "array",
	ValCallable: "callable",
	ValSink:     "file",
	ValRef:      "reference",
}

func (t ValueType) String() string {
	if int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return fmt.Sprintf("ValueType(%d)", t)
}

// Value is a stack slot: a tagged union.
// Bool, int and real live in Data; everything else is held in Obj.
type Value struct {
	Type ValueType
	Data uint64
	Obj  any
}

// Constructors

func Default() Value {
	return Value{Type: ValDefault}
}

func BoolVal(v bool) Value {
	var data uint64
	if v {
		data = 1
	}
	return Value{Type: ValBool, Data: data}
}

func IntVal(v int64) Value {
	return Value{Type: ValInt, Data: uint64(v)}
}

func RealVal(v float64) Value {
	return Value{Type: ValReal, Data: math.Float64bits(v)}
}

func StringVal(v string) Value {
	return Value{Type: ValString, Obj: v}
}

func PairVal(v geom.Pair) Value {
	return Value{Type: ValPair, Obj: v}
}

func TripleVal(v geom.Triple) Value {
	return Value{Type: ValTriple, Obj: v}
}

// ArrayVal wraps a; a nil a is a null array.
func ArrayVal(a *Array) Value {
	return Value{Type: ValArray, Obj: a}
}

func CallableVal(c Callable) Value {
	return Value{Type: ValCallable, Obj: c}
}

func SinkVal(s sink.Sink) Value {
	return Value{Type: ValSink, Obj: s}
}

// RefOf stores a pointer to a scalar; WriteP reads through it.
func RefOf[T Scalar](p *T) Value {
	return Value{Type: ValRef, Obj: p}
}

// Accessors. They do not check the tag.

func (v Value) AsBool() bool          { return v.Data == 1 }
func (v Value) AsInt() int64          { return int64(v.Data) }
func (v Value) AsReal() float64       { return math.Float64frombits(v.Data) }
func (v Value) AsString() string      { s, _ := v.Obj.(string); return s }
func (v Value) AsPair() geom.Pair     { p, _ := v.Obj.(geom.Pair); return p }
func (v Value) AsTriple() geom.Triple { t, _ := v.Obj.(geom.Triple); return t }
func (v Value) AsArray() *Array       { a, _ := v.Obj.(*Array); return a }
func (v Value) AsCallable() Callable  { c, _ := v.Obj.(Callable); return c }
func (v Value) AsSink() sink.Sink     { s, _ := v.Obj.(sink.Sink); return s }

func (v Value) IsDefault() bool { return v.Type == ValDefault }

// Inspect returns string representation
func (v Value) Inspect() string {
	switch v.Type {
	case ValDefault:
		return "<default>"
	case ValBool:
		return fmt.Sprintf("%t", v.AsBool())
	case ValInt:
		return fmt.Sprintf("%d", v.AsInt())
	case ValReal:
		return geom.FormatReal(v.AsReal(), 6)
	case ValString:
		return fmt.Sprintf("%q", v.AsString())
	case ValPair:
		return v.AsPair().String()
	case ValTriple:
		return v.AsTriple().String()
	case ValArray:
		a := v.AsArray()
		if a == nil {
			return "null"
		}
		parts := make([]string, a.Len())
		for i := range parts {
			parts[i] = a.At(i).Inspect()
		}
		return "{" + strings.Join(parts, ",") + "}"
	case ValCallable:
		if c := v.AsCallable(); c != nil {
			return fmt.Sprintf("<callable %s>", c.Name())
		}
		return "<callable>"
	case ValSink:
		if s := v.AsSink(); s != nil {
			if s.Standard() {
				return "<file stdout>"
			}
			return fmt.Sprintf("<file %s>", s.Name())
		}
		return "<file>"
	case ValRef:
		return "<reference>"
	default:
		return "<?>"
	}
}

// Scalar is the set of types array elements can be read as.
type Scalar interface {
	bool | int64 | float64 | string | geom.Pair | geom.Triple
}

// Number is the set of scalar types with built-in arithmetic.
type Number interface {
	int64 | float64
}

// Ordered is the set of scalar types with a total order under <.
type Ordered interface {
	int64 | float64 | string
}

// VectorScalar is the set of composite scalars with method arithmetic.
type VectorScalar[T any] interface {
	geom.Pair | geom.Triple
	Add(T) T
	Sub(T) T
	Neg() T
}

// kindOf returns the tag a T is stored under.
func kindOf[T Scalar]() ValueType {
	var zero T
	switch any(zero).(type) {
	case bool:
		return ValBool
	case int64:
		return ValInt
	case float64:
		return ValReal
	case string:
		return ValString
	case geom.Pair:
		return ValPair
	default:
		return ValTriple
	}
}

// As is the checked downcast from a stack slot to a T.
func As[T Scalar](v Value) (T, error) {
	var out T
	if want := kindOf[T](); v.Type != want {
		return out, &TypeMismatchError{Want: want, Got: v.Type}
	}
	switch p := any(&out).(type) {
	case *bool:
		*p = v.AsBool()
	case *int64:
		*p = v.AsInt()
	case *float64:
		*p = v.AsReal()
	case *string:
		*p = v.AsString()
	case *geom.Pair:
		*p = v.AsPair()
	case *geom.Triple:
		*p = v.AsTriple()
	}
	return out, nil
}

// deref reads a T through a reference slot.
func deref[T Scalar](v Value) (T, error) {
	var out T
	if v.Type != ValRef {
		return out, &TypeMismatchError{Want: ValRef, Got: v.Type}
	}
	p, ok := v.Obj.(*T)
	if !ok || p == nil {
		return out, &TypeMismatchError{Want: kindOf[T](), Got: ValRef}
	}
	return *p, nil
}

// ValueOf boxes a scalar.
func ValueOf[T Scalar](x T) Value {
	switch v := any(x).(type) {
	case bool:
		return BoolVal(v)
	case int64:
		return IntVal(v)
	case float64:
		return RealVal(v)
	case string:
		return StringVal(v)
	case geom.Pair:
		return PairVal(v)
	case geom.Triple:
		return TripleVal(v)
	}
	panic("unreachable")
}

// typeName renders T the way builtin signatures spell it.
func typeName[T Scalar]() string {
	return kindOf[T]().String()
}

// RefTo moves a scalar out of line, returning a reference to a copy of it.
func RefTo(v Value) (Value, error) {
	switch v.Type {
	case ValBool:
		x := v.AsBool()
		return RefOf(&x), nil
	case ValInt:
		x := v.AsInt()
		return RefOf(&x), nil
	case ValReal:
		x := v.AsReal()
		return RefOf(&x), nil
	case ValString:
		x := v.AsString()
		return RefOf(&x), nil
	case ValPair:
		x := v.AsPair()
		return RefOf(&x), nil
	case ValTriple:
		x := v.AsTriple()
		return RefOf(&x), nil
	}
	return Value{}, fmt.Errorf("%w: cannot take a reference to %s", ErrTypeMismatch, v.Type)
}
