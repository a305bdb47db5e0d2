package program

import (
	"errors"
	"fmt"

	"github.com/funvibe/arrayvm/internal/geom"
	"github.com/funvibe/arrayvm/internal/vm"
)

// Operand is a pushed value. Exactly one field is set.
type Operand struct {
	Bool   *bool       `yaml:"bool,omitempty"`
	Int    *int64      `yaml:"int,omitempty"`
	Real   *float64    `yaml:"real,omitempty"`
	String *string     `yaml:"string,omitempty"`
	Pair   *[2]float64 `yaml:"pair,omitempty"`
	Triple *[3]float64 `yaml:"triple,omitempty"`

	Bools   []bool       `yaml:"bools,omitempty"`
	Ints    []int64      `yaml:"ints,omitempty"`
	Reals   []float64    `yaml:"reals,omitempty"`
	Strings []string     `yaml:"strings,omitempty"`
	Pairs   [][2]float64 `yaml:"pairs,omitempty"`
	Triples [][3]float64 `yaml:"triples,omitempty"`

	Ints2    [][]int64      `yaml:"ints2,omitempty"`
	Reals2   [][]float64    `yaml:"reals2,omitempty"`
	Strings2 [][]string     `yaml:"strings2,omitempty"`
	Pairs2   [][][2]float64 `yaml:"pairs2,omitempty"`
	Ints3    [][][]int64    `yaml:"ints3,omitempty"`
	Reals3   [][][]float64  `yaml:"reals3,omitempty"`

	// Ref pushes a reference to a scalar; Refs an array of references
	// built from a scalar list.
	Ref  *Operand `yaml:"ref,omitempty"`
	Refs *Operand `yaml:"refs,omitempty"`

	Default  bool      `yaml:"default,omitempty"`
	Null     bool      `yaml:"null,omitempty"`
	Callable string    `yaml:"callable,omitempty"`
	Sink     *SinkSpec `yaml:"sink,omitempty"`
}

// SinkSpec names a file to open as a sink.
type SinkSpec struct {
	Path string `yaml:"path"`
	Mode string `yaml:"mode,omitempty"`
}

var errOperand = errors.New("operand must set exactly one value")

func pair(p [2]float64) geom.Pair     { return geom.Pair{X: p[0], Y: p[1]} }
func triple(p [3]float64) geom.Triple { return geom.Triple{X: p[0], Y: p[1], Z: p[2]} }

func mapSlice[S, T any](xs []S, f func(S) T) []T {
	out := make([]T, len(xs))
	for i, x := range xs {
		out[i] = f(x)
	}
	return out
}

// value builds the operand's value. Sinks are opened by the compiler.
func (o *Operand) value(c *Compiler) (vm.Value, error) {
	var (
		v   vm.Value
		set int
	)
	use := func(x vm.Value) {
		v = x
		set++
	}

	if o.Bool != nil {
		use(vm.BoolVal(*o.Bool))
	}
	if o.Int != nil {
		use(vm.IntVal(*o.Int))
	}
	if o.Real != nil {
		use(vm.RealVal(*o.Real))
	}
	if o.String != nil {
		use(vm.StringVal(*o.String))
	}
	if o.Pair != nil {
		use(vm.PairVal(pair(*o.Pair)))
	}
	if o.Triple != nil {
		use(vm.TripleVal(triple(*o.Triple)))
	}
	if o.Bools != nil {
		use(vm.ArrayVal(vm.ArrayOf(o.Bools...)))
	}
	if o.Ints != nil {
		use(vm.ArrayVal(vm.ArrayOf(o.Ints...)))
	}
	if o.Reals != nil {
		use(vm.ArrayVal(vm.ArrayOf(o.Reals...)))
	}
	if o.Strings != nil {
		use(vm.ArrayVal(vm.ArrayOf(o.Strings...)))
	}
	if o.Pairs != nil {
		use(vm.ArrayVal(vm.ArrayOf(mapSlice(o.Pairs, pair)...)))
	}
	if o.Triples != nil {
		use(vm.ArrayVal(vm.ArrayOf(mapSlice(o.Triples, triple)...)))
	}
	if o.Ints2 != nil {
		use(vm.ArrayVal(vm.ArrayOf2(o.Ints2...)))
	}
	if o.Reals2 != nil {
		use(vm.ArrayVal(vm.ArrayOf2(o.Reals2...)))
	}
	if o.Strings2 != nil {
		use(vm.ArrayVal(vm.ArrayOf2(o.Strings2...)))
	}
	if o.Pairs2 != nil {
		rows := mapSlice(o.Pairs2, func(r [][2]float64) []geom.Pair { return mapSlice(r, pair) })
		use(vm.ArrayVal(vm.ArrayOf2(rows...)))
	}
	if o.Ints3 != nil {
		use(vm.ArrayVal(vm.ArrayOf3(o.Ints3...)))
	}
	if o.Reals3 != nil {
		use(vm.ArrayVal(vm.ArrayOf3(o.Reals3...)))
	}
	if o.Ref != nil {
		inner, err := o.Ref.value(c)
		if err != nil {
			return vm.Value{}, err
		}
		ref, err := vm.RefTo(inner)
		if err != nil {
			return vm.Value{}, err
		}
		use(ref)
	}
	if o.Refs != nil {
		inner, err := o.Refs.value(c)
		if err != nil {
			return vm.Value{}, err
		}
		refs, err := refArray(inner)
		if err != nil {
			return vm.Value{}, err
		}
		use(refs)
	}
	if o.Default {
		use(vm.Default())
	}
	if o.Null {
		use(vm.ArrayVal(nil))
	}
	if o.Callable != "" {
		fn, ok := vm.LookupSuffix(o.Callable)
		if !ok {
			return vm.Value{}, fmt.Errorf("unknown callable %q", o.Callable)
		}
		use(vm.CallableVal(fn))
	}
	// Sinks open last and only for an otherwise empty operand.
	if o.Sink != nil && set == 0 {
		s, err := c.openSink(o.Sink)
		if err != nil {
			return vm.Value{}, err
		}
		use(vm.SinkVal(s))
	} else if o.Sink != nil {
		set++
	}

	if set != 1 {
		return vm.Value{}, errOperand
	}
	return v, nil
}

// refArray turns an array of scalars into an array of references.
func refArray(v vm.Value) (vm.Value, error) {
	if v.Type != vm.ValArray || v.AsArray() == nil {
		return vm.Value{}, fmt.Errorf("refs needs a scalar list, got %s", v.Type)
	}
	a := v.AsArray()
	out := vm.NewArray(a.Len())
	for i := 0; i < a.Len(); i++ {
		r, err := vm.RefTo(a.At(i))
		if err != nil {
			return vm.Value{}, err
		}
		out.Set(i, r)
	}
	return vm.ArrayVal(out), nil
}
