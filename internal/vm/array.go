package vm

// Array is an owned, mutable sequence of stack slots. Two arrays with the
// same contents are still distinct; sharing requires an explicit Copy.
type Array struct {
	elems []Value
}

// NewArray allocates an array of n default slots.
func NewArray(n int) *Array {
	return &Array{elems: make([]Value, n)}
}

// NewArrayFrom takes ownership of vals.
func NewArrayFrom(vals []Value) *Array {
	return &Array{elems: vals}
}

// ArrayOf builds an array of scalars.
func ArrayOf[T Scalar](xs ...T) *Array {
	a := NewArray(len(xs))
	for i, x := range xs {
		a.elems[i] = ValueOf(x)
	}
	return a
}

// ArrayOf2 builds an array of rows.
func ArrayOf2[T Scalar](rows ...[]T) *Array {
	a := NewArray(len(rows))
	for i, r := range rows {
		a.elems[i] = ArrayVal(ArrayOf(r...))
	}
	return a
}

// ArrayOf3 builds an array of blocks of rows.
func ArrayOf3[T Scalar](blocks ...[][]T) *Array {
	a := NewArray(len(blocks))
	for i, b := range blocks {
		a.elems[i] = ArrayVal(ArrayOf2(b...))
	}
	return a
}

func (a *Array) Len() int           { return len(a.elems) }
func (a *Array) At(i int) Value     { return a.elems[i] }
func (a *Array) Set(i int, v Value) { a.elems[i] = v }

// Copy returns an independent array with the same slots. Nested arrays
// are shared, as with any other reference slot.
func (a *Array) Copy() *Array {
	elems := make([]Value, len(a.elems))
	copy(elems, a.elems)
	return &Array{elems: elems}
}

// read returns element i as a T.
func read[T Scalar](a *Array, i int) (T, error) {
	v, err := As[T](a.elems[i])
	if err != nil {
		return v, &ElementError{Index: i, Err: err}
	}
	return v, nil
}

// readRef returns element i read through its reference.
func readRef[T Scalar](a *Array, i int) (T, error) {
	v, err := deref[T](a.elems[i])
	if err != nil {
		return v, &ElementError{Index: i, Err: err}
	}
	return v, nil
}

// readArray returns element i as a non-null array.
func readArray(a *Array, i int) (*Array, error) {
	v := a.elems[i]
	if v.Type != ValArray {
		return nil, &ElementError{Index: i, Err: &TypeMismatchError{Want: ValArray, Got: v.Type}}
	}
	sub := v.AsArray()
	if sub == nil {
		return nil, &ElementError{Index: i, Err: ErrNullArray}
	}
	return sub, nil
}

// Slice copies a into a []T, failing on the first element of another type.
func Slice[T Scalar](a *Array) ([]T, error) {
	out := make([]T, a.Len())
	for i := range out {
		v, err := read[T](a, i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Slice2 copies an array of rows.
func Slice2[T Scalar](a *Array) ([][]T, error) {
	out := make([][]T, a.Len())
	for i := range out {
		row, err := readArray(a, i)
		if err != nil {
			return nil, err
		}
		if out[i], err = Slice[T](row); err != nil {
			return nil, &ElementError{Index: i, Err: err}
		}
	}
	return out, nil
}

// Slice3 copies an array of blocks of rows.
func Slice3[T Scalar](a *Array) ([][][]T, error) {
	out := make([][][]T, a.Len())
	for i := range out {
		block, err := readArray(a, i)
		if err != nil {
			return nil, err
		}
		if out[i], err = Slice2[T](block); err != nil {
			return nil, &ElementError{Index: i, Err: err}
		}
	}
	return out, nil
}

// sliceRefs copies an array of references.
func sliceRefs[T Scalar](a *Array) ([]T, error) {
	out := make([]T, a.Len())
	for i := range out {
		v, err := readRef[T](a, i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// checkArrays returns the common length of a and b.
func checkArrays(a, b *Array) (int, error) {
	if a.Len() != b.Len() {
		return 0, &SizeMismatchError{Left: a.Len(), Right: b.Len()}
	}
	return a.Len(), nil
}
