package vm

import (
	"slices"
)

// SortArray pushes a sorted copy of the array; the original is untouched.
func SortArray[T Ordered]() Instruction {
	return func(vm *VM) error {
		a, err := vm.popArray()
		if err != nil {
			return err
		}
		xs, err := Slice[T](a)
		if err != nil {
			return err
		}
		slices.Sort(xs)
		vm.Push(ArrayVal(ArrayOf(xs...)))
		return nil
	}
}

// row is one element of a 2D array with its decoded key.
type row[T Ordered] struct {
	v   Value
	key []T
}

// SortArray2 stably sorts the rows of a 2D array lexicographically, first
// column first. Rows of different lengths are unordered relative to each
// other, so the stable sort leaves them where it finds them.
func SortArray2[T Ordered]() Instruction {
	return func(vm *VM) error {
		a, err := vm.popArray()
		if err != nil {
			return err
		}
		rows := make([]row[T], a.Len())
		for i := range rows {
			r, err := readArray(a, i)
			if err != nil {
				return err
			}
			key, err := Slice[T](r)
			if err != nil {
				return &ElementError{Index: i, Err: err}
			}
			rows[i] = row[T]{v: a.At(i), key: key}
		}
		slices.SortStableFunc(rows, func(x, y row[T]) int {
			return compareRows(x.key, y.key)
		})
		c := NewArray(len(rows))
		for i, r := range rows {
			c.Set(i, r.v)
		}
		vm.Push(ArrayVal(c))
		return nil
	}
}

// compareRows orders equal-length rows lexicographically and reports
// rows of different lengths as equivalent.
func compareRows[T Ordered](a, b []T) int {
	if len(a) != len(b) {
		return 0
	}
	for j := range a {
		if a[j] < b[j] {
			return -1
		}
		if a[j] > b[j] {
			return 1
		}
	}
	return 0
}
