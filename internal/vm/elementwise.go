package vm

// ArrayArrayOp combines two arrays of equal length elementwise.
// Stack: A B -> C with C[i] = op(A[i], B[i], i).
func ArrayArrayOp[T, R Scalar](op Operator[T, R]) Instruction {
	return func(vm *VM) error {
		b, err := vm.popArray()
		if err != nil {
			return err
		}
		a, err := vm.popArray()
		if err != nil {
			return err
		}
		size, err := checkArrays(a, b)
		if err != nil {
			return err
		}
		c := NewArray(size)
		for i := 0; i < size; i++ {
			x, err := read[T](a, i)
			if err != nil {
				return err
			}
			y, err := read[T](b, i)
			if err != nil {
				return err
			}
			r, err := op(x, y, i)
			if err != nil {
				return err
			}
			c.Set(i, ValueOf(r))
		}
		vm.Push(ArrayVal(c))
		return nil
	}
}

// ArrayOp combines each element with a scalar on the right.
// Stack: A b -> C with C[i] = op(A[i], b, i).
func ArrayOp[T, R Scalar](op Operator[T, R]) Instruction {
	return func(vm *VM) error {
		b, err := pop[T](vm)
		if err != nil {
			return err
		}
		a, err := vm.popArray()
		if err != nil {
			return err
		}
		c, err := mapArray(a, func(x T, i int) (R, error) { return op(x, b, i) })
		if err != nil {
			return err
		}
		vm.Push(ArrayVal(c))
		return nil
	}
}

// OpArray combines a scalar on the left with each element.
// Stack: b A -> C with C[i] = op(b, A[i], i).
func OpArray[T, R Scalar](op Operator[T, R]) Instruction {
	return func(vm *VM) error {
		a, err := vm.popArray()
		if err != nil {
			return err
		}
		b, err := pop[T](vm)
		if err != nil {
			return err
		}
		c, err := mapArray(a, func(x T, i int) (R, error) { return op(b, x, i) })
		if err != nil {
			return err
		}
		vm.Push(ArrayVal(c))
		return nil
	}
}

// ArrayNegate negates each element. Stack: A -> -A
func ArrayNegate[T Number]() Instruction {
	return negate(func(x T) T { return -x })
}

// ArrayNegateVector negates each pair or triple.
func ArrayNegateVector[T VectorScalar[T]]() Instruction {
	return negate(func(x T) T { return x.Neg() })
}

func negate[T Scalar](neg func(T) T) Instruction {
	return func(vm *VM) error {
		a, err := vm.popArray()
		if err != nil {
			return err
		}
		c, err := mapArray(a, func(x T, _ int) (T, error) { return neg(x), nil })
		if err != nil {
			return err
		}
		vm.Push(ArrayVal(c))
		return nil
	}
}

// mapArray builds a fresh array from f applied to each element of a.
func mapArray[T, R Scalar](a *Array, f func(x T, i int) (R, error)) (*Array, error) {
	c := NewArray(a.Len())
	for i := 0; i < a.Len(); i++ {
		x, err := read[T](a, i)
		if err != nil {
			return nil, err
		}
		r, err := f(x, i)
		if err != nil {
			return nil, err
		}
		c.Set(i, ValueOf(r))
	}
	return c, nil
}
