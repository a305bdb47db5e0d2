package vm

// SumArray pushes the sum of the elements, 0 for an empty array.
func SumArray[T Number]() Instruction {
	return sum(func(acc, x T) T { return acc + x })
}

// SumArrayVector pushes the componentwise sum of pairs or triples.
func SumArrayVector[T VectorScalar[T]]() Instruction {
	return sum(func(acc, x T) T { return acc.Add(x) })
}

func sum[T Scalar](add func(acc, x T) T) Instruction {
	return func(vm *VM) error {
		a, err := vm.popArray()
		if err != nil {
			return err
		}
		var acc T
		for i := 0; i < a.Len(); i++ {
			x, err := read[T](a, i)
			if err != nil {
				return err
			}
			acc = add(acc, x)
		}
		vm.Push(ValueOf(acc))
		return nil
	}
}

// MaxArray pushes the largest element; ties keep the first.
func MaxArray[T Ordered]() Instruction {
	return extremum("max", func(x, m T) bool { return x > m })
}

// MinArray pushes the smallest element; ties keep the first.
func MinArray[T Ordered]() Instruction {
	return extremum("min", func(x, m T) bool { return x < m })
}

func extremum[T Ordered](name string, better func(x, m T) bool) Instruction {
	return func(vm *VM) error {
		a, err := vm.popArray()
		if err != nil {
			return err
		}
		if a.Len() == 0 {
			return emptyReduction(name)
		}
		m, err := read[T](a, 0)
		if err != nil {
			return err
		}
		for i := 1; i < a.Len(); i++ {
			x, err := read[T](a, i)
			if err != nil {
				return err
			}
			if better(x, m) {
				m = x
			}
		}
		vm.Push(ValueOf(m))
		return nil
	}
}
