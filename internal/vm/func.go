package vm

// RealArrayFunc applies f to every element, read as a real. Int elements
// are converted. Stack: A -> f(A)
func RealArrayFunc(f func(float64) float64) Instruction {
	return func(vm *VM) error {
		a, err := vm.popArray()
		if err != nil {
			return err
		}
		c := NewArray(a.Len())
		for i := 0; i < a.Len(); i++ {
			x, err := readReal(a, i)
			if err != nil {
				return err
			}
			c.Set(i, RealVal(f(x)))
		}
		vm.Push(ArrayVal(c))
		return nil
	}
}

// readReal reads element i as a real, widening ints.
func readReal(a *Array, i int) (float64, error) {
	v := a.At(i)
	if v.Type == ValInt {
		return float64(v.AsInt()), nil
	}
	return read[float64](a, i)
}
