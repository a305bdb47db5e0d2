package vm

// SearchArray finds the interval of a sorted array containing a key.
// Stack: A k -> i, where A[i] <= k < A[i+1]. Keys below A[0] give -1,
// keys at or above the last element give n-1, and an empty array gives 0.
// An unsorted A gives an unspecified index.
func SearchArray[T Ordered]() Instruction {
	return func(vm *VM) error {
		key, err := pop[T](vm)
		if err != nil {
			return err
		}
		a, err := vm.popArray()
		if err != nil {
			return err
		}
		i, err := search(a, key)
		if err != nil {
			return err
		}
		vm.Push(IntVal(int64(i)))
		return nil
	}
}

func search[T Ordered](a *Array, key T) (int, error) {
	size := a.Len()
	if size == 0 {
		return 0, nil
	}
	first, err := read[T](a, 0)
	if err != nil {
		return 0, err
	}
	if key < first {
		return -1, nil
	}
	u := size - 1
	last, err := read[T](a, u)
	if err != nil {
		return 0, err
	}
	if key >= last {
		return u, nil
	}

	l := 0
	for l < u {
		i := (l + u) / 2
		lo, err := read[T](a, i)
		if err != nil {
			return 0, err
		}
		hi, err := read[T](a, i+1)
		if err != nil {
			return 0, err
		}
		if lo <= key && key < hi {
			return i, nil
		}
		if key < lo {
			u = i
		} else {
			l = i + 1
		}
	}
	// Only reachable when A is not sorted
	return 0, nil
}
