package vm

import (
	"errors"
	"strconv"

	"github.com/funvibe/arrayvm/internal/config"
	"github.com/funvibe/arrayvm/internal/geom"
	"github.com/funvibe/arrayvm/internal/sink"
)

// put writes one scalar with the sink's typed primitive.
func put[T Scalar](s sink.Sink, x T) error {
	switch v := any(x).(type) {
	case bool:
		return s.WriteBool(v)
	case int64:
		return s.WriteInt(v)
	case float64:
		return s.WriteReal(v)
	case string:
		return s.WriteString(v)
	case geom.Pair:
		return s.WritePair(v)
	case geom.Triple:
		return s.WriteTriple(v)
	}
	return nil
}

// Write writes an optional label, a leading value and then each element of
// an array, tab-separated in text mode.
// Stack: sink-or-default label-or-default first suffix-or-default A ->
//
// In text mode a suffix is called with the sink pushed; without one the
// default sink ends the line.
func Write[T Scalar]() Instruction {
	return writeValues(pop[T], Slice[T])
}

// WriteP is Write for values held by reference.
func WriteP[T Scalar]() Instruction {
	return writeValues(popRef[T], sliceRefs[T])
}

func writeValues[T Scalar](popFirst func(*VM) (T, error), elems func(*Array) ([]T, error)) Instruction {
	return func(vm *VM) error {
		a, err := vm.popArray()
		if err != nil {
			return err
		}
		suffix, err := vm.popCallable()
		if err != nil {
			return err
		}
		first, err := popFirst(vm)
		if err != nil {
			return err
		}
		label, err := popOr(vm, "")
		if err != nil {
			return err
		}
		s, isDefault, err := vm.popSink()
		if err != nil {
			return err
		}
		if !s.IsOpen() {
			log.Warningf("write to closed file %q ignored", s.Name())
			return nil
		}
		xs, err := elems(a)
		if err != nil {
			return err
		}

		if err := vm.CheckInterrupt(); err != nil {
			return err
		}
		if label != "" {
			if err := s.WriteString(label); err != nil {
				return err
			}
		}
		if err := put(s, first); err != nil {
			return err
		}
		for _, x := range xs {
			if err := vm.CheckInterrupt(); err != nil {
				return err
			}
			if s.Text() {
				if err := s.WriteString(config.Tab); err != nil {
					return err
				}
			}
			if err := put(s, x); err != nil {
				return err
			}
		}

		if !s.Text() {
			return nil
		}
		if suffix != nil {
			vm.Push(SinkVal(s))
			return suffix.Call(vm)
		}
		if isDefault {
			return endOutput(s, s.WriteLine())
		}
		return nil
	}
}

// WriteArray writes one element per line. On the default sink each line
// is prefixed with the element's index.
// Stack: sink-or-default A ->
func WriteArray[T Scalar]() Instruction {
	return func(vm *VM) error {
		a, err := vm.popArray()
		if err != nil {
			return err
		}
		s, isDefault, err := vm.popSink()
		if err != nil {
			return err
		}
		if !beginOutput(s) {
			return nil
		}
		xs, err := Slice[T](a)
		if err != nil {
			return err
		}
		for i, x := range xs {
			if err := writeElement(vm, s, i, x, isDefault); err != nil {
				return endOutput(s, err)
			}
		}
		return endOutput(s, nil)
	}
}

func writeElement[T Scalar](vm *VM, s sink.Sink, i int, x T, indexed bool) error {
	if err := vm.CheckInterrupt(); err != nil {
		return err
	}
	if indexed {
		if err := s.WriteString(strconv.Itoa(i) + ":" + config.Tab); err != nil {
			return err
		}
	}
	if err := put(s, x); err != nil {
		return err
	}
	if s.Text() {
		return s.WriteLine()
	}
	return nil
}

// WriteArray2 writes one row per line, elements tab-separated in text mode.
// Stack: sink-or-default A ->
func WriteArray2[T Scalar]() Instruction {
	return func(vm *VM) error {
		a, err := vm.popArray()
		if err != nil {
			return err
		}
		s, _, err := vm.popSink()
		if err != nil {
			return err
		}
		if !beginOutput(s) {
			return nil
		}
		rows, err := Slice2[T](a)
		if err != nil {
			return err
		}
		for _, r := range rows {
			if err := writeRow(vm, s, r); err != nil {
				return endOutput(s, err)
			}
		}
		return endOutput(s, nil)
	}
}

// WriteArray3 writes each block of rows like WriteArray2, ending every
// block with a blank line in text mode.
// Stack: sink-or-default A ->
func WriteArray3[T Scalar]() Instruction {
	return func(vm *VM) error {
		a, err := vm.popArray()
		if err != nil {
			return err
		}
		s, _, err := vm.popSink()
		if err != nil {
			return err
		}
		if !beginOutput(s) {
			return nil
		}
		blocks, err := Slice3[T](a)
		if err != nil {
			return err
		}
		for _, b := range blocks {
			for _, r := range b {
				if err := writeRow(vm, s, r); err != nil {
					return endOutput(s, err)
				}
			}
			if s.Text() {
				if err := s.WriteLine(); err != nil {
					return endOutput(s, err)
				}
			}
		}
		return endOutput(s, nil)
	}
}

func writeRow[T Scalar](vm *VM, s sink.Sink, r []T) error {
	for j, x := range r {
		if err := vm.CheckInterrupt(); err != nil {
			return err
		}
		if j > 0 && s.Text() {
			if err := s.WriteString(config.Tab); err != nil {
				return err
			}
		}
		if err := put(s, x); err != nil {
			return err
		}
	}
	if s.Text() {
		return s.WriteLine()
	}
	return nil
}

// beginOutput resets the line count of the standard sink and reports
// whether s can be written.
func beginOutput(s sink.Sink) bool {
	if s.Standard() {
		if r, ok := s.(interface{ ResetLines() }); ok {
			r.ResetLines()
		}
		return true
	}
	if !s.IsOpen() {
		log.Warningf("write to closed file %q ignored", s.Name())
		return false
	}
	return true
}

// endOutput flushes s. Quitting the pager ends the output without error.
func endOutput(s sink.Sink, err error) error {
	if errors.Is(err, sink.ErrQuit) {
		log.Debugf("output quit")
		err = nil
	}
	return errors.Join(err, s.Flush())
}
