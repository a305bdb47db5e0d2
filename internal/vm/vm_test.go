package vm

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/funvibe/arrayvm/internal/config"
	"github.com/funvibe/arrayvm/internal/sink"
)

// newTestVM returns a VM whose default sink writes to the returned buffer.
func newTestVM(t *testing.T, opts ...sink.Option) (*VM, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	opts = append([]sink.Option{sink.WithInteractive(config.InteractiveNever)}, opts...)
	return New(sink.NewStdoutWriter(&out, opts...)), &out
}

// execInst pushes args, runs inst and returns the single result.
func execInst(t *testing.T, vm *VM, inst Instruction, args ...Value) Value {
	t.Helper()
	for _, a := range args {
		vm.Push(a)
	}
	if err := vm.Exec(inst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vm.Len() != 1 {
		t.Fatalf("expected 1 value on stack, got %d", vm.Len())
	}
	v, _ := vm.Pop()
	return v
}

// execErr pushes args, runs inst and returns its error.
func execErr(t *testing.T, vm *VM, inst Instruction, args ...Value) error {
	t.Helper()
	for _, a := range args {
		vm.Push(a)
	}
	err := vm.Exec(inst)
	if err == nil {
		t.Fatalf("expected an error, instruction succeeded")
	}
	return err
}

// mustSlice decodes an array result.
func mustSlice[T Scalar](t *testing.T, v Value) []T {
	t.Helper()
	if v.Type != ValArray {
		t.Fatalf("expected array, got %s", v.Type)
	}
	xs, err := Slice[T](v.AsArray())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return xs
}

func equalSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// =============================================================================
// Stack
// =============================================================================

func TestPushPop(t *testing.T) {
	vm, _ := newTestVM(t)
	vm.Push(IntVal(1))
	vm.Push(RealVal(2.5))
	if vm.Len() != 2 {
		t.Fatalf("expected 2 values, got %d", vm.Len())
	}
	top, err := vm.Peek(0)
	if err != nil || top.AsReal() != 2.5 {
		t.Fatalf("peek: got %v, %v", top.Inspect(), err)
	}
	v, _ := vm.Pop()
	if v.AsReal() != 2.5 {
		t.Errorf("expected 2.5, got %s", v.Inspect())
	}
	v, _ = vm.Pop()
	if v.AsInt() != 1 {
		t.Errorf("expected 1, got %s", v.Inspect())
	}
	if _, err := vm.Pop(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("expected stack underflow, got %v", err)
	}
}

func TestStackGrows(t *testing.T) {
	vm, _ := newTestVM(t)
	n := InitialStackSize*2 + 3
	for i := 0; i < n; i++ {
		vm.Push(IntVal(int64(i)))
	}
	if vm.Len() != n {
		t.Fatalf("expected %d values, got %d", n, vm.Len())
	}
	v, _ := vm.Peek(n - 1)
	if v.AsInt() != 0 {
		t.Errorf("bottom of stack should be 0, got %s", v.Inspect())
	}
	vm.Reset()
	if vm.Len() != 0 {
		t.Errorf("reset left %d values", vm.Len())
	}
}

func TestUnderflowIsAnError(t *testing.T) {
	vm, _ := newTestVM(t)
	err := execErr(t, vm, SumArray[int64]())
	if !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("expected stack underflow, got %v", err)
	}
}

// =============================================================================
// Typed pops
// =============================================================================

func TestTypeMismatchOnArrayOperand(t *testing.T) {
	vm, _ := newTestVM(t)
	err := execErr(t, vm, SumArray[int64](), IntVal(3))
	var tm *TypeMismatchError
	if !errors.As(err, &tm) {
		t.Fatalf("expected TypeMismatchError, got %v", err)
	}
	if tm.Want != ValArray || tm.Got != ValInt {
		t.Errorf("expected array/int mismatch, got %s/%s", tm.Want, tm.Got)
	}
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("TypeMismatchError should unwrap to ErrTypeMismatch")
	}
}

func TestTypeMismatchOnElement(t *testing.T) {
	vm, _ := newTestVM(t)
	a := NewArrayFrom([]Value{IntVal(1), StringVal("x")})
	err := execErr(t, vm, SumArray[int64](), ArrayVal(a))
	var el *ElementError
	if !errors.As(err, &el) || el.Index != 1 {
		t.Fatalf("expected error at element 1, got %v", err)
	}
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected type mismatch, got %v", err)
	}
	if vm.Len() != 0 {
		t.Errorf("failed instruction pushed a result")
	}
}

func TestNullArray(t *testing.T) {
	tests := []struct {
		name string
		inst Instruction
	}{
		{"sum", SumArray[float64]()},
		{"max", MaxArray[float64]()},
		{"sort", SortArray[float64]()},
		{"negate", ArrayNegate[float64]()},
		{"sqrt", RealArrayFunc(func(x float64) float64 { return x })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm, _ := newTestVM(t)
			err := execErr(t, vm, tt.inst, ArrayVal(nil))
			if !errors.Is(err, ErrNullArray) {
				t.Errorf("expected null array error, got %v", err)
			}
			if !strings.Contains(err.Error(), "dereference of null array") {
				t.Errorf("unexpected message %q", err.Error())
			}
		})
	}
}

// =============================================================================
// Cancellation
// =============================================================================

func TestInterruptFlag(t *testing.T) {
	vm, _ := newTestVM(t)
	vm.Interrupt()
	err := execErr(t, vm, SumArray[int64](), ArrayVal(ArrayOf[int64](1, 2)))
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected interrupted, got %v", err)
	}
	if vm.Len() != 1 {
		t.Errorf("interrupted instruction should not run, stack has %d values", vm.Len())
	}

	vm.ClearInterrupt()
	if err := vm.Exec(SumArray[int64]()); err != nil {
		t.Fatalf("unexpected error after clearing interrupt: %v", err)
	}
	v, _ := vm.Pop()
	if v.AsInt() != 3 {
		t.Errorf("expected 3, got %s", v.Inspect())
	}
}

func TestContextCancellation(t *testing.T) {
	vm, _ := newTestVM(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	vm.SetContext(ctx)

	err := vm.CheckInterrupt()
	if !errors.Is(err, ErrInterrupted) {
		t.Errorf("expected ErrInterrupted, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected the context error to be wrapped, got %v", err)
	}
}

func TestInterruptDuringWrite(t *testing.T) {
	vm, out := newTestVM(t)
	vm.Push(Default())
	vm.Push(ArrayVal(ArrayOf[int64](1, 2, 3)))
	vm.Interrupt()

	// Called directly so the check inside the write loop is the one that fires.
	err := WriteArray[int64]()(vm)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected interrupted, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("no element should be written, got %q", out.String())
	}
}

// =============================================================================
// Bytecode loop
// =============================================================================

func TestRunChunk(t *testing.T) {
	c := NewChunk()
	c.WriteConstant(ArrayVal(ArrayOf(4.0, 9.0, 16.0)), 1)
	c.WriteCall("sqrt(real[])", 2)
	c.WriteOp(OP_DUP, 3)
	c.WriteCall("sum(real[])", 4)
	c.WriteOp(OP_RETURN, 5)

	vm, _ := newTestVM(t)
	result, err := vm.Run(c)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Type != ValReal || result.AsReal() != 9 {
		t.Errorf("expected 9, got %s", result.Inspect())
	}
	if vm.Len() != 2 {
		t.Errorf("expected the sqrt result below the sum, stack has %d", vm.Len())
	}
}

func TestRunEmptyChunk(t *testing.T) {
	vm, _ := newTestVM(t)
	result, err := vm.Run(NewChunk())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.IsDefault() {
		t.Errorf("expected default sentinel, got %s", result.Inspect())
	}
}

func TestRunUnknownBuiltin(t *testing.T) {
	c := NewChunk()
	c.WriteConstant(IntVal(1), 1)
	c.WriteCall("frobnicate(int)", 7)
	c.File = "tape.yaml"

	vm, _ := newTestVM(t)
	_, err := vm.Run(c)
	if !errors.Is(err, ErrUnknownBuiltin) {
		t.Fatalf("expected unknown builtin, got %v", err)
	}
	var re *RuntimeError
	if !errors.As(err, &re) || re.Line != 7 {
		t.Fatalf("expected error on line 7, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "tape.yaml:7: ") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestRunTruncatedBytecode(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OP_CONST, 1)
	c.Write(0, 1)

	vm, _ := newTestVM(t)
	_, err := vm.Run(c)
	if err == nil || !errors.Is(err, errTruncatedBytecode) {
		t.Errorf("expected truncated bytecode, got %v", err)
	}
}

func TestRunPop(t *testing.T) {
	c := NewChunk()
	c.WriteConstant(IntVal(1), 1)
	c.WriteConstant(IntVal(2), 1)
	c.WriteOp(OP_POP, 2)

	vm, _ := newTestVM(t)
	result, err := vm.Run(c)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.AsInt() != 1 {
		t.Errorf("expected 1, got %s", result.Inspect())
	}
}

func TestWriteCallInternsNames(t *testing.T) {
	c := NewChunk()
	c.WriteCall("sum(int[])", 1)
	c.WriteCall("sum(int[])", 2)
	if len(c.Constants) != 1 {
		t.Errorf("expected one interned name, got %d constants", len(c.Constants))
	}
}

func TestDisassemble(t *testing.T) {
	c := NewChunk()
	c.WriteConstant(ArrayVal(ArrayOf[int64](1, 2)), 1)
	c.WriteCall("sum(int[])", 2)
	c.WriteOp(OP_RETURN, 2)

	got := Disassemble(c, "tape")
	want := []string{
		"== tape ==",
		"0000    1 CONST               0 '{1,2}'",
		"0003    2 CALL                1 '\"sum(int[])\"'",
		"0006    | RETURN",
	}
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("disassembly missing %q:\n%s", w, got)
		}
	}
}

func TestRegister(t *testing.T) {
	vm, _ := newTestVM(t)
	if vm.HasBuiltin("answer()") {
		t.Fatalf("answer() should not exist yet")
	}
	vm.Register("answer()", func(vm *VM) error {
		vm.Push(IntVal(42))
		return nil
	})
	if err := vm.Call("answer()"); err != nil {
		t.Fatalf("call: %v", err)
	}
	v, _ := vm.Pop()
	if v.AsInt() != 42 {
		t.Errorf("expected 42, got %s", v.Inspect())
	}

	other, _ := newTestVM(t)
	if other.HasBuiltin("answer()") {
		t.Errorf("registration leaked into another VM")
	}
}

func TestBuiltinNames(t *testing.T) {
	names := BuiltinNames()
	for _, want := range []string{
		"+(real[],real[])", "+(real[],real)", "+(real,real[])",
		"-(real[])", "sum(real[])", "max(int[])", "sort(real[][])",
		"search(real[],real)", "write(real[])", "write(real[][])",
		"write(real[][][])", "write(real,real[])", "writeP(pair,pair[])",
		"sqrt(real[])", "#(int[],int)", "*(pair[],pair[])", "+(string[],string)",
	} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("builtin %q is not registered", want)
		}
	}
}
