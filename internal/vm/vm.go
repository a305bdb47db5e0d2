package vm

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/tliron/commonlog"

	"github.com/funvibe/arrayvm/internal/sink"
)

var log = commonlog.GetLogger("arrayvm.vm")

// Initial size of the operand stack
const InitialStackSize = 256

// Growth increment when the stack needs to expand
const StackGrowthIncrement = 256

// Maximum operand stack size to prevent OOM
const MaxStackSize = 1024 * 1024 // 1M elements

// Instruction is one array instruction: it pops its operands, does its
// work and pushes at most one result.
type Instruction func(vm *VM) error

// Callable is a value that can be invoked with the VM's stack, such as
// the suffix passed to write.
type Callable interface {
	Call(vm *VM) error
	Name() string
}

// VM holds the operand stack and the context the array instructions run in.
type VM struct {
	stack []Value
	sp    int

	// stdout is the sink the default-sink token resolves to.
	stdout *sink.Stdout

	ctx         context.Context
	interrupted atomic.Bool

	builtins map[string]Instruction

	chunk *Chunk
	ip    int
}

// New creates a VM writing default-sink output to stdout.
// A nil stdout means the process's standard output.
func New(stdout *sink.Stdout) *VM {
	if stdout == nil {
		stdout = sink.NewStdout()
	}
	return &VM{
		stack:    make([]Value, InitialStackSize),
		stdout:   stdout,
		ctx:      context.Background(),
		builtins: builtinTable(),
	}
}

// SetContext sets the context whose cancellation interrupts execution.
func (vm *VM) SetContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	vm.ctx = ctx
}

// Stdout returns the default sink.
func (vm *VM) Stdout() *sink.Stdout { return vm.stdout }

// Interrupt raises the interrupt flag. It is safe to call from another
// goroutine; the VM notices it at its next cancellation point.
func (vm *VM) Interrupt() { vm.interrupted.Store(true) }

// ClearInterrupt lowers the interrupt flag.
func (vm *VM) ClearInterrupt() { vm.interrupted.Store(false) }

// CheckInterrupt is the cooperative cancellation point.
func (vm *VM) CheckInterrupt() error {
	if vm.interrupted.Load() {
		return ErrInterrupted
	}
	if err := vm.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	return nil
}

// Stack

// Push pushes v. It panics with ErrStackOverflow past MaxStackSize;
// Exec and Run recover that panic into an error.
func (vm *VM) Push(v Value) {
	if vm.sp >= len(vm.stack) {
		if vm.sp >= MaxStackSize {
			panic(ErrStackOverflow)
		}
		// Grow by increment or double, whichever is larger
		growBy := StackGrowthIncrement
		if len(vm.stack) > growBy {
			growBy = len(vm.stack)
		}
		newStack := make([]Value, len(vm.stack)+growBy)
		copy(newStack, vm.stack[:vm.sp])
		vm.stack = newStack
	}
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) Pop() (Value, error) {
	if vm.sp <= 0 {
		return Value{}, ErrStackUnderflow
	}
	vm.sp--
	v := vm.stack[vm.sp]
	vm.stack[vm.sp] = Value{}
	return v, nil
}

func (vm *VM) Peek(distance int) (Value, error) {
	idx := vm.sp - 1 - distance
	if idx < 0 || idx >= vm.sp {
		return Value{}, ErrStackUnderflow
	}
	return vm.stack[idx], nil
}

// Len returns the number of values on the stack.
func (vm *VM) Len() int { return vm.sp }

// Reset empties the stack.
func (vm *VM) Reset() {
	clear(vm.stack[:vm.sp])
	vm.sp = 0
}

// Typed pops. Each is a checked downcast of the top slot.

func pop[T Scalar](vm *VM) (T, error) {
	v, err := vm.Pop()
	if err != nil {
		var zero T
		return zero, err
	}
	return As[T](v)
}

// popOr pops an optional T, returning def for the default sentinel.
func popOr[T Scalar](vm *VM, def T) (T, error) {
	v, err := vm.Pop()
	if err != nil {
		return def, err
	}
	if v.IsDefault() {
		return def, nil
	}
	return As[T](v)
}

// popRef pops a reference and reads the T behind it.
func popRef[T Scalar](vm *VM) (T, error) {
	v, err := vm.Pop()
	if err != nil {
		var zero T
		return zero, err
	}
	return deref[T](v)
}

// popArray pops a non-null array.
func (vm *VM) popArray() (*Array, error) {
	v, err := vm.Pop()
	if err != nil {
		return nil, err
	}
	if v.Type != ValArray {
		return nil, &TypeMismatchError{Want: ValArray, Got: v.Type}
	}
	a := v.AsArray()
	if a == nil {
		return nil, ErrNullArray
	}
	return a, nil
}

// popCallable pops an optional callable; the default sentinel yields nil.
func (vm *VM) popCallable() (Callable, error) {
	v, err := vm.Pop()
	if err != nil {
		return nil, err
	}
	switch v.Type {
	case ValDefault:
		return nil, nil
	case ValCallable:
		return v.AsCallable(), nil
	default:
		return nil, &TypeMismatchError{Want: ValCallable, Got: v.Type}
	}
}

// popSink pops a sink or the default-sink token. isDefault reports
// whether the token was popped, in which case s is the standard output.
func (vm *VM) popSink() (s sink.Sink, isDefault bool, err error) {
	v, err := vm.Pop()
	if err != nil {
		return nil, false, err
	}
	switch v.Type {
	case ValDefault:
		return vm.stdout, true, nil
	case ValSink:
		if s := v.AsSink(); s != nil {
			return s, false, nil
		}
		return nil, false, &TypeMismatchError{Want: ValSink, Got: ValDefault}
	default:
		return nil, false, &TypeMismatchError{Want: ValSink, Got: v.Type}
	}
}

// Exec runs a single instruction against the stack.
func (vm *VM) Exec(inst Instruction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && errors.Is(e, ErrStackOverflow) {
				err = e
				return
			}
			panic(r) // Re-panic other errors
		}
	}()

	if err := vm.CheckInterrupt(); err != nil {
		return err
	}
	return inst(vm)
}

// Call runs the builtin registered under name.
func (vm *VM) Call(name string) error {
	inst, ok := vm.builtins[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBuiltin, name)
	}
	log.Debugf("call %s (stack %d)", name, vm.sp)
	return vm.Exec(inst)
}

// Register adds or replaces a builtin on this VM only.
func (vm *VM) Register(name string, inst Instruction) {
	if vm.builtins == nil {
		vm.builtins = make(map[string]Instruction)
	}
	vm.builtins[name] = inst
}

// HasBuiltin reports whether name is callable.
func (vm *VM) HasBuiltin(name string) bool {
	_, ok := vm.builtins[name]
	return ok
}

// Run executes chunk and returns the value left on top of the stack,
// or the default sentinel if the stack is empty.
func (vm *VM) Run(chunk *Chunk) (result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && (e == errTruncatedBytecode || e == errInvalidConstantIndex) {
				err = vm.formatError(e)
				return
			}
			panic(r)
		}
	}()

	vm.chunk = chunk
	vm.ip = 0

	for {
		done, err := vm.step()
		if err != nil {
			return Value{}, vm.formatError(err)
		}
		if done {
			break
		}
	}

	if vm.sp == 0 {
		return Default(), nil
	}
	return vm.stack[vm.sp-1], nil
}

func (vm *VM) step() (done bool, err error) {
	if vm.ip >= len(vm.chunk.Code) {
		// Falling off the end is an implicit return
		return true, nil
	}

	op := Opcode(vm.chunk.Code[vm.ip])
	vm.ip++

	switch op {
	case OP_CONST:
		v := vm.readConstant()
		return false, vm.Exec(func(vm *VM) error {
			vm.Push(v)
			return nil
		})

	case OP_CALL:
		name := vm.readConstant()
		if name.Type != ValString {
			return false, &TypeMismatchError{Want: ValString, Got: name.Type}
		}
		return false, vm.Call(name.AsString())

	case OP_POP:
		_, err := vm.Pop()
		return false, err

	case OP_DUP:
		v, err := vm.Peek(0)
		if err != nil {
			return false, err
		}
		return false, vm.Exec(func(vm *VM) error {
			vm.Push(v)
			return nil
		})

	case OP_RETURN:
		return true, nil

	default:
		return false, fmt.Errorf("unknown opcode %d", op)
	}
}

// Read helpers
func (vm *VM) readByte() byte {
	if vm.ip >= len(vm.chunk.Code) {
		panic(errTruncatedBytecode)
	}
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readConstant() Value {
	high := vm.readByte()
	low := vm.readByte()
	idx := int(high)<<8 | int(low)
	if idx >= len(vm.chunk.Constants) {
		panic(errInvalidConstantIndex)
	}
	return vm.chunk.Constants[idx]
}

// formatError locates err at the source line of the last byte read.
// Lines has one entry per code byte.
func (vm *VM) formatError(err error) error {
	at := vm.ip - 1
	if at < 0 {
		at = 0
	}
	if at < len(vm.chunk.Lines) {
		return &RuntimeError{Line: vm.chunk.Lines[at], File: vm.chunk.File, Err: err}
	}
	return err
}

// RuntimeError is an instruction failure located in a chunk.
type RuntimeError struct {
	File string
	Line int
	Err  error
}

func (e *RuntimeError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }
