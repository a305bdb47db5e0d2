package vm

import (
	"errors"
	"fmt"
)

var (
	ErrSizeMismatch   = errors.New("operation attempted on arrays of different lengths")
	ErrEmptyReduction = errors.New("empty array")
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrInterrupted    = errors.New("interrupted")
	ErrNullArray      = errors.New("dereference of null array")
	ErrDivideByZero   = errors.New("divide by zero")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrUnknownBuiltin = errors.New("unknown builtin")
)

var errTruncatedBytecode = errors.New("truncated bytecode")
var errInvalidConstantIndex = errors.New("invalid constant index")

// SizeMismatchError reports operands of an elementwise operation whose
// lengths differ.
type SizeMismatchError struct {
	Left, Right int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("%s: %d != %d", ErrSizeMismatch, e.Left, e.Right)
}

func (e *SizeMismatchError) Unwrap() error { return ErrSizeMismatch }

// TypeMismatchError reports a stack slot whose tag is not the one the
// instruction expects.
type TypeMismatchError struct {
	Want, Got ValueType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", ErrTypeMismatch, e.Want, e.Got)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// ElementError attaches an array index to an error.
type ElementError struct {
	Index int
	Err   error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("array element %d: %v", e.Index, e.Err)
}

func (e *ElementError) Unwrap() error { return e.Err }

func emptyReduction(op string) error {
	return fmt.Errorf("cannot take %s of %w", op, ErrEmptyReduction)
}
