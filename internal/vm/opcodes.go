// Package vm implements the array instructions of a stack virtual machine
// together with the operand stack, value model and a small bytecode loop
// that drives them.
package vm

// Opcode represents a single VM instruction
type Opcode byte

const (
	// Stack manipulation
	OP_CONST Opcode = iota // Push constant from pool
	OP_POP                 // Discard top of stack
	OP_DUP                 // Duplicate top of stack

	// Calls
	OP_CALL   // Call builtin named by constant operand
	OP_RETURN // Stop, leaving the result on top of stack
)

// OpcodeNames maps opcodes to their string names (for debugging)
var OpcodeNames = map[Opcode]string{
	OP_CONST:  "CONST",
	OP_POP:    "POP",
	OP_DUP:    "DUP",
	OP_CALL:   "CALL",
	OP_RETURN: "RETURN",
}
