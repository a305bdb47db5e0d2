package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable representation of the bytecode
func Disassemble(chunk *Chunk, name string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("== %s ==\n", name))

	offset := 0
	for offset < len(chunk.Code) {
		offset = disassembleInstruction(&sb, chunk, offset)
	}

	return sb.String()
}

// disassembleInstruction disassembles a single instruction
func disassembleInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	sb.WriteString(fmt.Sprintf("%04d ", offset))

	// Print line number
	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		sb.WriteString("   | ")
	} else {
		sb.WriteString(fmt.Sprintf("%4d ", chunk.Lines[offset]))
	}

	op := Opcode(chunk.Code[offset])

	switch op {
	case OP_CONST, OP_CALL:
		return constantInstruction(sb, OpcodeNames[op], chunk, offset)
	case OP_POP, OP_DUP, OP_RETURN:
		return simpleInstruction(sb, OpcodeNames[op], offset)
	default:
		sb.WriteString(fmt.Sprintf("Unknown opcode %d\n", op))
		return offset + 1
	}
}

func simpleInstruction(sb *strings.Builder, name string, offset int) int {
	sb.WriteString(fmt.Sprintf("%s\n", name))
	return offset + 1
}

func constantInstruction(sb *strings.Builder, name string, chunk *Chunk, offset int) int {
	if offset+2 >= len(chunk.Code) {
		sb.WriteString(fmt.Sprintf("%-16s (truncated)\n", name))
		return len(chunk.Code)
	}
	idx := chunk.ReadConstantIndex(offset + 1)

	if idx < len(chunk.Constants) {
		sb.WriteString(fmt.Sprintf("%-16s %4d '%s'\n", name, idx, chunk.Constants[idx].Inspect()))
	} else {
		sb.WriteString(fmt.Sprintf("%-16s %4d (invalid)\n", name, idx))
	}

	return offset + 3
}
