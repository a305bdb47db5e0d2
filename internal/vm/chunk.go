package vm

// Chunk represents a sequence of bytecode instructions
type Chunk struct {
	// Code is the bytecode instructions
	Code []byte

	// Constants pool - literals and builtin names
	Constants []Value

	// Lines maps bytecode offset to source line number (for errors)
	Lines []int

	// File is the source file name
	File string
}

// NewChunk creates a new empty chunk
func NewChunk() *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 256),
		Constants: make([]Value, 0, 64),
		Lines:     make([]int, 0, 256),
	}
}

// Write adds a byte to the chunk with line info
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp writes an opcode to the chunk
func (c *Chunk) WriteOp(op Opcode, line int) {
	c.Write(byte(op), line)
}

// AddConstant adds a constant to the pool and returns its index
func (c *Chunk) AddConstant(value Value) int {
	c.Constants = append(c.Constants, value)
	return len(c.Constants) - 1
}

// WriteConstant writes OP_CONST followed by the constant index
func (c *Chunk) WriteConstant(value Value, line int) {
	c.writeIndexed(OP_CONST, c.AddConstant(value), line)
}

// WriteCall writes OP_CALL naming a builtin. Names are interned.
func (c *Chunk) WriteCall(name string, line int) {
	idx := -1
	for i, k := range c.Constants {
		if k.Type == ValString && k.AsString() == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		idx = c.AddConstant(StringVal(name))
	}
	c.writeIndexed(OP_CALL, idx, line)
}

func (c *Chunk) writeIndexed(op Opcode, idx, line int) {
	c.WriteOp(op, line)
	// Write index as 2 bytes (allows up to 65535 constants)
	c.Write(byte(idx>>8), line)
	c.Write(byte(idx), line)
}

// ReadConstantIndex reads a 2-byte constant index at offset
func (c *Chunk) ReadConstantIndex(offset int) int {
	return int(c.Code[offset])<<8 | int(c.Code[offset+1])
}

// Len returns the number of bytes in the chunk
func (c *Chunk) Len() int {
	return len(c.Code)
}
