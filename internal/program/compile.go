package program

import (
	"fmt"
	"path/filepath"

	"github.com/tliron/commonlog"

	"github.com/funvibe/arrayvm/internal/sink"
	"github.com/funvibe/arrayvm/internal/vm"
)

var log = commonlog.GetLogger("arrayvm.program")

// Compiler turns a tape into a chunk. Sink operands are opened during
// compilation with the compiler's options, relative to BaseDir.
type Compiler struct {
	BaseDir     string
	SinkOptions []sink.Option

	// Known reports whether a builtin exists; nil skips the check.
	Known func(name string) bool
}

// Compile compiles t. file names the tape in error positions.
func (c *Compiler) Compile(t *Tape, file string) (*vm.Chunk, error) {
	chunk := vm.NewChunk()
	chunk.File = file

	for i := range t.Steps {
		st := &t.Steps[i]
		switch {
		case st.Push != nil:
			v, err := st.Push.value(c)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: push: %w", file, st.Line, err)
			}
			chunk.WriteConstant(v, st.Line)
		case st.Call != "":
			if c.Known != nil && !c.Known(st.Call) {
				return nil, fmt.Errorf("%s:%d: %w: %s", file, st.Line, vm.ErrUnknownBuiltin, st.Call)
			}
			chunk.WriteCall(st.Call, st.Line)
		case st.Pop:
			chunk.WriteOp(vm.OP_POP, st.Line)
		case st.Dup:
			chunk.WriteOp(vm.OP_DUP, st.Line)
		}
	}

	line := 0
	if n := len(t.Steps); n > 0 {
		line = t.Steps[n-1].Line
	}
	chunk.WriteOp(vm.OP_RETURN, line)

	log.Debugf("compiled %s: %d steps, %d bytes", file, len(t.Steps), chunk.Len())
	return chunk, nil
}

func (c *Compiler) openSink(spec *SinkSpec) (sink.Sink, error) {
	mode, err := sink.ParseMode(spec.Mode)
	if err != nil {
		return nil, err
	}
	path := spec.Path
	if path != "" && !filepath.IsAbs(path) && c.BaseDir != "" {
		path = filepath.Join(c.BaseDir, path)
	}
	return sink.Open(path, mode, c.SinkOptions...)
}

// CompileFile loads and compiles the tape at path, resolving sink paths
// against the tape's directory.
func CompileFile(path string, known func(string) bool, opts ...sink.Option) (*vm.Chunk, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	c := &Compiler{BaseDir: filepath.Dir(path), SinkOptions: opts, Known: known}
	return c.Compile(t, path)
}
