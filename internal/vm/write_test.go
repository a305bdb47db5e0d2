package vm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/funvibe/arrayvm/internal/config"
	"github.com/funvibe/arrayvm/internal/geom"
	"github.com/funvibe/arrayvm/internal/sink"
)

func newTextSink(t *testing.T) (*sink.TextFile, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	f, err := sink.NewTextFile("out.txt", &buf)
	if err != nil {
		t.Fatalf("text file: %v", err)
	}
	return f, &buf
}

func suffix(t *testing.T, name string) Value {
	t.Helper()
	c, ok := LookupSuffix(name)
	if !ok {
		t.Fatalf("no suffix %q", name)
	}
	return CallableVal(c)
}

// runWrite pushes args and runs inst, which must leave the stack empty.
func runWrite(t *testing.T, vm *VM, inst Instruction, args ...Value) {
	t.Helper()
	for _, a := range args {
		vm.Push(a)
	}
	if err := vm.Exec(inst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vm.Len() != 0 {
		t.Fatalf("write left %d values on the stack", vm.Len())
	}
}

// =============================================================================
// writeArray
// =============================================================================

func TestWriteArrayDefaultSinkIndexesLines(t *testing.T) {
	vm, out := newTestVM(t)
	runWrite(t, vm, WriteArray[float64](), Default(), ArrayVal(ArrayOf(1.5, 2.0)))
	if got := out.String(); got != "0:\t1.5\n1:\t2\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestWriteArrayExplicitSink(t *testing.T) {
	vm, out := newTestVM(t)
	f, buf := newTextSink(t)
	runWrite(t, vm, WriteArray[int64](), SinkVal(f), ArrayVal(ArrayOf[int64](1, 2)))
	if got := buf.String(); got != "1\n2\n" {
		t.Errorf("unexpected output %q", got)
	}
	if out.Len() != 0 {
		t.Errorf("default sink written: %q", out.String())
	}
}

func TestWriteArrayResetsLineCount(t *testing.T) {
	vm, _ := newTestVM(t)
	runWrite(t, vm, WriteArray[int64](), Default(), ArrayVal(ArrayOf[int64](1, 2, 3)))
	runWrite(t, vm, WriteArray[int64](), Default(), ArrayVal(ArrayOf[int64](1)))
	if n := vm.Stdout().Lines(); n != 1 {
		t.Errorf("expected 1 line since reset, got %d", n)
	}
}

func TestWriteArrayBinaryHasNoDecoration(t *testing.T) {
	vm, _ := newTestVM(t)
	var buf bytes.Buffer
	f, err := sink.NewBinaryFile("out.bin", &buf)
	if err != nil {
		t.Fatalf("binary file: %v", err)
	}
	runWrite(t, vm, WriteArray[int64](), SinkVal(f), ArrayVal(ArrayOf[int64](7, -1)))

	b := buf.Bytes()
	if len(b) != 8 {
		t.Fatalf("expected two 4-byte ints, got %d bytes", len(b))
	}
	if int32(binary.NativeEndian.Uint32(b[:4])) != 7 || int32(binary.NativeEndian.Uint32(b[4:])) != -1 {
		t.Errorf("unexpected encoding % x", b)
	}
}

func TestWriteArrayQuitEndsOutput(t *testing.T) {
	vm, out := newTestVM(t,
		sink.WithInteractive(config.InteractiveAlways),
		sink.WithScroll(1),
		sink.WithInput(strings.NewReader("q\n")))
	runWrite(t, vm, WriteArray[int64](), Default(), ArrayVal(ArrayOf[int64](10, 20, 30)))

	got := out.String()
	if !strings.HasPrefix(got, "0:\t10\n1:\t20\n") {
		t.Errorf("unexpected output %q", got)
	}
	if !strings.Contains(got, "Type q to quit") {
		t.Errorf("pager prompt missing from %q", got)
	}
	if strings.Contains(got, "30") {
		t.Errorf("output continued after quit: %q", got)
	}
}

// =============================================================================
// writeArray2 and writeArray3
// =============================================================================

func TestWriteArray2(t *testing.T) {
	vm, _ := newTestVM(t)
	f, buf := newTextSink(t)
	runWrite(t, vm, WriteArray2[int64](), SinkVal(f), ArrayVal(ArrayOf2([]int64{1, 2}, []int64{3, 4})))
	if got := buf.String(); got != "1\t2\n3\t4\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestWriteArray2DefaultSinkHasNoIndex(t *testing.T) {
	vm, out := newTestVM(t)
	runWrite(t, vm, WriteArray2[string](), Default(), ArrayVal(ArrayOf2([]string{"a", "b"}, []string{})))
	if got := out.String(); got != "a\tb\n\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestWriteArray3(t *testing.T) {
	vm, _ := newTestVM(t)
	f, buf := newTextSink(t)
	in := ArrayOf3([][]int64{{1, 2}, {3, 4}}, [][]int64{{5}})
	runWrite(t, vm, WriteArray3[int64](), SinkVal(f), ArrayVal(in))
	if got := buf.String(); got != "1\t2\n3\t4\n\n5\n\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestWriteArray2RejectsBadRowBeforeWriting(t *testing.T) {
	vm, _ := newTestVM(t)
	f, buf := newTextSink(t)
	in := NewArrayFrom([]Value{ArrayVal(ArrayOf[int64](1, 2)), ArrayVal(ArrayOf("x"))})
	vm.Push(SinkVal(f))
	vm.Push(ArrayVal(in))
	err := vm.Exec(WriteArray2[int64]())
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	_ = f.Flush()
	if buf.Len() != 0 {
		t.Errorf("partial output written: %q", buf.String())
	}
}

// =============================================================================
// Closed sinks
// =============================================================================

func TestWriteToClosedSinkIsNoOp(t *testing.T) {
	tests := []struct {
		name string
		inst Instruction
		args func(s Value) []Value
	}{
		{"writeArray", WriteArray[int64](), func(s Value) []Value {
			return []Value{s, ArrayVal(ArrayOf[int64](1))}
		}},
		{"writeArray2", WriteArray2[int64](), func(s Value) []Value {
			return []Value{s, ArrayVal(ArrayOf2([]int64{1}))}
		}},
		{"writeArray3", WriteArray3[int64](), func(s Value) []Value {
			return []Value{s, ArrayVal(ArrayOf3([][]int64{{1}}))}
		}},
		{"write", Write[int64](), func(s Value) []Value {
			return []Value{s, Default(), IntVal(1), Default(), ArrayVal(ArrayOf[int64](2))}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm, _ := newTestVM(t)
			f, buf := newTextSink(t)
			if err := f.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}
			runWrite(t, vm, tt.inst, tt.args(SinkVal(f))...)
			if buf.Len() != 0 {
				t.Errorf("closed sink written: %q", buf.String())
			}
		})
	}
}

func TestWriteToClosedSinkStillChecksNull(t *testing.T) {
	vm, _ := newTestVM(t)
	f, _ := newTextSink(t)
	_ = f.Close()
	err := execErr(t, vm, WriteArray[int64](), SinkVal(f), ArrayVal(nil))
	if !errors.Is(err, ErrNullArray) {
		t.Errorf("expected null array, got %v", err)
	}
}

// =============================================================================
// write
// =============================================================================

func TestWriteDefaultSinkEndsLine(t *testing.T) {
	vm, out := newTestVM(t)
	runWrite(t, vm, Write[float64](),
		Default(), StringVal("x="), RealVal(1), Default(), ArrayVal(ArrayOf(2.0, 3.5)))
	if got := out.String(); got != "x=1\t2\t3.5\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestWriteExplicitSinkLeavesLineOpen(t *testing.T) {
	vm, _ := newTestVM(t)
	f, buf := newTextSink(t)
	runWrite(t, vm, Write[int64](),
		SinkVal(f), Default(), IntVal(1), Default(), ArrayVal(ArrayOf[int64](2)))
	_ = f.Flush()
	if got := buf.String(); got != "1\t2" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestWriteSuffixes(t *testing.T) {
	tests := []struct {
		suffix string
		want   string
	}{
		{"endl", "1\t2\n"},
		{"newl", "1\t2\n"},
		{"DOSendl", "1\t2\r\n"},
		{"tab", "1\t2\t"},
		{"comma", "1\t2,"},
		{"flush", "1\t2"},
		{"none", "1\t2"},
	}
	for _, tt := range tests {
		t.Run(tt.suffix, func(t *testing.T) {
			vm, _ := newTestVM(t)
			f, buf := newTextSink(t)
			runWrite(t, vm, Write[int64](),
				SinkVal(f), Default(), IntVal(1), suffix(t, tt.suffix), ArrayVal(ArrayOf[int64](2)))
			_ = f.Flush()
			if got := buf.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWriteSuffixOnDefaultSink(t *testing.T) {
	vm, out := newTestVM(t)
	runWrite(t, vm, Write[string](),
		Default(), Default(), StringVal("a"), suffix(t, "comma"), ArrayVal(ArrayOf[string]()))
	_ = vm.Stdout().Flush()
	if got := out.String(); got != "a," {
		t.Errorf("suffix should replace the line end, got %q", got)
	}
}

func TestWriteBinarySkipsSeparators(t *testing.T) {
	vm, _ := newTestVM(t)
	var buf bytes.Buffer
	f, err := sink.NewBinaryFile("out.bin", &buf)
	if err != nil {
		t.Fatalf("binary file: %v", err)
	}
	runWrite(t, vm, Write[int64](),
		SinkVal(f), Default(), IntVal(1), suffix(t, "endl"), ArrayVal(ArrayOf[int64](2, 3)))
	_ = f.Flush()
	if buf.Len() != 12 {
		t.Errorf("expected three 4-byte ints and nothing else, got % x", buf.Bytes())
	}
}

func TestWriteUnsupportedOnXDR(t *testing.T) {
	vm, _ := newTestVM(t)
	var buf bytes.Buffer
	f, err := sink.NewXDRFile("out.xdr", &buf)
	if err != nil {
		t.Fatalf("xdr file: %v", err)
	}
	err = execErr(t, vm, Write[bool](), SinkVal(f), Default(), BoolVal(true), Default(), ArrayVal(NewArray(0)))
	if !errors.Is(err, sink.ErrUnsupported) {
		t.Errorf("expected unsupported, got %v", err)
	}
}

func TestWriteP(t *testing.T) {
	vm, out := newTestVM(t)
	first := geom.Pair{X: 1, Y: 2}
	second := geom.Pair{X: 3, Y: 4}
	refs := NewArrayFrom([]Value{RefOf(&second)})
	runWrite(t, vm, WriteP[geom.Pair](), Default(), Default(), RefOf(&first), Default(), ArrayVal(refs))
	if got := out.String(); got != "(1,2)\t(3,4)\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestWritePRejectsInlineValues(t *testing.T) {
	vm, _ := newTestVM(t)
	err := execErr(t, vm, WriteP[float64](), Default(), Default(), RealVal(1), Default(), ArrayVal(NewArray(0)))
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected type mismatch, got %v", err)
	}
}

func TestWriteBoolText(t *testing.T) {
	vm, out := newTestVM(t)
	runWrite(t, vm, WriteArray2[bool](), Default(), ArrayVal(ArrayOf2([]bool{true, false})))
	if got := out.String(); got != "true \tfalse \n" {
		t.Errorf("unexpected output %q", got)
	}
}
