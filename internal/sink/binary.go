package sink

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/funvibe/arrayvm/internal/geom"
)

// BinaryFile writes raw machine-order scalars. Strings are written as
// their bytes; records have no terminator.
type BinaryFile struct {
	*stream
	enc rawEncoder
}

// XDRFile writes big-endian XDR scalars. Booleans and strings have no
// encoding in this mode.
type XDRFile struct {
	*stream
	enc rawEncoder
}

// rawEncoder packs fixed-width numbers.
type rawEncoder struct {
	order      binary.ByteOrder
	singleReal bool
	singleInt  bool
	scratch    [8]byte
}

func (e *rawEncoder) int(v int64) []byte {
	if e.singleInt {
		e.order.PutUint32(e.scratch[:4], uint32(int32(v)))
		return e.scratch[:4]
	}
	e.order.PutUint64(e.scratch[:8], uint64(v))
	return e.scratch[:8]
}

func (e *rawEncoder) real(v float64) []byte {
	if e.singleReal {
		e.order.PutUint32(e.scratch[:4], math.Float32bits(float32(v)))
		return e.scratch[:4]
	}
	e.order.PutUint64(e.scratch[:8], math.Float64bits(v))
	return e.scratch[:8]
}

// NewBinaryFile creates a native-endian binary sink writing to w.
func NewBinaryFile(name string, w io.Writer, opts ...Option) (*BinaryFile, error) {
	o := buildOptions(opts)
	st, err := newStream(name, w, o)
	if err != nil {
		return nil, err
	}
	b := &BinaryFile{stream: st, enc: rawEncoder{
		order:      binary.NativeEndian,
		singleReal: o.SingleReal,
		singleInt:  o.SingleInt,
	}}
	st.register(b)
	return b, nil
}

func (b *BinaryFile) Text() bool     { return false }
func (b *BinaryFile) Standard() bool { return false }

func (b *BinaryFile) WriteBool(v bool) error {
	if v {
		return b.write([]byte{1})
	}
	return b.write([]byte{0})
}

func (b *BinaryFile) WriteInt(v int64) error    { return b.write(b.enc.int(v)) }
func (b *BinaryFile) WriteReal(v float64) error { return b.write(b.enc.real(v)) }
func (b *BinaryFile) WriteString(v string) error { return b.writeString(v) }
func (b *BinaryFile) WriteLine() error           { return nil }

func (b *BinaryFile) WritePair(v geom.Pair) error {
	if err := b.WriteReal(v.X); err != nil {
		return err
	}
	return b.WriteReal(v.Y)
}

func (b *BinaryFile) WriteTriple(v geom.Triple) error {
	if err := b.WriteReal(v.X); err != nil {
		return err
	}
	if err := b.WriteReal(v.Y); err != nil {
		return err
	}
	return b.WriteReal(v.Z)
}

// NewXDRFile creates an XDR sink writing to w.
func NewXDRFile(name string, w io.Writer, opts ...Option) (*XDRFile, error) {
	o := buildOptions(opts)
	st, err := newStream(name, w, o)
	if err != nil {
		return nil, err
	}
	x := &XDRFile{stream: st, enc: rawEncoder{
		order:      binary.BigEndian,
		singleReal: o.SingleReal,
		singleInt:  o.SingleInt,
	}}
	st.register(x)
	return x, nil
}

func (x *XDRFile) Text() bool     { return false }
func (x *XDRFile) Standard() bool { return false }

func (x *XDRFile) WriteBool(bool) error     { return x.unsupported("bool") }
func (x *XDRFile) WriteString(string) error { return x.unsupported("string") }
func (x *XDRFile) WriteLine() error         { return nil }
func (x *XDRFile) WriteInt(v int64) error   { return x.write(x.enc.int(v)) }
func (x *XDRFile) WriteReal(v float64) error { return x.write(x.enc.real(v)) }

func (x *XDRFile) WritePair(v geom.Pair) error {
	if err := x.WriteReal(v.X); err != nil {
		return err
	}
	return x.WriteReal(v.Y)
}

func (x *XDRFile) WriteTriple(v geom.Triple) error {
	if err := x.WriteReal(v.X); err != nil {
		return err
	}
	if err := x.WriteReal(v.Y); err != nil {
		return err
	}
	return x.WriteReal(v.Z)
}

func (x *XDRFile) unsupported(typ string) error {
	if x.closed {
		return closedError(x.name)
	}
	return unsupported(typ, ModeXDR)
}
