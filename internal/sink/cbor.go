package sink

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/funvibe/arrayvm/internal/geom"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("sink: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// CBORFile writes every scalar as one CBOR data item. Pairs and triples
// become arrays of two or three floats.
type CBORFile struct {
	*stream
	enc *cbor.Encoder
}

// NewCBORFile creates a CBOR sink writing to w.
func NewCBORFile(name string, w io.Writer, opts ...Option) (*CBORFile, error) {
	o := buildOptions(opts)
	st, err := newStream(name, w, o)
	if err != nil {
		return nil, err
	}
	c := &CBORFile{stream: st, enc: cborEncMode.NewEncoder(st.bw)}
	st.register(c)
	return c, nil
}

func (c *CBORFile) Text() bool     { return false }
func (c *CBORFile) Standard() bool { return false }
func (c *CBORFile) WriteLine() error { return nil }

func (c *CBORFile) encode(v any) error {
	if c.closed {
		return closedError(c.name)
	}
	return c.enc.Encode(v)
}

func (c *CBORFile) WriteBool(v bool) error          { return c.encode(v) }
func (c *CBORFile) WriteInt(v int64) error          { return c.encode(v) }
func (c *CBORFile) WriteReal(v float64) error       { return c.encode(v) }
func (c *CBORFile) WriteString(v string) error      { return c.encode(v) }
func (c *CBORFile) WritePair(v geom.Pair) error     { return c.encode([2]float64{v.X, v.Y}) }
func (c *CBORFile) WriteTriple(v geom.Triple) error { return c.encode([3]float64{v.X, v.Y, v.Z}) }
