package sink

import (
	"io"
	"strconv"

	"github.com/funvibe/arrayvm/internal/config"
	"github.com/funvibe/arrayvm/internal/geom"
)

// TextFile writes human-readable output.
type TextFile struct {
	*stream
	precision int
}

// NewTextFile creates a text sink writing to w.
func NewTextFile(name string, w io.Writer, opts ...Option) (*TextFile, error) {
	o := buildOptions(opts)
	st, err := newStream(name, w, o)
	if err != nil {
		return nil, err
	}
	t := &TextFile{stream: st, precision: o.Precision}
	st.register(t)
	return t, nil
}

func (t *TextFile) Text() bool     { return true }
func (t *TextFile) Standard() bool { return false }

// SetPrecision changes the number of significant digits for reals.
func (t *TextFile) SetPrecision(p int) { t.precision = p }

func (t *TextFile) WriteBool(v bool) error          { return t.writeString(formatBool(v)) }
func (t *TextFile) WriteInt(v int64) error          { return t.writeString(strconv.FormatInt(v, 10)) }
func (t *TextFile) WriteReal(v float64) error       { return t.writeString(geom.FormatReal(v, t.precision)) }
func (t *TextFile) WritePair(v geom.Pair) error     { return t.writeString(v.Format(t.precision)) }
func (t *TextFile) WriteTriple(v geom.Triple) error { return t.writeString(v.Format(t.precision)) }
func (t *TextFile) WriteString(v string) error      { return t.writeString(v) }
func (t *TextFile) WriteLine() error                { return t.writeString(config.Newline) }

// formatBool renders v with a trailing blank.
func formatBool(v bool) string {
	if v {
		return "true "
	}
	return "false "
}
