// Package sink implements the write destinations array instructions
// serialize into: the default standard output, text files, native binary
// files, XDR files and CBOR files.
//
// Every backend satisfies Sink. Text sinks decorate output with field
// separators and line terminators; binary and structured sinks skip that
// decoration and encode scalars only.
package sink

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/funvibe/arrayvm/internal/geom"
)

var log = commonlog.GetLogger("arrayvm.sink")

var (
	// ErrClosed is returned by writes against a closed sink.
	ErrClosed = errors.New("I/O operation attempted on closed file")
	// ErrUnsupported is returned when a backend cannot encode a scalar type.
	ErrUnsupported = errors.New("write not supported")
	// ErrQuit is returned when the user quits paged standard output.
	ErrQuit = errors.New("output quit")
)

// Sink is an abstract destination for serialized values.
type Sink interface {
	// Name is the file name, or "" for standard output.
	Name() string
	IsOpen() bool
	// Text reports whether output is human readable.
	Text() bool
	// Standard reports whether this is the process's standard output.
	Standard() bool

	WriteBool(v bool) error
	WriteInt(v int64) error
	WriteReal(v float64) error
	WritePair(v geom.Pair) error
	WriteTriple(v geom.Triple) error
	WriteString(v string) error

	// WriteLine terminates the current record.
	WriteLine() error
	Flush() error
	Close() error
}

var (
	_ Sink = (*Stdout)(nil)
	_ Sink = (*TextFile)(nil)
	_ Sink = (*BinaryFile)(nil)
	_ Sink = (*XDRFile)(nil)
	_ Sink = (*CBORFile)(nil)
)

// Mode selects the encoding of a file sink.
type Mode string

const (
	ModeText   Mode = "text"
	ModeBinary Mode = "binary"
	ModeXDR    Mode = "xdr"
	ModeCBOR   Mode = "cbor"
)

// ParseMode converts a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeText, ModeBinary, ModeXDR, ModeCBOR:
		return m, nil
	case "":
		return ModeText, nil
	default:
		return "", fmt.Errorf("unknown sink mode %q", s)
	}
}

func unsupported(typ string, mode Mode) error {
	return fmt.Errorf("%w: write of type %s not supported in %s mode", ErrUnsupported, typ, mode)
}

func closedError(name string) error {
	if name == "" {
		return fmt.Errorf("%w: null file", ErrClosed)
	}
	return fmt.Errorf("%w '%s'", ErrClosed, name)
}
