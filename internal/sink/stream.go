package sink

import (
	"bufio"
	"errors"
	"io"

	"github.com/google/uuid"
)

type flusher interface {
	Flush() error
}

// stream is the buffered writer chain shared by file sinks:
// bufio -> optional compressor -> destination.
type stream struct {
	name   string
	bw     *bufio.Writer
	layers []io.Writer // outermost first; flushed and closed in this order
	closed bool

	reg *Registry
	id  uuid.UUID
}

func newStream(name string, w io.Writer, o Options) (*stream, error) {
	s := &stream{name: name, layers: []io.Writer{w}, reg: o.Registry}
	top := w
	if o.Compression != "" {
		c, err := newCompressor(o.Compression, o.CompressionLevel, w)
		if err != nil {
			return nil, err
		}
		if c != nil {
			s.layers = append([]io.Writer{c}, s.layers...)
			top = c
		}
	}
	s.bw = bufio.NewWriter(top)
	return s, nil
}

func (s *stream) Name() string { return s.name }
func (s *stream) IsOpen() bool { return !s.closed }

// register must be called with the concrete sink once it is built.
func (s *stream) register(sk Sink) {
	if s.reg != nil {
		s.id = s.reg.Add(sk)
	}
}

func (s *stream) write(p []byte) error {
	if s.closed {
		return closedError(s.name)
	}
	_, err := s.bw.Write(p)
	return err
}

func (s *stream) writeString(v string) error {
	if s.closed {
		return closedError(s.name)
	}
	_, err := s.bw.WriteString(v)
	return err
}

// Flush pushes buffered bytes through every layer.
func (s *stream) Flush() error {
	if s.closed {
		return nil
	}
	if err := s.bw.Flush(); err != nil {
		return err
	}
	for _, l := range s.layers {
		if f, ok := l.(flusher); ok {
			if err := f.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close flushes and closes every layer that can be closed. Closing twice
// is a no-op.
func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	errs := []error{s.bw.Flush()}
	for _, l := range s.layers {
		if c, ok := l.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	s.closed = true
	if s.reg != nil {
		s.reg.Remove(s.id)
	}
	log.Debugf("closed sink %q", s.name)
	return errors.Join(errs...)
}
