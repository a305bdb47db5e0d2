package sink

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/arrayvm/internal/config"
	"github.com/funvibe/arrayvm/internal/geom"
)

const scrollPrompt = "Type q to quit the output; any other key to continue: "

// Stdout is the default sink. It is always open, always text, and counts
// the lines it terminates so interactive sessions can page long output.
type Stdout struct {
	out         *bufio.Writer
	in          *bufio.Reader
	precision   int
	scroll      int
	interactive bool
	lines       int
}

// NewStdout creates the default sink over os.Stdout.
func NewStdout(opts ...Option) *Stdout {
	return NewStdoutWriter(os.Stdout, opts...)
}

// NewStdoutWriter creates a default sink over w. Interactive auto mode is
// only ever true when w is a terminal.
func NewStdoutWriter(w io.Writer, opts ...Option) *Stdout {
	o := buildOptions(opts)
	in := o.Input
	if in == nil {
		in = os.Stdin
	}
	return &Stdout{
		out:         bufio.NewWriter(w),
		in:          bufio.NewReader(in),
		precision:   o.Precision,
		scroll:      o.Scroll,
		interactive: interactive(o.Interactive, w),
	}
}

func interactive(mode string, w io.Writer) bool {
	switch mode {
	case config.InteractiveAlways:
		return true
	case config.InteractiveNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (s *Stdout) Name() string   { return "" }
func (s *Stdout) IsOpen() bool   { return true }
func (s *Stdout) Text() bool     { return true }
func (s *Stdout) Standard() bool { return true }

// Interactive reports whether output is paged.
func (s *Stdout) Interactive() bool { return s.interactive }

// Lines returns the number of lines terminated since the last reset.
func (s *Stdout) Lines() int { return s.lines }

// ResetLines restarts the paging count.
func (s *Stdout) ResetLines() { s.lines = 0 }

// SetPrecision changes the number of significant digits for reals.
func (s *Stdout) SetPrecision(p int) { s.precision = p }

func (s *Stdout) str(v string) error {
	_, err := s.out.WriteString(v)
	return err
}

func (s *Stdout) WriteBool(v bool) error          { return s.str(formatBool(v)) }
func (s *Stdout) WriteInt(v int64) error          { return s.str(strconv.FormatInt(v, 10)) }
func (s *Stdout) WriteReal(v float64) error       { return s.str(geom.FormatReal(v, s.precision)) }
func (s *Stdout) WritePair(v geom.Pair) error     { return s.str(v.Format(s.precision)) }
func (s *Stdout) WriteTriple(v geom.Triple) error { return s.str(v.Format(s.precision)) }
func (s *Stdout) WriteString(v string) error      { return s.str(v) }

// WriteLine terminates the line. In interactive mode, every scroll lines
// the user is asked whether to continue; answering q returns ErrQuit.
func (s *Stdout) WriteLine() error {
	if s.interactive && s.scroll > 0 && s.lines > 0 && s.lines%s.scroll == 0 {
		if err := s.page(); err != nil {
			return err
		}
	} else if err := s.str(config.Newline); err != nil {
		return err
	}
	s.lines++
	return nil
}

func (s *Stdout) page() error {
	if err := s.str(config.Newline + scrollPrompt); err != nil {
		return err
	}
	if err := s.out.Flush(); err != nil {
		return err
	}
	answer, err := s.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	if strings.HasPrefix(strings.TrimSpace(answer), "q") {
		s.lines = 0
		return ErrQuit
	}
	return nil
}

func (s *Stdout) Flush() error { return s.out.Flush() }

// Close flushes; standard output is never closed.
func (s *Stdout) Close() error { return s.out.Flush() }
