package vm

import (
	"errors"

	"github.com/funvibe/arrayvm/internal/config"
	"github.com/funvibe/arrayvm/internal/sink"
)

// Suffix is a builtin callable that finishes a line written by Write.
// It pops the sink Write pushed.
type Suffix struct {
	name string
	fn   func(s sink.Sink) error
}

func (f *Suffix) Name() string { return f.name }

func (f *Suffix) Call(vm *VM) error {
	s, _, err := vm.popSink()
	if err != nil {
		return err
	}
	if !s.IsOpen() {
		return nil
	}
	err = f.fn(s)
	if errors.Is(err, sink.ErrQuit) {
		return nil
	}
	return err
}

func lineThenFlush(s sink.Sink) error {
	if err := s.WriteLine(); err != nil {
		return err
	}
	return s.Flush()
}

var suffixes = map[string]*Suffix{
	"endl": {name: "endl", fn: lineThenFlush},
	"newl": {name: "newl", fn: func(s sink.Sink) error { return s.WriteLine() }},
	"DOSendl": {name: "DOSendl", fn: func(s sink.Sink) error {
		if err := s.WriteString(config.DOSNewline); err != nil {
			return err
		}
		return s.Flush()
	}},
	"tab":   {name: "tab", fn: func(s sink.Sink) error { return s.WriteString(config.Tab) }},
	"comma": {name: "comma", fn: func(s sink.Sink) error { return s.WriteString(config.Comma) }},
	"flush": {name: "flush", fn: func(s sink.Sink) error { return s.Flush() }},
	"none":  {name: "none", fn: func(sink.Sink) error { return nil }},
}

// LookupSuffix returns the named suffix callable.
func LookupSuffix(name string) (Callable, bool) {
	f, ok := suffixes[name]
	if !ok {
		return nil, false
	}
	return f, true
}

// SuffixNames lists the suffix callables.
func SuffixNames() []string {
	return []string{"endl", "newl", "DOSendl", "tab", "comma", "flush", "none"}
}
