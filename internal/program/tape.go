// Package program loads instruction tapes, YAML lists of push and call
// steps, and compiles them to VM bytecode.
package program

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tape is a program: steps run in order against one operand stack.
type Tape struct {
	Steps []Step `yaml:"steps"`
}

// Step is one tape entry. Exactly one of its fields is set.
type Step struct {
	Push *Operand `yaml:"push,omitempty"`
	Call string   `yaml:"call,omitempty"`
	Pop  bool     `yaml:"pop,omitempty"`
	Dup  bool     `yaml:"dup,omitempty"`

	// Line is the step's line in the tape source.
	Line int `yaml:"-"`
}

// UnmarshalYAML records the source line of the step.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	type plain Step
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Step(p)
	s.Line = node.Line
	return nil
}

func (s *Step) validate() error {
	n := 0
	if s.Push != nil {
		n++
	}
	if s.Call != "" {
		n++
	}
	if s.Pop {
		n++
	}
	if s.Dup {
		n++
	}
	switch n {
	case 1:
		return nil
	case 0:
		return errors.New("empty step")
	default:
		return errors.New("step must have exactly one of push, call, pop, dup")
	}
}

// Load reads a tape file.
func Load(path string) (*Tape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tape %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses tape content from bytes.
// The path argument is used only for error messages.
func Parse(data []byte, path string) (*Tape, error) {
	var t Tape
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for i := range t.Steps {
		if err := t.Steps[i].validate(); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, t.Steps[i].Line, err)
		}
	}
	return &t, nil
}
