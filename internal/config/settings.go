// Package config holds process-wide constants and the runtime settings
// that shape sink output.
//
// Settings are read from arrayvm.yaml (gopkg.in/yaml.v3) or arrayvm.toml
// (github.com/BurntSushi/toml); the file extension picks the decoder.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Settings configures how values are rendered and where they go.
type Settings struct {
	// Precision is the number of significant digits for reals in text sinks.
	Precision int `yaml:"precision" toml:"precision"`

	// SingleReal writes reals as 32-bit floats in binary and XDR sinks.
	SingleReal bool `yaml:"singleReal" toml:"singleReal"`

	// SingleInt writes ints as 32-bit integers in binary and XDR sinks.
	// Pointer so an explicit false survives defaulting.
	SingleInt *bool `yaml:"singleInt,omitempty" toml:"singleInt,omitempty"`

	// Scroll pauses interactive standard output every Scroll lines.
	// Zero disables paging.
	Scroll int `yaml:"scroll" toml:"scroll"`

	// Interactive is one of auto, always or never. auto asks the terminal.
	Interactive string `yaml:"interactive,omitempty" toml:"interactive,omitempty"`

	// Compression applies to file sinks: none, gzip, zstd or lz4.
	Compression string `yaml:"compression,omitempty" toml:"compression,omitempty"`

	// CompressionLevel is passed to the compressor (zstd-style 1..22 scale).
	CompressionLevel int `yaml:"compressionLevel,omitempty" toml:"compressionLevel,omitempty"`

	// Verbosity sets the log level: 0 warnings, 1 info, 2 debug.
	Verbosity int `yaml:"verbosity" toml:"verbosity"`
}

// Default returns the settings used when no file is given.
func Default() *Settings {
	s := &Settings{}
	s.setDefaults()
	return s
}

// SingleInts reports the effective SingleInt value.
func (s *Settings) SingleInts() bool {
	return s.SingleInt == nil || *s.SingleInt
}

// LoadSettings reads and parses a settings file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}
	return ParseSettings(data, path)
}

// ParseSettings parses settings content from bytes. The extension of path
// selects TOML or YAML; path is otherwise used only for error messages.
func ParseSettings(data []byte, path string) (*Settings, error) {
	var s Settings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	s.setDefaults()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

// FindSettings searches for a settings file starting from dir and walking
// up to parent directories. It returns "" and a nil error when none exists.
func FindSettings(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range SettingsFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Validate checks the settings for semantic errors.
func (s *Settings) Validate() error {
	if s.Precision < 0 {
		return fmt.Errorf("precision must not be negative, got %d", s.Precision)
	}
	if s.Scroll < 0 {
		return fmt.Errorf("scroll must not be negative, got %d", s.Scroll)
	}
	if s.Verbosity < 0 {
		return fmt.Errorf("verbosity must not be negative, got %d", s.Verbosity)
	}

	switch s.Interactive {
	case InteractiveAuto, InteractiveAlways, InteractiveNever:
	default:
		return fmt.Errorf("interactive: unknown mode %q (want auto, always or never)", s.Interactive)
	}

	switch s.Compression {
	case CompressionNone, CompressionGzip, CompressionZstd, CompressionLZ4:
	default:
		return fmt.Errorf("compression: unknown kind %q (want none, gzip, zstd or lz4)", s.Compression)
	}
	if s.CompressionLevel < 1 || s.CompressionLevel > 22 {
		return fmt.Errorf("compressionLevel must be in 1..22, got %d", s.CompressionLevel)
	}

	return nil
}

// setDefaults fills in default values for omitted fields.
func (s *Settings) setDefaults() {
	if s.Precision == 0 {
		s.Precision = DefaultPrecision
	}
	if s.Interactive == "" {
		s.Interactive = InteractiveAuto
	}
	if s.Compression == "" {
		s.Compression = CompressionNone
	}
	if s.CompressionLevel == 0 {
		s.CompressionLevel = DefaultCompressionLevel
	}
}
