package sink

import (
	"io"

	"github.com/funvibe/arrayvm/internal/config"
)

// Options configure a sink at creation time.
type Options struct {
	// Precision is the number of significant digits for text reals.
	Precision int
	// SingleReal encodes reals as 32-bit floats (binary and XDR).
	SingleReal bool
	// SingleInt encodes ints as 32-bit integers (binary and XDR).
	SingleInt bool
	// Compression is one of the config.Compression* kinds.
	Compression      string
	CompressionLevel int
	// Registry, when set, tracks the sink until it is closed.
	Registry *Registry

	// Standard output only.
	Input       io.Reader
	Scroll      int
	Interactive string
}

// Option mutates Options.
type Option func(o *Options)

func defaultOptions() Options {
	return Options{
		Precision:        config.DefaultPrecision,
		SingleInt:        true,
		Compression:      config.CompressionNone,
		CompressionLevel: config.DefaultCompressionLevel,
		Interactive:      config.InteractiveAuto,
	}
}

func buildOptions(opts []Option) Options {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func WithPrecision(p int) Option { return func(o *Options) { o.Precision = p } }
func WithSingleReal(b bool) Option { return func(o *Options) { o.SingleReal = b } }
func WithSingleInt(b bool) Option { return func(o *Options) { o.SingleInt = b } }
func WithRegistry(r *Registry) Option { return func(o *Options) { o.Registry = r } }
func WithInput(r io.Reader) Option { return func(o *Options) { o.Input = r } }
func WithScroll(n int) Option { return func(o *Options) { o.Scroll = n } }

// WithCompression compresses file output with the given kind and level.
func WithCompression(kind string, level int) Option {
	return func(o *Options) {
		o.Compression = kind
		o.CompressionLevel = level
	}
}

// WithInteractive forces standard output paging on (always), off (never)
// or leaves it to terminal detection (auto).
func WithInteractive(mode string) Option {
	return func(o *Options) { o.Interactive = mode }
}

// WithSettings applies every sink-related field of s.
func WithSettings(s *config.Settings) Option {
	return func(o *Options) {
		o.Precision = s.Precision
		o.SingleReal = s.SingleReal
		o.SingleInt = s.SingleInts()
		o.Compression = s.Compression
		o.CompressionLevel = s.CompressionLevel
		o.Scroll = s.Scroll
		o.Interactive = s.Interactive
	}
}
