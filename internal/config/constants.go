package config

// Field and record delimiters shared by every text sink.
const (
	Tab     = "\t"
	Newline = "\n"
	// DOSNewline terminates records for the DOSendl suffix.
	DOSNewline = "\r\n"
	Comma      = ","
)

// SettingsFileNames are the names FindSettings looks for, in order.
var SettingsFileNames = []string{"arrayvm.yaml", "arrayvm.yml", "arrayvm.toml"}

// Default values for Settings fields.
const (
	DefaultPrecision        = 6
	DefaultCompressionLevel = 3
)

// Interactive modes for the standard output sink.
const (
	InteractiveAuto   = "auto"
	InteractiveAlways = "always"
	InteractiveNever  = "never"
)

// Compression kinds for file sinks.
const (
	CompressionNone = "none"
	CompressionGzip = "gzip"
	CompressionZstd = "zstd"
	CompressionLZ4  = "lz4"
)
