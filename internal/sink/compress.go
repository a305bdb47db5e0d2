package sink

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/funvibe/arrayvm/internal/config"
)

// newCompressor wraps w according to kind. It returns nil for "none".
func newCompressor(kind string, level int, w io.Writer) (io.WriteCloser, error) {
	switch kind {
	case config.CompressionNone:
		return nil, nil
	case config.CompressionZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd compressor: %w", err)
		}
		return enc, nil
	case config.CompressionGzip:
		if level > gzip.BestCompression {
			level = gzip.BestCompression
		}
		gw, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip compressor: %w", err)
		}
		return gw, nil
	case config.CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown compression %q", kind)
	}
}
