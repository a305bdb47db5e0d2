package sink

import (
	"fmt"
	"os"
)

// Open creates path and returns a sink of the given mode writing to it.
func Open(path string, mode Mode, opts ...Option) (Sink, error) {
	if path == "" {
		return nil, fmt.Errorf("cannot open file with empty name")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open file \"%s\": %w", path, err)
	}

	var s Sink
	switch mode {
	case ModeText:
		s, err = NewTextFile(path, f, opts...)
	case ModeBinary:
		s, err = NewBinaryFile(path, f, opts...)
	case ModeXDR:
		s, err = NewXDRFile(path, f, opts...)
	case ModeCBOR:
		s, err = NewCBORFile(path, f, opts...)
	default:
		err = fmt.Errorf("unknown sink mode %q", mode)
	}
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	log.Debugf("opened %s sink %q", mode, path)
	return s, nil
}
