package dnsbench

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewRequestLogger opens the file at path for appending and returns logger writing one JSON event per sample into it.
// The returned closer must be closed once logging is finished.
func NewRequestLogger(path string) (*zerolog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create request log file '%s': %w", path, err)
	}
	logger := zerolog.New(f).With().Timestamp().Logger()
	return &logger, f, nil
}

func logSample(logger *zerolog.Logger, suite, benchmark string, s Sample) {
	var ev *zerolog.Event
	if s.Failed() {
		ev = logger.Warn().Err(s.Err).Str("kind", string(kindOf(s.Err)))
	} else {
		ev = logger.Info()
	}
	ev.Str("suite", suite).
		Str("benchmark", benchmark).
		Time("start", s.Start).
		Dur("duration", s.Duration).
		Msg("sample")
}
