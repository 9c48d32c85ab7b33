// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hospital/hms/internal/config"
)

// New returns a zerolog.Logger writing JSON to stdout (a console writer in
// development) and, when LOG_FILE is set, to a size-rotated file as well.
// The returned closer releases the file handle and is never nil.
func New(cfg *config.Config) (zerolog.Logger, io.Closer) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var stdout io.Writer = os.Stdout
	if cfg.IsDev() {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	writers := []io.Writer{stdout}
	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogFileMaxSizeMB,
			MaxBackups: cfg.LogFileMaxBackups,
			MaxAge:     cfg.LogFileMaxAgeDays,
			Compress:   true,
		}
		writers = append(writers, file)
		closer = file
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("service", "hms").
		Str("env", cfg.Env).
		Logger()
	return logger, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
