// Package logger builds the registry's zerolog logger.
//
// Console output is human readable in development and JSON otherwise. When a
// file path is configured every entry is also written, as JSON, to a
// size-rotated file.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 50
	defaultMaxBackups = 5
	defaultMaxAgeDays = 28
)

type Options struct {
	// Level is one of trace, debug, info, warn, error. Anything else means info.
	Level string
	// Pretty switches stdout to zerolog's console format.
	Pretty bool
	// Output replaces os.Stdout, mostly for tests.
	Output io.Writer
	File   FileOptions
}

// FileOptions configures the rotating log file. An empty Path disables it.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds a logger from opts. The closer releases the log file and is
// never nil.
func New(opts Options) (zerolog.Logger, io.Closer) {
	var console io.Writer = os.Stdout
	if opts.Output != nil {
		console = opts.Output
	}
	if opts.Pretty {
		console = zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen}
	}

	var (
		out    = console
		closer io.Closer = nopCloser{}
	)
	if opts.File.Path != "" {
		file := rotatingFile(opts.File)
		out = zerolog.MultiLevelWriter(console, file)
		closer = file
	}

	l := zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Str("service", "energy-registry").
		Logger()
	return l, closer
}

// Init builds the process logger and installs it as zerolog's global logger,
// so that code without an injected logger still writes to the same sinks.
func Init(opts Options) (zerolog.Logger, io.Closer) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	l, closer := New(opts)
	zerolog.SetGlobalLevel(l.GetLevel())
	log.Logger = l
	return l, closer
}

// ParseLevel maps a configured level name to a zerolog level.
func ParseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" || lvl > zerolog.ErrorLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func rotatingFile(opts FileOptions) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    orDefault(opts.MaxSizeMB, defaultMaxSizeMB),
		MaxBackups: orDefault(opts.MaxBackups, defaultMaxBackups),
		MaxAge:     orDefault(opts.MaxAgeDays, defaultMaxAgeDays),
		Compress:   true,
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
