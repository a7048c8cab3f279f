// Package logger holds the process-wide zerolog logger.
//
// Call Init once from main; components that cannot receive a logger through
// their constructor may use Get.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures Init.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Anything else means info.
	Level string
	// Pretty switches stdout to zerolog's console writer.
	Pretty bool
	// Output replaces stdout, mostly for tests.
	Output io.Writer
	// File adds a rotated JSON sink at this path.
	File    string
	Service string
}

// Rotation limits for the optional file sink.
const (
	rotateMaxSizeMB  = 50
	rotateMaxBackups = 5
	rotateMaxAgeDays = 14
)

var (
	mu     sync.Mutex
	global *zerolog.Logger
)

// Init builds the global logger on the first call and returns it on every
// later call, ignoring the new options.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return *global
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	level := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(level)

	fields := zerolog.New(sink(opts)).Level(level).With().Timestamp().Caller()
	if opts.Service != "" {
		fields = fields.Str("service", opts.Service)
	}
	l := fields.Logger()
	global = &l
	return l
}

// Get returns the logger built by Init and panics before that.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if global == nil {
		panic("logger: Get() called before Init()")
	}
	return *global
}

// Reset forgets the global logger. Tests only.
func Reset() {
	mu.Lock()
	global = nil
	mu.Unlock()
}

// sink assembles the writer chain. The rotated file always receives JSON,
// even when stdout is pretty-printed.
func sink(opts Options) io.Writer {
	var console io.Writer = os.Stdout
	if opts.Output != nil {
		console = opts.Output
	}
	if opts.Pretty {
		console = zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}
	}
	if opts.File == "" {
		return console
	}

	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    rotateMaxSizeMB,
		MaxBackups: rotateMaxBackups,
		MaxAge:     rotateMaxAgeDays,
		Compress:   true,
	}
	return zerolog.MultiLevelWriter(console, file)
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	switch lvl, err := zerolog.ParseLevel(s); {
	case err != nil, s == "", lvl > zerolog.ErrorLevel:
		return zerolog.InfoLevel
	default:
		return lvl
	}
}
