// Package logger builds the zerolog loggers used across the portal.
//
// The server calls Init once from its entry point; code that may run before
// that (CLI helpers, tests) asks for OrNop instead of Get.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options selects the output format and verbosity.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Anything else means info.
	Level string
	// Pretty switches to the coloured console writer. Production keeps JSON.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service, when set, is added to every entry.
	Service string
}

var (
	mu      sync.Mutex
	current *zerolog.Logger
)

// New returns a logger for opts without touching the process-wide one.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	fields := zerolog.New(out).Level(parseLevel(opts.Level)).With().Timestamp()
	if opts.Service != "" {
		fields = fields.Str("service", opts.Service)
	}
	return fields.Logger()
}

// Init installs the process-wide logger. The first call wins; later calls
// return the installed logger unchanged.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := New(opts)
		current = &l
	}
	return *current
}

// Get returns the logger installed by Init and panics without one.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		panic("logger: Get called before Init")
	}
	return *current
}

// OrNop is Get for callers that tolerate running before Init.
func OrNop() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		return zerolog.Nop()
	}
	return *current
}

// Component derives a child logger tagged with the subsystem name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// Reset forgets the installed logger. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = nil
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
