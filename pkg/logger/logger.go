// Package logger holds the console's process-wide zerolog logger.
//
// main calls Init once; everything else asks for a tagged child with
// Component or takes the logger as a constructor argument.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures Init.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Anything else means info.
	Level string
	// Pretty switches from JSON lines to zerolog's console writer and adds
	// the caller to every entry.
	Pretty bool
	// Service, when set, is stamped on every entry.
	Service string
	// Output defaults to os.Stdout.
	Output io.Writer
}

var (
	mu     sync.RWMutex
	root   zerolog.Logger
	hasLog bool
)

// Init builds the process logger and returns it. Later calls return the
// logger built by the first one until Reset.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if hasLog {
		return root
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	level := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(level)

	b := zerolog.New(writer(opts)).Level(level).With().Timestamp()
	if opts.Service != "" {
		b = b.Str("service", opts.Service)
	}
	if opts.Pretty {
		b = b.Caller()
	}

	root, hasLog = b.Logger(), true
	return root
}

func writer(opts Options) io.Writer {
	w := opts.Output
	if w == nil {
		w = os.Stdout
	}
	if !opts.Pretty {
		return w
	}
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
}

// Get returns the process logger. It panics before Init.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if !hasLog {
		panic("logger: used before Init")
	}
	return root
}

// Component returns a child logger with component=name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset forgets the process logger. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	root, hasLog = zerolog.Logger{}, false
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
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
	}
	return zerolog.InfoLevel
}
