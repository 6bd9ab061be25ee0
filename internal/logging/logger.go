// Package logging provides structured logging infrastructure for hecate.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level aliases for zerolog levels.
const (
	LevelDebug = zerolog.DebugLevel
	LevelInfo  = zerolog.InfoLevel
	LevelWarn  = zerolog.WarnLevel
	LevelError = zerolog.ErrorLevel
)

// Config contains logger configuration options.
type Config struct {
	Level   zerolog.Level
	Output  io.Writer
	Enabled bool
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:   LevelInfo,
		Output:  os.Stderr,
		Enabled: true,
	}
}

// New creates a new zerolog logger with the given configuration.
func New(cfg Config) zerolog.Logger {
	if !cfg.Enabled {
		return zerolog.Nop()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	return zerolog.New(output).Level(cfg.Level).With().Timestamp().Logger()
}

var (
	globalMu     sync.RWMutex
	globalLogger *zerolog.Logger
	globalOnce   sync.Once
)

// Global returns the global logger instance.
func Global() *zerolog.Logger {
	globalOnce.Do(func() {
		globalMu.Lock()
		defer globalMu.Unlock()
		if globalLogger == nil {
			l := zerolog.Nop()
			globalLogger = &l
		}
	})
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// SetGlobal sets the global logger instance.
func SetGlobal(logger zerolog.Logger) {
	globalOnce.Do(func() {})
	globalMu.Lock()
	globalLogger = &logger
	globalMu.Unlock()
}

// Init initializes the global logger with the given level and output.
func Init(level zerolog.Level, w io.Writer) {
	SetGlobal(New(Config{
		Level:   level,
		Output:  w,
		Enabled: true,
	}))
}

// Component returns a child of the global logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return Global().With().Str("component", name).Logger()
}

// Stage logs the duration of a pipeline stage at debug level when done is called.
func Stage(log zerolog.Logger, stage string) (done func()) {
	start := time.Now()
	log.Debug().Str("stage", stage).Msg("stage started")
	return func() {
		log.Debug().Str("stage", stage).Dur("elapsed", time.Since(start)).Msg("stage finished")
	}
}
