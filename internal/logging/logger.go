// Package logging provides categorized zap loggers for cosquare.
// Every subsystem logs through Get(category); categories can be switched off
// individually from the logging section of the configuration.
package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cosquare/internal/config"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup, config loading
	CategoryParse     Category = "parse"     // Notation parsing
	CategorySquare    Category = "square"    // Square extraction, normalization, rewrite
	CategoryInference Category = "inference" // Mangle evaluation of square facts
	CategorySolve     Category = "solve"     // Solve requests and batches
	CategoryShell     Category = "shell"     // Interactive shell
)

// Categories lists every known category.
var Categories = []Category{
	CategoryBoot,
	CategoryParse,
	CategorySquare,
	CategoryInference,
	CategorySolve,
	CategoryShell,
}

var (
	mu      sync.RWMutex
	root    = zap.NewNop()
	cfg     config.LoggingConfig
	loggers = make(map[Category]*zap.Logger)
)

// Initialize builds the root logger from cfg and installs it.
func Initialize(c config.LoggingConfig) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if c.Level != "" {
		l, err := zapcore.ParseLevel(strings.ToLower(c.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
		}
		level = l
	}
	if c.DebugMode {
		level = zapcore.DebugLevel
	}

	zc := zap.NewProductionConfig()
	if c.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	install(l, c)

	l.Named(string(CategoryBoot)).Debug("logging initialized",
		zap.String("level", level.String()),
		zap.String("format", c.Format),
		zap.Bool("debug_mode", c.DebugMode))
	return l, nil
}

// SetLogger installs l as the root logger with every category enabled.
// Tests use it to route output into an observer.
func SetLogger(l *zap.Logger) {
	install(l, config.LoggingConfig{})
}

func install(l *zap.Logger, c config.LoggingConfig) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	root = l
	cfg = c
	loggers = make(map[Category]*zap.Logger)
}

// IsCategoryEnabled reports whether a category is switched on.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.IsCategoryEnabled(string(category))
}

// Get returns (or creates) the logger for a category. Disabled categories
// get a no-op logger.
func Get(category Category) *zap.Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	l := zap.NewNop()
	if cfg.IsCategoryEnabled(string(category)) {
		l = root.Named(string(category))
	}
	loggers[category] = l
	return l
}

// Sync flushes the root logger.
func Sync() {
	mu.RLock()
	l := root
	mu.RUnlock()
	_ = l.Sync()
}

// =============================================================================
// REQUEST ID TRACING
// =============================================================================

// WithRequestID returns the category logger tagged with a correlation ID.
func WithRequestID(category Category, requestID string) *zap.Logger {
	return Get(category).With(zap.String("req", requestID))
}

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("operation completed", zap.String("op", t.op), zap.Duration("elapsed", elapsed))
	return elapsed
}

// StopWithThreshold logs a warning if the duration exceeds threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("operation slow",
			zap.String("op", t.op),
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", threshold))
	} else {
		Get(t.category).Debug("operation completed", zap.String("op", t.op), zap.Duration("elapsed", elapsed))
	}
	return elapsed
}
