// Package logging provides categorized logging for reverendo.
// Each subsystem logs through a named zap logger ("detect", "reconcile", ...).
// Nothing is written to the workspace: output goes to stderr only, so an
// up-to-date run leaves the project untouched.
package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem
type Category string

const (
	CategoryBoot      Category = "boot"      // CLI startup, config loading
	CategoryDetect    Category = "detect"    // Stack detection
	CategoryRender    Category = "render"    // Manifest templating
	CategoryReconcile Category = "reconcile" // .mcp.json merge and global fix-up
	CategoryInstall   Category = "install"   // Install/upgrade orchestration
	CategoryLaunch    Category = "launch"    // Assistant hand-off
	CategoryDocs      Category = "docs"      // check-docs hook
)

// Logger wraps a sugared zap logger bound to one category.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	base      = zap.NewNop()
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
)

// ParseLevel maps a config level name to a zap level.
// An empty string means the default (warn).
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return zapcore.WarnLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.WarnLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// New builds the process logger. verbose forces debug level.
func New(level string, verbose bool) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.DisableStacktrace = !verbose
	return config.Build()
}

// Initialize installs l as the base logger for all categories.
// Loggers handed out earlier are discarded.
func Initialize(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggersMu.Lock()
	defer loggersMu.Unlock()
	base = l
	loggers = make(map[Category]*Logger)
}

// Get returns (or creates) the logger for the given category.
func Get(category Category) *Logger {
	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}
	l := &Logger{
		category: category,
		sugar:    base.Named(string(category)).Sugar(),
	}
	loggers[category] = l
	return l
}

// Sync flushes the base logger. Errors from syncing stderr are ignored.
func Sync() {
	loggersMu.RLock()
	defer loggersMu.RUnlock()
	_ = base.Sync()
}

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// With returns a child logger carrying structured key/value pairs.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// =============================================================================
// CONVENIENCE FUNCTIONS
// =============================================================================

func Boot(format string, args ...interface{})           { Get(CategoryBoot).Info(format, args...) }
func Detect(format string, args ...interface{})         { Get(CategoryDetect).Info(format, args...) }
func DetectDebug(format string, args ...interface{})    { Get(CategoryDetect).Debug(format, args...) }
func Reconcile(format string, args ...interface{})      { Get(CategoryReconcile).Info(format, args...) }
func ReconcileDebug(format string, args ...interface{}) { Get(CategoryReconcile).Debug(format, args...) }
func ReconcileWarn(format string, args ...interface{})  { Get(CategoryReconcile).Warn(format, args...) }
func Install(format string, args ...interface{})        { Get(CategoryInstall).Info(format, args...) }
func InstallDebug(format string, args ...interface{})   { Get(CategoryInstall).Debug(format, args...) }
func Launch(format string, args ...interface{})         { Get(CategoryLaunch).Info(format, args...) }
func LaunchWarn(format string, args ...interface{})     { Get(CategoryLaunch).Warn(format, args...) }

// BootWarn reports non-fatal startup problems such as an unreadable config.
func BootWarn(format string, args ...interface{}) { Get(CategoryBoot).Warn(format, args...) }

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

// Stop ends the timer and logs the duration at debug level
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
