// Package logging builds the zap loggers used across visawatch.
// Each subsystem logs through a named child logger (its category), and
// categories can be switched off individually in the config file.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup, config loading
	CategorySession  Category = "session"  // Login and navigation to the calendar
	CategoryCalendar Category = "calendar" // Calendar walking and date scanning
	CategoryBrowser  Category = "browser"  // Browser launch and page operations
	CategoryWatcher  Category = "watcher"  // Outer loop, restarts
	CategoryAlert    Category = "alert"    // Alarm, notifications
)

// Config configures logging.
type Config struct {
	Level      string          `yaml:"level"`      // debug, info, warn, error
	Format     string          `yaml:"format"`     // console, json
	File       string          `yaml:"file"`       // optional extra output path
	Categories map[string]bool `yaml:"categories"` // per-category toggles, default on
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Categories not listed are enabled.
func (c Config) IsCategoryEnabled(category Category) bool {
	if c.Categories == nil {
		return true
	}
	enabled, exists := c.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Logger is the root logger plus the category filter it was built with.
type Logger struct {
	*zap.Logger
	cfg Config
}

// New builds the root logger. verbose forces debug level.
func New(cfg Config, verbose bool) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.Sampling = nil
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	switch strings.ToLower(cfg.Format) {
	case "", "console", "text":
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	case "json":
		zcfg.Encoding = "json"
	default:
		return nil, fmt.Errorf("unknown log format %q (valid: console, json)", cfg.Format)
	}

	if cfg.File != "" {
		zcfg.OutputPaths = append(zcfg.OutputPaths, cfg.File)
	}

	zl, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &Logger{Logger: zl, cfg: cfg}, nil
}

// Wrap adapts an existing zap logger, e.g. one from zaptest.
func Wrap(zl *zap.Logger, cfg Config) *Logger {
	if zl == nil {
		zl = zap.NewNop()
	}
	return &Logger{Logger: zl, cfg: cfg}
}

// Get returns the logger for a category, or a no-op logger when the category
// is switched off.
func (l *Logger) Get(category Category) *zap.Logger {
	if l == nil || l.Logger == nil || !l.cfg.IsCategoryEnabled(category) {
		return zap.NewNop()
	}
	return l.Named(string(category))
}

func parseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", s)
}
