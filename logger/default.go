package logger

import (
	"sync"

	"github.com/voltlog/voltlog/core"
	"github.com/voltlog/voltlog/handler"
)

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

func init() {
	l := New("root")
	console, err := handler.NewConsole(handler.ConsoleConfig{})
	if err == nil {
		l.AddHandler(console)
	}
	defaultLogger = l
}

// Default returns the process-wide default logger
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide default logger. The previous
// default is not closed.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// QuickSetup builds a ready-to-use logger with a console handler and,
// when path is non-empty, a rotating file handler (10MiB per file,
// five backups). It also installs the result as the default logger.
func QuickSetup(path string, level core.Level) (*Logger, error) {
	l := New("root")
	l.SetLevel(level)

	console, err := handler.NewConsole(handler.ConsoleConfig{Level: level})
	if err != nil {
		return nil, err
	}
	l.AddHandler(console)

	if path != "" {
		file, err := handler.NewFile(handler.FileConfig{
			Path:        path,
			Level:       level,
			MaxBytes:    10 << 20,
			BackupCount: 5,
		})
		if err != nil {
			return nil, err
		}
		l.AddHandler(file)
	}

	SetDefault(l)
	return l, nil
}

// Debug logs a debug message on the default logger
func Debug(msg string, fields ...core.Field) {
	Default().Debug(msg, fields...)
}

// Info logs an info message on the default logger
func Info(msg string, fields ...core.Field) {
	Default().Info(msg, fields...)
}

// Warning logs a warning message on the default logger
func Warning(msg string, fields ...core.Field) {
	Default().Warning(msg, fields...)
}

// Error logs an error message on the default logger
func Error(msg string, fields ...core.Field) {
	Default().Error(msg, fields...)
}

// Critical logs a critical message on the default logger
func Critical(msg string, fields ...core.Field) {
	Default().Critical(msg, fields...)
}
