package logger

import "github.com/voltlog/voltlog/core"

// Severity levels re-exported for callers that only import this package
const (
	DebugLevel    = core.DebugLevel
	InfoLevel     = core.InfoLevel
	WarningLevel  = core.WarningLevel
	ErrorLevel    = core.ErrorLevel
	CriticalLevel = core.CriticalLevel
)

// ParseLevel converts a level name such as "INFO" into a Level
func ParseLevel(s string) (core.Level, error) {
	return core.ParseLevel(s)
}
