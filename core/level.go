package core

import (
	"fmt"
	"strings"
)

// Level represents the severity of a log record
type Level int8

const (
	// DebugLevel for detailed debugging information
	DebugLevel Level = iota
	// InfoLevel for general informational messages (default)
	InfoLevel
	// WarningLevel for warning messages
	WarningLevel
	// ErrorLevel for error messages
	ErrorLevel
	// CriticalLevel for messages that require immediate attention
	CriticalLevel
)

// levelWeights maps each level to its numeric weight. Weights are spaced
// so that user code comparing levels arithmetically behaves like the
// classic 10/20/30/40/50 scheme.
var levelWeights = [...]int{
	DebugLevel:    10,
	InfoLevel:     20,
	WarningLevel:  30,
	ErrorLevel:    40,
	CriticalLevel: 50,
}

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarningLevel:
		return "WARNING"
	case ErrorLevel:
		return "ERROR"
	case CriticalLevel:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Weight returns the numeric weight of the level
func (l Level) Weight() int {
	if l < DebugLevel || l > CriticalLevel {
		return 0
	}
	return levelWeights[l]
}

// ParseLevel converts a string to a Level, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DebugLevel, nil
	case "INFO":
		return InfoLevel, nil
	case "WARN", "WARNING":
		return WarningLevel, nil
	case "ERROR":
		return ErrorLevel, nil
	case "CRITICAL", "FATAL":
		return CriticalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown level %q", s)
	}
}
