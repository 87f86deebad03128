package logger

import (
	"time"

	"github.com/voltlog/voltlog/core"
)

// String creates a string field
func String(key, value string) core.Field {
	return core.Field{Key: key, Type: core.StringType, Str: value}
}

// Int creates an integer field
func Int(key string, value int) core.Field {
	return core.Field{Key: key, Type: core.Int64Type, Int64: int64(value)}
}

// Int64 creates a 64-bit integer field
func Int64(key string, value int64) core.Field {
	return core.Field{Key: key, Type: core.Int64Type, Int64: value}
}

// Float64 creates a float field
func Float64(key string, value float64) core.Field {
	return core.Field{Key: key, Type: core.FloatType, Float64: value}
}

// Bool creates a boolean field
func Bool(key string, value bool) core.Field {
	var v int64
	if value {
		v = 1
	}
	return core.Field{Key: key, Type: core.BoolType, Int64: v}
}

// Time creates a time field
func Time(key string, value time.Time) core.Field {
	return core.Field{Key: key, Type: core.TimeType, Int64: value.UnixNano()}
}

// Duration creates a duration field
func Duration(key string, value time.Duration) core.Field {
	return core.Field{Key: key, Type: core.DurationType, Int64: int64(value)}
}

// Err creates an error field under the conventional "error" key. A nil
// error yields an empty string value.
func Err(err error) core.Field {
	if err == nil {
		return core.Field{Key: "error", Type: core.ErrorType}
	}
	return core.Field{Key: "error", Type: core.ErrorType, Str: err.Error()}
}

// Any creates a field holding an arbitrary value. Prefer the typed
// constructors; Any forces an interface allocation.
func Any(key string, value any) core.Field {
	return core.Field{Key: key, Type: core.AnyType, Any: value}
}
