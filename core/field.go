package core

import (
	"fmt"
	"strconv"
	"time"
)

// FieldType tags which Field slot carries the value
type FieldType uint8

const (
	StringType FieldType = iota
	Int64Type
	FloatType
	BoolType
	TimeType
	DurationType
	ErrorType
	AnyType
)

// Field is one key/value pair attached to a record. The value lives in
// the slot named by Type; the other slots are ignored. Keeping the
// scalar slots inline lets callers build fields without boxing: only
// AnyType pays for an interface value.
//
// BoolType stores 1/0 in Int64. TimeType stores UnixNano in Int64.
type Field struct {
	Key     string
	Type    FieldType
	Int64   int64
	Float64 float64
	Str     string
	Any     interface{}
}

// AppendValue appends the field's rendered value to dst and returns
// the extended slice. Formatters use this with a preallocated buffer
// so that rendering a scalar field does not allocate.
func (f Field) AppendValue(dst []byte) []byte {
	switch f.Type {
	case StringType, ErrorType:
		return append(dst, f.Str...)
	case Int64Type:
		return strconv.AppendInt(dst, f.Int64, 10)
	case FloatType:
		return strconv.AppendFloat(dst, f.Float64, 'f', -1, 64)
	case BoolType:
		return strconv.AppendBool(dst, f.Int64 == 1)
	case TimeType:
		return time.Unix(0, f.Int64).AppendFormat(dst, time.RFC3339)
	case DurationType:
		return append(dst, time.Duration(f.Int64).String()...)
	case AnyType:
		return fmt.Appendf(dst, "%v", f.Any)
	default:
		return dst
	}
}

// StringValue returns the rendered value as a string
func (f Field) StringValue() string {
	return string(f.AppendValue(nil))
}
