package formatter

import (
	"bytes"
	"sync"

	"github.com/voltlog/voltlog/core"
)

// DefaultPattern is the line layout used when no pattern is configured.
const DefaultPattern = "{asctime} - {levelname} - {message}"

// DefaultTimestampFormat is the asctime layout used when none is
// configured. Append ".000" for fractional seconds.
const DefaultTimestampFormat = "2006-01-02 15:04:05"

// Formatter defines the interface for log formatters
type Formatter interface {
	// Format formats a log record into bytes, including the trailing
	// line terminator
	Format(r *core.Record) ([]byte, error)
}

// BufferFormatter is an optional interface that formatters can implement
// to format directly into a caller-provided buffer, avoiding internal
// buffer pool overhead.
type BufferFormatter interface {
	// FormatRecord formats a log record into the given buffer.
	FormatRecord(r *core.Record, buf *bytes.Buffer)
}

// Config holds common formatter configuration
type Config struct {
	// Pattern is the line template (empty for DefaultPattern)
	Pattern string
	// TimestampFormat specifies the asctime layout (empty for
	// DefaultTimestampFormat)
	TimestampFormat string
}

func (c *Config) applyDefaults() {
	if c.Pattern == "" {
		c.Pattern = DefaultPattern
	}
	if c.TimestampFormat == "" {
		c.TimestampFormat = DefaultTimestampFormat
	}
}

// bufferPool is a pool of bytes.Buffer to reduce allocations
var bufferPool = &sync.Pool{
	New: func() interface{} {
		b := new(bytes.Buffer)
		b.Grow(256)
		return b
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 { // Don't keep very large buffers
		return
	}
	bufferPool.Put(buf)
}
