package fast

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/voltlog/voltlog/core"
)

// DefaultBufferSize is the prealloc buffer size when Options leaves it
// zero.
const DefaultBufferSize = 1 << 20

// levelTags holds the preformatted " [LEVEL] " separators indexed by
// level.
var levelTags = [...][]byte{
	core.DebugLevel:    []byte(" [DEBUG] "),
	core.InfoLevel:     []byte(" [INFO] "),
	core.WarningLevel:  []byte(" [WARNING] "),
	core.ErrorLevel:    []byte(" [ERROR] "),
	core.CriticalLevel: []byte(" [CRITICAL] "),
}

// Options configures an UltraFastLogger.
type Options struct {
	// Path of the output file. Required.
	Path string
	// Level is the minimum severity; lower records are dropped.
	Level core.Level
	// BufferSize is the prealloc buffer capacity in bytes
	// (default DefaultBufferSize).
	BufferSize int
}

// UltraFastLogger writes log lines with the least machinery possible.
// It holds one fixed buffer and a cursor; LogPrealloc appends into it
// and the caller decides when Flush runs. There is no mutex: the
// caller owns synchronization.
type UltraFastLogger struct {
	level core.Level
	f     *os.File
	buf   []byte
	pos   int
}

// New opens the output file in append mode and returns the logger.
func New(opts Options) (*UltraFastLogger, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("fast: output path required")
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("fast: create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("fast: open %s: %w", opts.Path, err)
	}
	return &UltraFastLogger{
		level: opts.Level,
		f:     f,
		buf:   make([]byte, opts.BufferSize),
	}, nil
}

// Level returns the minimum severity.
func (l *UltraFastLogger) Level() core.Level {
	return l.level
}

// LogRaw writes an already formatted line straight to the file. The
// line must include its trailing newline.
func (l *UltraFastLogger) LogRaw(level core.Level, line []byte) error {
	if level < l.level {
		return nil
	}
	_, err := l.f.Write(line)
	return err
}

// LogPrealloc formats "<timestamp> [LEVEL] <msg>\n" into the internal
// buffer. When the line would overflow the buffer is flushed first;
// lines larger than the whole buffer are written directly after the
// flush. Nothing reaches the file until Flush runs or the buffer
// fills.
func (l *UltraFastLogger) LogPrealloc(level core.Level, msg []byte) error {
	if level < l.level {
		return nil
	}
	ts := timestampBytes()
	tag := levelTags[level]
	need := len(ts) + len(tag) + len(msg) + 1

	if l.pos+need > len(l.buf) {
		if err := l.Flush(); err != nil {
			return err
		}
		if need > len(l.buf) {
			return l.writeParts(ts, tag, msg)
		}
	}

	p := l.pos
	p += copy(l.buf[p:], ts)
	p += copy(l.buf[p:], tag)
	p += copy(l.buf[p:], msg)
	l.buf[p] = '\n'
	l.pos = p + 1
	return nil
}

// LogDirect formats the line, writes it, and syncs the file. Slowest
// of the three paths but durable per call.
func (l *UltraFastLogger) LogDirect(level core.Level, msg []byte) error {
	if level < l.level {
		return nil
	}
	if err := l.writeParts(timestampBytes(), levelTags[level], msg); err != nil {
		return err
	}
	return l.f.Sync()
}

// writeParts assembles one oversize line and writes it in a single
// call.
func (l *UltraFastLogger) writeParts(ts, tag, msg []byte) error {
	line := make([]byte, 0, len(ts)+len(tag)+len(msg)+1)
	line = append(line, ts...)
	line = append(line, tag...)
	line = append(line, msg...)
	line = append(line, '\n')
	_, err := l.f.Write(line)
	return err
}

// Flush writes buffered lines to the file.
func (l *UltraFastLogger) Flush() error {
	if l.pos == 0 {
		return nil
	}
	if _, err := l.f.Write(l.buf[:l.pos]); err != nil {
		return err
	}
	l.pos = 0
	return nil
}

// Buffered returns how many bytes wait in the prealloc buffer.
func (l *UltraFastLogger) Buffered() int {
	return l.pos
}

// Close flushes and closes the file.
func (l *UltraFastLogger) Close() error {
	if err := l.Flush(); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}
