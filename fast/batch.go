package fast

import "github.com/voltlog/voltlog/core"

// DefaultBatchBufferSize is the BatchLogger buffer size.
const DefaultBatchBufferSize = 10 << 20

// BatchLogger stacks many formatted lines into one large buffer on top
// of an UltraFastLogger and writes them with a single syscall per
// Flush. Like its underlying logger it is not safe for concurrent use.
type BatchLogger struct {
	logger *UltraFastLogger
	buf    []byte
	pos    int
	count  int
}

// NewBatch wraps an UltraFastLogger with a batch buffer.
func NewBatch(logger *UltraFastLogger) *BatchLogger {
	return &BatchLogger{
		logger: logger,
		buf:    make([]byte, DefaultBatchBufferSize),
	}
}

// Add formats one line into the batch buffer. A full buffer is flushed
// eagerly before the new line is appended.
func (b *BatchLogger) Add(level core.Level, msg []byte) error {
	if level < b.logger.level {
		return nil
	}
	ts := timestampBytes()
	tag := levelTags[level]
	need := len(ts) + len(tag) + len(msg) + 1

	if b.pos+need > len(b.buf) {
		if err := b.Flush(); err != nil {
			return err
		}
		if need > len(b.buf) {
			return b.logger.writeParts(ts, tag, msg)
		}
	}

	p := b.pos
	p += copy(b.buf[p:], ts)
	p += copy(b.buf[p:], tag)
	p += copy(b.buf[p:], msg)
	b.buf[p] = '\n'
	b.pos = p + 1
	b.count++
	return nil
}

// Len returns the number of lines waiting in the batch.
func (b *BatchLogger) Len() int {
	return b.count
}

// Flush writes the batch to the underlying file and syncs it.
func (b *BatchLogger) Flush() error {
	if b.count == 0 {
		return nil
	}
	if _, err := b.logger.f.Write(b.buf[:b.pos]); err != nil {
		return err
	}
	b.pos = 0
	b.count = 0
	return b.logger.f.Sync()
}
