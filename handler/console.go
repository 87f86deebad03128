package handler

import (
	"bytes"
	"io"
	"os"
	"sync"

	"go.uber.org/multierr"

	"github.com/voltlog/voltlog/core"
	"github.com/voltlog/voltlog/formatter"
)

// ConsoleConfig holds configuration for the console handler
type ConsoleConfig struct {
	// Level is the minimum severity (default: InfoLevel via zero value
	// semantics; set explicitly for DebugLevel)
	Level core.Level
	// Stream is the output writer (default: os.Stdout)
	Stream io.Writer
	// Formatter to use (default: a CompiledFormatter with the default
	// pattern)
	Formatter formatter.Formatter
}

// Console writes formatted records to a stream. Its own mutex
// serializes writes from any goroutine that reaches it concurrently.
type Console struct {
	level  core.Level
	w      io.Writer
	fmt    formatter.Formatter
	bufFmt formatter.BufferFormatter
	mu     sync.Mutex
	buf    bytes.Buffer
	stats  Stats
	closed bool
}

// NewConsole creates a console handler
func NewConsole(cfg ConsoleConfig) (*Console, error) {
	if cfg.Stream == nil {
		cfg.Stream = os.Stdout
	}
	if cfg.Formatter == nil {
		f, err := formatter.NewCompiledFormatter(formatter.Config{})
		if err != nil {
			return nil, err
		}
		cfg.Formatter = f
	}
	h := &Console{
		level: cfg.Level,
		w:     cfg.Stream,
		fmt:   cfg.Formatter,
	}
	h.bufFmt, _ = cfg.Formatter.(formatter.BufferFormatter)
	h.buf.Grow(256)
	return h, nil
}

// Threshold returns the handler's minimum severity
func (h *Console) Threshold() core.Level {
	return h.level
}

// Emit formats and writes one record
func (h *Console) Emit(r *core.Record) error {
	if r.Level < h.level {
		h.stats.IncrementSkipped()
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}

	h.buf.Reset()
	if err := h.formatInto(r); err != nil {
		return err
	}
	if _, err := h.w.Write(h.buf.Bytes()); err != nil {
		h.stats.IncrementWriteErrors()
		return err
	}
	h.stats.IncrementProcessed()
	return nil
}

// EmitBatch writes a whole batch with a single Write call
func (h *Console) EmitBatch(recs []*core.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}

	h.buf.Reset()
	n := 0
	var errs error
	for _, r := range recs {
		if r.Level < h.level {
			h.stats.IncrementSkipped()
			continue
		}
		// A record that fails to format is dropped; the rest of the
		// batch still goes out.
		if err := h.formatInto(r); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		n++
	}
	if h.buf.Len() == 0 {
		return errs
	}
	if _, err := h.w.Write(h.buf.Bytes()); err != nil {
		h.stats.IncrementWriteErrors()
		return multierr.Append(errs, err)
	}
	for i := 0; i < n; i++ {
		h.stats.IncrementProcessed()
	}
	return errs
}

// formatInto appends one formatted record to h.buf. Caller holds h.mu.
func (h *Console) formatInto(r *core.Record) error {
	if h.bufFmt != nil {
		h.bufFmt.FormatRecord(r, &h.buf)
		return nil
	}
	data, err := h.fmt.Format(r)
	if err != nil {
		return err
	}
	h.buf.Write(data)
	return nil
}

// Close marks the handler closed. The stream itself is not closed;
// stdout and stderr do not belong to the handler.
func (h *Console) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// Name identifies the handler in metrics output
func (h *Console) Name() string {
	return "console"
}

// Stats returns a snapshot of the handler's counters
func (h *Console) Stats() Snapshot {
	return h.stats.GetSnapshot()
}
