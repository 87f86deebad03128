package logger

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"github.com/voltlog/voltlog/core"
	"github.com/voltlog/voltlog/dispatch"
	"github.com/voltlog/voltlog/filter"
	"github.com/voltlog/voltlog/handler"
)

// shared is the state a Logger and its Bind clones hold by reference:
// the handler list and the filter chain. The handler list is swapped
// atomically as an immutable snapshot so AddHandler never races a
// concurrent log call.
type shared struct {
	handlers atomic.Pointer[[]handler.Handler]
	filters  filter.Chain
}

// Logger is a per-component logging handle
type Logger struct {
	name   string
	level  atomic.Int32
	shared *shared
	ctx    atomic.Pointer[[]core.Field]
}

// New creates a logger with no handlers attached. Records are built and
// filtered but go nowhere until AddHandler is called.
func New(name string) *Logger {
	l := &Logger{
		name:   name,
		shared: &shared{},
	}
	l.level.Store(int32(core.InfoLevel))
	return l
}

// Name returns the component name stamped on every record
func (l *Logger) Name() string {
	return l.name
}

// SetLevel sets the logger's minimum severity
func (l *Logger) SetLevel(level core.Level) {
	l.level.Store(int32(level))
}

// Level returns the logger's minimum severity
func (l *Logger) Level() core.Level {
	return core.Level(l.level.Load())
}

// AddHandler attaches a handler. Clones created with Bind see the new
// handler too; the handler list is shared by reference.
func (l *Logger) AddHandler(h handler.Handler) {
	for {
		old := l.shared.handlers.Load()
		var cur []handler.Handler
		if old != nil {
			cur = *old
		}
		next := make([]handler.Handler, len(cur)+1)
		copy(next, cur)
		next[len(cur)] = h
		if l.shared.handlers.CompareAndSwap(old, &next) {
			return
		}
	}
}

// RemoveHandler detaches a handler previously added
func (l *Logger) RemoveHandler(h handler.Handler) {
	for {
		old := l.shared.handlers.Load()
		if old == nil {
			return
		}
		cur := *old
		next := make([]handler.Handler, 0, len(cur))
		for _, existing := range cur {
			if existing != h {
				next = append(next, existing)
			}
		}
		if len(next) == len(cur) {
			return
		}
		if l.shared.handlers.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Handlers returns the current handler snapshot
func (l *Logger) Handlers() []handler.Handler {
	if p := l.shared.handlers.Load(); p != nil {
		return *p
	}
	return nil
}

// AddFilter appends a filter to the chain shared with all clones
func (l *Logger) AddFilter(f filter.Filter) {
	l.shared.filters.Add(f)
}

// Bind returns a clone that shares the handler list and filter chain
// with the receiver but holds an independent context overlay: the
// overlay is snapshotted now, and later WithContext calls on either
// logger stay isolated.
func (l *Logger) Bind(fields ...core.Field) *Logger {
	clone := &Logger{
		name:   l.name,
		shared: l.shared,
	}
	clone.level.Store(l.level.Load())

	var cur []core.Field
	if p := l.ctx.Load(); p != nil {
		cur = *p
	}
	next := make([]core.Field, len(cur)+len(fields))
	copy(next, cur)
	copy(next[len(cur):], fields)
	clone.ctx.Store(&next)
	return clone
}

// WithContext pushes fields onto the logger's context overlay and
// returns the function that pops them. Overlay fields are merged into
// every record this logger builds until the restore function runs;
// call-site fields with the same key override them.
func (l *Logger) WithContext(fields ...core.Field) func() {
	old := l.ctx.Load()
	var cur []core.Field
	if old != nil {
		cur = *old
	}
	next := make([]core.Field, len(cur)+len(fields))
	copy(next, cur)
	copy(next[len(cur):], fields)
	l.ctx.Store(&next)
	return func() {
		l.ctx.Store(old)
	}
}

// Log logs a message at the specified level
func (l *Logger) Log(level core.Level, msg string, fields ...core.Field) {
	// Level check before any allocation
	if level < l.Level() {
		return
	}
	l.log(level, msg, fields)
}

// log builds the record, runs the filter chain, and hands the record to
// the dispatcher. After the Dispatch call the record belongs to the
// consumer.
func (l *Logger) log(level core.Level, msg string, fields []core.Field) {
	handlers := l.Handlers()
	if len(handlers) == 0 {
		return
	}

	rec := core.GetRecord()
	rec.Name = l.name
	rec.Level = level
	rec.Message = msg
	rec.Time = time.Now()
	rec.ThreadID = core.GoroutineID()
	rec.ProcessID = core.PID()

	// Context overlay first, call-site fields after: lookups scan from
	// the end, so call-site wins on collisions.
	if p := l.ctx.Load(); p != nil && len(*p) > 0 {
		rec.Fields = append(rec.Fields, *p...)
	}
	if len(fields) > 0 {
		rec.Fields = append(rec.Fields, fields...)
	}

	if !l.shared.filters.Keep(rec) {
		core.PutRecord(rec)
		return
	}

	dispatch.Default().Dispatch(rec, handlers)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...core.Field) {
	if core.DebugLevel < l.Level() {
		return
	}
	l.log(core.DebugLevel, msg, fields)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...core.Field) {
	if core.InfoLevel < l.Level() {
		return
	}
	l.log(core.InfoLevel, msg, fields)
}

// Warning logs a warning message
func (l *Logger) Warning(msg string, fields ...core.Field) {
	if core.WarningLevel < l.Level() {
		return
	}
	l.log(core.WarningLevel, msg, fields)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...core.Field) {
	if core.ErrorLevel < l.Level() {
		return
	}
	l.log(core.ErrorLevel, msg, fields)
}

// Critical logs a critical message
func (l *Logger) Critical(msg string, fields ...core.Field) {
	if core.CriticalLevel < l.Level() {
		return
	}
	l.log(core.CriticalLevel, msg, fields)
}

// Close shuts down the process-wide dispatcher, flushing queued
// records, then closes every attached handler. Errors are aggregated.
func (l *Logger) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := dispatch.Shutdown(ctx)
	for _, h := range l.Handlers() {
		err = multierr.Append(err, h.Close())
	}
	return err
}
