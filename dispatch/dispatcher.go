// Package dispatch implements the asynchronous pipeline core: a
// process-wide dispatcher owning a bounded queue and a single consumer
// goroutine that batches records and fans them out to handlers.
//
// Dispatch never blocks the producer. When the queue is full the record
// is dropped and counted; logging must not become a throughput
// bottleneck or a deadlock vector for the application.
//
// The consumer flushes its batch when it reaches BatchSize records or
// when FlushInterval has elapsed since the last flush, whichever comes
// first; an idle poll timeout also flushes partial batches so records
// are not held indefinitely under low traffic.
package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/voltlog/voltlog/core"
	"github.com/voltlog/voltlog/handler"
)

// Options tunes a Dispatcher. Zero values take the defaults.
type Options struct {
	// QueueSize is the bounded queue capacity (default: 10000)
	QueueSize int
	// BatchSize flushes the batch when reached (default: 500)
	BatchSize int
	// FlushInterval flushes the batch when exceeded (default: 100ms)
	FlushInterval time.Duration
	// PollTimeout is the consumer's queue wait; it bounds how long a
	// partial batch can sit idle (default: 10ms)
	PollTimeout time.Duration
	// DrainTimeout bounds the best-effort drain on shutdown
	// (default: 5s)
	DrainTimeout time.Duration
}

func (o *Options) applyDefaults() {
	if o.QueueSize <= 0 {
		o.QueueSize = 10000
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 500
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = 100 * time.Millisecond
	}
	if o.PollTimeout <= 0 {
		o.PollTimeout = 10 * time.Millisecond
	}
	if o.DrainTimeout <= 0 {
		o.DrainTimeout = 5 * time.Second
	}
}

// item pairs a record with its resolved handler list. The handler list
// is dispatch-local metadata; it never appears on the Record the
// formatters see.
type item struct {
	rec      *core.Record
	handlers []handler.Handler
}

// Dispatcher owns the bounded queue and the consumer goroutine
type Dispatcher struct {
	opts  Options
	queue chan item
	stop  chan struct{}
	done  chan struct{}

	stopped atomic.Bool

	enqueued atomic.Uint64
	dropped  atomic.Uint64
	flushed  atomic.Uint64
	batches  atomic.Uint64
}

// New creates and starts a standalone dispatcher. Most callers use
// Default instead.
func New(opts Options) *Dispatcher {
	opts.applyDefaults()
	d := &Dispatcher{
		opts:  opts,
		queue: make(chan item, opts.QueueSize),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

var (
	initMu      sync.Mutex
	current     atomic.Pointer[Dispatcher]
	defaultOpts atomic.Pointer[Options]
)

// SetDefaultOptions configures the options used the next time the
// process-wide dispatcher is (re-)created. It does not affect a
// dispatcher that is already running.
func SetDefaultOptions(opts Options) {
	opts.applyDefaults()
	defaultOpts.Store(&opts)
}

// Default returns the process-wide dispatcher, creating it on first
// use. After Shutdown, the next call re-arms a fresh dispatcher with a
// new consumer goroutine, so a logger that outlives shutdown does not
// lose records permanently.
func Default() *Dispatcher {
	if d := current.Load(); d != nil && !d.stopped.Load() {
		return d
	}
	initMu.Lock()
	defer initMu.Unlock()
	if d := current.Load(); d != nil && !d.stopped.Load() {
		return d
	}
	var opts Options
	if p := defaultOpts.Load(); p != nil {
		opts = *p
	}
	d := New(opts)
	current.Store(d)
	return d
}

// Shutdown stops the process-wide dispatcher if one is running. See
// (*Dispatcher).Shutdown.
func Shutdown(ctx context.Context) error {
	if d := current.Load(); d != nil {
		return d.Shutdown(ctx)
	}
	return nil
}

// Dispatch submits a record for the given handlers. It never blocks:
// when the queue is at capacity the record is dropped and counted.
// Ownership of the record transfers to the dispatcher either way; the
// producer must not touch it after this call.
func (d *Dispatcher) Dispatch(rec *core.Record, handlers []handler.Handler) {
	if d.stopped.Load() {
		d.dropped.Add(1)
		core.PutRecord(rec)
		return
	}
	select {
	case d.queue <- item{rec: rec, handlers: handlers}:
		d.enqueued.Add(1)
	default:
		d.dropped.Add(1)
		core.PutRecord(rec)
	}
}

// Shutdown signals the consumer to stop, waits for the bounded drain of
// queued records, then joins the consumer goroutine. Records still
// queued when the drain timeout fires are lost. A dispatcher cannot be
// restarted; use Default to obtain a fresh one.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	if !d.stopped.CompareAndSwap(false, true) {
		select {
		case <-d.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	close(d.stop)
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// newStoppedTimer returns a timer that is not running and whose channel
// is empty, ready for Reset.
func newStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	if !t.Stop() {
		<-t.C
	}
	return t
}

// run is the consumer loop
func (d *Dispatcher) run() {
	defer close(d.done)

	batch := make([]item, 0, d.opts.BatchSize)
	lastFlush := time.Now()
	poll := newStoppedTimer()
	defer poll.Stop()

	for {
		poll.Reset(d.opts.PollTimeout)
		select {
		case it := <-d.queue:
			if !poll.Stop() {
				<-poll.C
			}
			batch = append(batch, it)
			if len(batch) >= d.opts.BatchSize || time.Since(lastFlush) >= d.opts.FlushInterval {
				d.flush(batch)
				batch = batch[:0]
				lastFlush = time.Now()
			}

		case <-poll.C:
			// Queue idle: flush whatever accumulated so low-traffic
			// records are not held back.
			if len(batch) > 0 {
				d.flush(batch)
				batch = batch[:0]
				lastFlush = time.Now()
			}

		case <-d.stop:
			if !poll.Stop() {
				<-poll.C
			}
			d.drain(batch)
			return
		}
	}
}

// drain performs the best-effort shutdown flush, bounded by the drain
// timeout.
func (d *Dispatcher) drain(batch []item) {
	deadline := time.After(d.opts.DrainTimeout)
	for {
		select {
		case it := <-d.queue:
			batch = append(batch, it)
			if len(batch) >= d.opts.BatchSize {
				d.flush(batch)
				batch = batch[:0]
			}
		case <-deadline:
			if len(batch) > 0 {
				d.flush(batch)
			}
			return
		default:
			if len(batch) > 0 {
				d.flush(batch)
			}
			return
		}
	}
}

// flush fans the batch out to its handlers. Records are grouped per
// handler so sinks implementing BatchEmitter coalesce the batch into
// one write. A failure for one record or one handler is reported to the
// diagnostic channel and never aborts the rest of the batch.
func (d *Dispatcher) flush(batch []item) {
	groups := make(map[handler.Handler][]*core.Record)
	order := make([]handler.Handler, 0, 4)

	for _, it := range batch {
		for _, h := range it.handlers {
			// Re-derive targets: records below a handler's threshold
			// are dropped for that handler only.
			if it.rec.Level < h.Threshold() {
				continue
			}
			if _, seen := groups[h]; !seen {
				order = append(order, h)
			}
			groups[h] = append(groups[h], it.rec)
		}
	}

	for _, h := range order {
		recs := groups[h]
		if be, ok := h.(handler.BatchEmitter); ok {
			if err := be.EmitBatch(recs); err != nil {
				core.Diagf("dispatch", "batch emit to %T failed: %v", h, err)
			}
			continue
		}
		for _, r := range recs {
			if err := h.Emit(r); err != nil {
				core.Diagf("dispatch", "emit to %T failed: %v", h, err)
			}
		}
	}

	for _, it := range batch {
		core.PutRecord(it.rec)
	}
	d.flushed.Add(uint64(len(batch)))
	d.batches.Add(1)
}

// Enqueued returns the number of records accepted into the queue
func (d *Dispatcher) Enqueued() uint64 {
	return d.enqueued.Load()
}

// Dropped returns the number of records dropped on queue overflow
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Flushed returns the number of records fanned out to handlers
func (d *Dispatcher) Flushed() uint64 {
	return d.flushed.Load()
}

// Batches returns the number of flush batches
func (d *Dispatcher) Batches() uint64 {
	return d.batches.Load()
}
