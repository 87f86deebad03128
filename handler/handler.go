package handler

import (
	"errors"
	"sync/atomic"

	"github.com/voltlog/voltlog/core"
)

// ErrClosed is returned by Emit after a handler has been closed
var ErrClosed = errors.New("handler is closed")

// Handler defines the interface for log sinks
type Handler interface {
	// Emit formats and writes a single record. Records below the
	// handler's threshold are skipped without error.
	Emit(r *core.Record) error

	// Threshold returns the handler's minimum severity
	Threshold() core.Level

	// Close releases the handler's resources. Close is idempotent;
	// Emit after Close returns ErrClosed.
	Close() error
}

// BatchEmitter is an optional interface handlers implement to accept a
// whole flush batch in one call, coalescing the write syscalls.
type BatchEmitter interface {
	EmitBatch(recs []*core.Record) error
}

// StatsProvider is implemented by handlers that expose counters
type StatsProvider interface {
	// Name identifies the handler in metrics output
	Name() string
	// Stats returns a snapshot of the handler's counters
	Stats() Snapshot
}

// Stats tracks handler statistics with atomic counters
type Stats struct {
	Processed   uint64
	Skipped     uint64
	WriteErrors uint64
	Rotations   uint64
}

// IncrementProcessed atomically increments the processed counter
func (s *Stats) IncrementProcessed() {
	atomic.AddUint64(&s.Processed, 1)
}

// IncrementSkipped atomically increments the below-threshold counter
func (s *Stats) IncrementSkipped() {
	atomic.AddUint64(&s.Skipped, 1)
}

// IncrementWriteErrors atomically increments the write error counter
func (s *Stats) IncrementWriteErrors() {
	atomic.AddUint64(&s.WriteErrors, 1)
}

// IncrementRotations atomically increments the rotation counter
func (s *Stats) IncrementRotations() {
	atomic.AddUint64(&s.Rotations, 1)
}

// Snapshot is a point-in-time copy of a handler's counters
type Snapshot struct {
	Processed   uint64
	Skipped     uint64
	WriteErrors uint64
	Rotations   uint64
}

// GetSnapshot returns a snapshot of current statistics
func (s *Stats) GetSnapshot() Snapshot {
	return Snapshot{
		Processed:   atomic.LoadUint64(&s.Processed),
		Skipped:     atomic.LoadUint64(&s.Skipped),
		WriteErrors: atomic.LoadUint64(&s.WriteErrors),
		Rotations:   atomic.LoadUint64(&s.Rotations),
	}
}
