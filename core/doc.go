// Package core defines the shared types used across the voltlog engine.
//
// It provides the Level type for severity gating, the Record type that
// represents a single log event, and the Field type for zero-allocation
// structured key-value pairs.
//
// Record objects are pooled via sync.Pool to keep the hot path
// allocation-free. Producers get a Record with GetRecord; once a record
// has been handed to the dispatcher the producer must not touch it again,
// and the dispatcher returns it to the pool after the batch is flushed.
// The pool pre-allocates the Fields slice with capacity 8, which covers
// most log calls without triggering a slice growth.
//
// The package also hosts the engine's diagnostic channel. Sink and
// dispatch failures are reported through Diagf to a side writer (stderr
// by default), never through the logging pipeline itself, so a broken
// sink can not feed errors back into its own queue.
package core
