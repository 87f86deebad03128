// Package handler provides the sink abstractions: console and rotating
// file handlers that format records and persist them.
//
// A handler owns its output resource, its minimum severity threshold,
// and its own write lock. The dispatcher's single consumer normally
// serializes all writes, but every handler remains safe when called
// directly from multiple goroutines.
//
// Handlers may additionally implement BatchEmitter; the dispatcher uses
// it to coalesce a flush batch into a single write call per sink.
//
// Emit errors are returned to the caller; the dispatcher routes them to
// the diagnostic channel. After Close, Emit fails with ErrClosed and
// never panics.
package handler
