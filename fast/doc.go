// Package fast is the minimal-overhead logging path. It trades the
// engine's safety for raw write throughput: callers pass preformatted
// byte slices, manage flushing themselves, and provide their own
// synchronization. Nothing here touches the dispatcher, the filter
// chain, or the record pool.
//
// UltraFastLogger appends into a caller-sized buffer and writes it out
// on Flush. BatchLogger stacks many lines into a larger secondary
// buffer. StaticFormatter fills precompiled {} templates from a
// reusable scratch buffer.
//
// None of these types are safe for concurrent use.
package fast
