// Package logger is the public API of voltlog. Most users only need to
// import this package.
//
// A Logger is a lightweight per-component handle holding a level, a
// handler list, a filter chain, and a context overlay. Logging builds a
// record, runs it through the filter chain, and submits it to the
// process-wide dispatcher; the calling goroutine never blocks on sink
// I/O, and under overload records are dropped rather than stalling the
// caller.
//
// Bind returns a clone that shares the handler list and filter chain by
// reference but carries an independent copy-on-write context overlay:
//
//	reqLog := log.Bind(logger.String("request_id", id))
//
// WithContext pushes fields onto the overlay for a scope and returns
// the restore function:
//
//	done := log.WithContext(logger.String("job", name))
//	defer done()
//
// The package initializes a default Logger (console, InfoLevel) in
// init(); the package-level functions Info, Error, etc. delegate to it,
// so simple programs can log without any setup. QuickSetup replaces it
// with a console-plus-file configuration in one call.
package logger
