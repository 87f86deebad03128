package core

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// The diagnostic channel is where the engine reports its own failures:
// sink write errors, rotation errors, formatter panics. It is distinct
// from the logging pipeline so that a failing handler can never feed
// errors back into the queue it is draining.

var (
	diagMu  sync.Mutex
	diagOut io.Writer = os.Stderr
)

// SetDiagnosticOutput redirects diagnostic messages to w. Passing nil
// restores the default (stderr).
func SetDiagnosticOutput(w io.Writer) {
	diagMu.Lock()
	defer diagMu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	diagOut = w
}

// Diagf writes a diagnostic message tagged with the reporting component.
func Diagf(component, format string, args ...interface{}) {
	diagMu.Lock()
	defer diagMu.Unlock()
	fmt.Fprintf(diagOut, "voltlog/%s: %s\n", component, fmt.Sprintf(format, args...))
}
