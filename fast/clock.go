package fast

import (
	"sync/atomic"
	"time"
)

// stampTimestampFormat matches the pipeline's default timestamp layout.
const stampTimestampFormat = "2006-01-02 15:04:05"

// stamp is a one-second timestamp snapshot. The bytes slice is never
// mutated after publication, so readers may alias it.
type stamp struct {
	sec   int64
	bytes []byte
}

var currentStamp atomic.Pointer[stamp]

// timestampBytes returns the formatted wall clock truncated to the
// second. The formatted bytes are cached and only rebuilt when the
// second rolls over, so steady-state calls cost one atomic load.
func timestampBytes() []byte {
	now := time.Now()
	sec := now.Unix()
	if s := currentStamp.Load(); s != nil && s.sec == sec {
		return s.bytes
	}
	s := &stamp{sec: sec, bytes: now.AppendFormat(make([]byte, 0, len(stampTimestampFormat)), stampTimestampFormat)}
	currentStamp.Store(s)
	return s.bytes
}
