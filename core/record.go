package core

import (
	"os"
	"runtime"
	"sync"
	"time"
)

// Record represents a single log event. The fixed fields are always
// populated by the logger; Fields holds the context overlay followed by
// any call-site fields, in that order. Lookups scan from the end so that
// a call-site field overrides a context field with the same key.
//
// Once a record has been submitted to the dispatcher the producer must
// not mutate it again; ownership transfers to the consumer, which
// returns it to the pool after the batch is flushed.
type Record struct {
	Name      string
	Level     Level
	Message   string
	Time      time.Time
	ThreadID  uint64
	ProcessID int
	Fields    []Field
}

// Lookup returns the value of the named extra field. The scan runs back
// to front so the last writer wins on key collisions.
func (r *Record) Lookup(key string) (Field, bool) {
	for i := len(r.Fields) - 1; i >= 0; i-- {
		if r.Fields[i].Key == key {
			return r.Fields[i], true
		}
	}
	return Field{}, false
}

// recordPool is a pool of Record objects to reduce allocations
var recordPool = sync.Pool{
	New: func() interface{} {
		return &Record{
			Fields: make([]Field, 0, 8), // Pre-allocate for 8 fields
		}
	},
}

// GetRecord retrieves a Record from the pool
func GetRecord() *Record {
	r := recordPool.Get().(*Record)
	r.Time = time.Now()
	r.Fields = r.Fields[:0]
	return r
}

// PutRecord returns a Record to the pool
func PutRecord(r *Record) {
	if r == nil {
		return
	}
	// Re-slice to zero length; GC handles reference cleanup
	r.Fields = r.Fields[:0]
	r.Name = ""
	r.Message = ""
	recordPool.Put(r)
}

var pid = os.Getpid()

// PID returns the process id, cached at startup.
func PID() int {
	return pid
}

// GoroutineID returns the id of the calling goroutine, parsed from the
// runtime.Stack header ("goroutine N [running]:"). It is the closest
// analogue to a thread id that the runtime exposes.
func GoroutineID() uint64 {
	var buf [32]byte
	n := runtime.Stack(buf[:], false)
	// Skip the "goroutine " prefix and accumulate digits.
	var id uint64
	for _, c := range buf[10:n] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
