package filter

import (
	"fmt"
	"sync/atomic"

	"github.com/voltlog/voltlog/core"
)

// Sampling keeps every Nth record, counting across all goroutines with
// an atomic counter. It is the stock defense against log storms.
type Sampling struct {
	rate    uint64
	counter atomic.Uint64
}

// NewSampling creates a sampling filter that keeps one record out of
// every rate. A rate below 1 is a configuration error.
func NewSampling(rate int) (*Sampling, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("sampling rate must be positive, got %d", rate)
	}
	return &Sampling{rate: uint64(rate)}, nil
}

// Keep implements Filter. The first record is always kept, then every
// rate-th record after it.
func (s *Sampling) Keep(_ *core.Record) bool {
	return (s.counter.Add(1)-1)%s.rate == 0
}
