// Package filter provides record predicates and their chain composition.
//
// A Chain evaluates its filters in registration order as a logical AND:
// the first filter that rejects short-circuits the rest, and an empty
// chain accepts everything. Adding a filter swaps in a new immutable
// snapshot of the filter slice, so in-flight evaluations on other
// goroutines always see a consistent chain and rebuilds never race.
package filter

import (
	"sync"
	"sync/atomic"

	"github.com/voltlog/voltlog/core"
)

// Filter decides whether a record passes
type Filter interface {
	// Keep reports whether the record should be kept
	Keep(r *core.Record) bool
}

// Func adapts a plain function to the Filter interface
type Func func(r *core.Record) bool

// Keep implements Filter
func (f Func) Keep(r *core.Record) bool {
	return f(r)
}

// Chain is an ordered, short-circuiting AND composition of filters.
// The zero value is an empty chain that accepts everything.
type Chain struct {
	mu     sync.Mutex // serializes Add
	active atomic.Pointer[[]Filter]
}

// Add appends a filter to the chain. Safe to call concurrently with
// Keep; evaluations already in flight keep using the previous snapshot.
func (c *Chain) Add(f Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var cur []Filter
	if p := c.active.Load(); p != nil {
		cur = *p
	}
	next := make([]Filter, len(cur)+1)
	copy(next, cur)
	next[len(cur)] = f
	c.active.Store(&next)
}

// Keep evaluates the chain against a record
func (c *Chain) Keep(r *core.Record) bool {
	p := c.active.Load()
	if p == nil {
		return true
	}
	for _, f := range *p {
		if !f.Keep(r) {
			return false
		}
	}
	return true
}

// Len returns the number of registered filters
func (c *Chain) Len() int {
	p := c.active.Load()
	if p == nil {
		return 0
	}
	return len(*p)
}
