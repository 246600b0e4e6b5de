package signal

import (
	"math"
	"sync/atomic"
)

// Source is the externally settable BCI scalar. A remote controller may
// Set it from any goroutine while the module reads it once per tick;
// reads always see the latest complete write.
type Source struct {
	bits atomic.Uint64
}

// NewSource creates a source holding the initial value.
func NewSource(initial float64) *Source {
	s := &Source{}
	s.Set(initial)
	return s
}

// Set stores a new value. Values outside the nominal range are accepted.
func (s *Source) Set(v float64) {
	s.bits.Store(math.Float64bits(v))
}

// Get returns the latest value.
func (s *Source) Get() float64 {
	return math.Float64frombits(s.bits.Load())
}

// Toggle switches between the ends of the input range for manual testing:
// a value equal to high becomes low, anything else becomes high. Returns
// the new value.
func (s *Source) Toggle(low, high float64) float64 {
	for {
		old := s.bits.Load()
		next := high
		if math.Float64frombits(old) == high {
			next = low
		}
		if s.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}
