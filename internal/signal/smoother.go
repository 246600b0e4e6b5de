// Package signal holds the BCI scalar: an externally settable source and
// the rolling-mean smoother that turns raw samples into the level that
// drives game pacing.
package signal

import (
	"errors"
	"math"
)

// ErrCapacity is returned for a smoother buffer with no room for samples.
var ErrCapacity = errors.New("signal: buffer capacity must be at least 1")

// ErrDeadBand is returned when the dead band bounds are inverted.
var ErrDeadBand = errors.New("signal: dead band low must not exceed high")

// DeadBand configures the optional sample filter. When enabled, samples in
// [Low, High] are dropped and only out-of-band samples enter the buffer.
type DeadBand struct {
	Enabled bool    `yaml:"enabled"`
	Low     float64 `yaml:"low"`
	High    float64 `yaml:"high"`
}

// Smoother keeps a fixed-capacity FIFO of raw samples and its mean.
// It is not safe for concurrent use; the owning module updates it once
// per tick.
type Smoother struct {
	buf  []float64
	head int // index of the oldest sample once the ring is full
	sum  float64
	band DeadBand
}

// NewSmoother creates a smoother of the given capacity, prefilled with
// initial so the mean starts at initial rather than ramping up from zero.
func NewSmoother(capacity int, initial float64, band DeadBand) (*Smoother, error) {
	if capacity < 1 {
		return nil, ErrCapacity
	}
	if band.Enabled && band.Low > band.High {
		return nil, ErrDeadBand
	}

	s := &Smoother{
		buf:  make([]float64, capacity),
		band: band,
	}
	s.Fill(initial)
	return s, nil
}

// Fill replaces every sample with v.
func (s *Smoother) Fill(v float64) {
	for i := range s.buf {
		s.buf[i] = v
	}
	s.head = 0
	s.sum = v * float64(len(s.buf))
}

// Update admits a raw sample, evicting the oldest one. Returns false when
// the dead band filter dropped the sample.
func (s *Smoother) Update(raw float64) bool {
	if s.band.Enabled && raw >= s.band.Low && raw <= s.band.High {
		return false
	}

	evicted := s.buf[s.head]
	s.sum += raw - evicted
	s.buf[s.head] = raw
	s.head = (s.head + 1) % len(s.buf)
	// inf - inf poisons the running sum; rebuild it from the samples.
	if s.head == 0 || !finite(raw) || !finite(evicted) || !finite(s.sum) {
		s.recompute()
	}
	return true
}

// Value returns the mean of the buffered samples.
func (s *Smoother) Value() float64 {
	return s.sum / float64(len(s.buf))
}

// Capacity returns the buffer length.
func (s *Smoother) Capacity() int {
	return len(s.buf)
}

// Samples returns the buffered samples oldest first.
func (s *Smoother) Samples() []float64 {
	out := make([]float64, 0, len(s.buf))
	out = append(out, s.buf[s.head:]...)
	out = append(out, s.buf[:s.head]...)
	return out
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// recompute rebuilds the running sum once per buffer cycle so the
// incremental sum cannot drift over long sessions.
func (s *Smoother) recompute() {
	s.sum = 0
	for _, v := range s.buf {
		s.sum += v
	}
}
