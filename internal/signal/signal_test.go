package signal

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func TestNewSmootherValidation(t *testing.T) {
	if _, err := NewSmoother(0, 1.5, DeadBand{}); !errors.Is(err, ErrCapacity) {
		t.Errorf("capacity 0: err = %v, want ErrCapacity", err)
	}
	if _, err := NewSmoother(10, 1.5, DeadBand{Enabled: true, Low: 2, High: 1}); !errors.Is(err, ErrDeadBand) {
		t.Errorf("inverted band: err = %v, want ErrDeadBand", err)
	}
	// Inverted bounds are fine when the filter is off
	if _, err := NewSmoother(10, 1.5, DeadBand{Low: 2, High: 1}); err != nil {
		t.Errorf("disabled band should not be validated, got %v", err)
	}
}

func TestSmootherPrefilled(t *testing.T) {
	s, err := NewSmoother(120, 1.5, DeadBand{})
	if err != nil {
		t.Fatalf("NewSmoother() failed: %v", err)
	}
	if s.Value() != 1.5 {
		t.Errorf("Value() = %v, want 1.5", s.Value())
	}
	if s.Capacity() != 120 {
		t.Errorf("Capacity() = %d, want 120", s.Capacity())
	}
}

func TestSmootherEvictsOldest(t *testing.T) {
	s, _ := NewSmoother(4, 0, DeadBand{})

	for _, v := range []float64{1, 2, 3, 4} {
		s.Update(v)
	}
	if got := s.Value(); got != 2.5 {
		t.Errorf("Value() = %v, want 2.5", got)
	}

	s.Update(5) // evicts 1
	if got := s.Value(); got != 3.5 {
		t.Errorf("after eviction Value() = %v, want 3.5", got)
	}

	want := []float64{2, 3, 4, 5}
	got := s.Samples()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Samples() = %v, want %v", got, want)
		}
	}
}

func TestSmootherAcceptsOutOfRange(t *testing.T) {
	s, _ := NewSmoother(2, 1, DeadBand{})
	s.Update(10)
	s.Update(10)
	if s.Value() != 10 {
		t.Errorf("out-of-range samples should be accepted as-is, Value() = %v", s.Value())
	}
}

func TestSmootherRecoversFromInfinity(t *testing.T) {
	const capacity = 8
	s, _ := NewSmoother(capacity, 1.5, DeadBand{})

	for range 3 {
		s.Update(math.Inf(1))
	}
	if !math.IsInf(s.Value(), 1) {
		t.Fatalf("Value() = %v with infinite samples buffered, want +Inf", s.Value())
	}

	for i := range capacity + 5 {
		s.Update(1.5)
		v := s.Value()
		if math.IsNaN(v) {
			t.Fatalf("update %d: Value() is NaN", i)
		}
		// The last infinite sample leaves on the 8th finite update.
		if i >= capacity-1 && v != 1.5 {
			t.Errorf("update %d: Value() = %v, want 1.5", i, v)
		}
	}
}

func TestSmootherDeadBand(t *testing.T) {
	s, _ := NewSmoother(4, 1.5, DeadBand{Enabled: true, Low: 1.2, High: 1.8})

	tests := []struct {
		raw      float64
		admitted bool
	}{
		{1.5, false},
		{1.2, false}, // bounds are inclusive
		{1.8, false},
		{1.0, true},
		{2.0, true},
	}
	for _, tc := range tests {
		if got := s.Update(tc.raw); got != tc.admitted {
			t.Errorf("Update(%v) admitted = %v, want %v", tc.raw, got, tc.admitted)
		}
	}

	// Two admitted samples replaced two 1.5s: (1.5+1.5+1.0+2.0)/4
	if got := s.Value(); got != 1.5 {
		t.Errorf("Value() = %v, want 1.5", got)
	}
}

func TestSmootherNoDrift(t *testing.T) {
	s, _ := NewSmoother(3, 0, DeadBand{})
	for i := 0; i < 100000; i++ {
		s.Update(0.1 * float64(i%7))
	}
	var sum float64
	for _, v := range s.Samples() {
		sum += v
	}
	if math.Abs(s.Value()-sum/3) > 1e-9 {
		t.Errorf("Value() = %v drifted from buffer mean %v", s.Value(), sum/3)
	}
}

func TestSourceSetGet(t *testing.T) {
	src := NewSource(1.5)
	if src.Get() != 1.5 {
		t.Errorf("Get() = %v, want 1.5", src.Get())
	}
	src.Set(-7)
	if src.Get() != -7 {
		t.Errorf("Get() = %v, want -7", src.Get())
	}
}

func TestSourceToggle(t *testing.T) {
	src := NewSource(1.5)
	if got := src.Toggle(1, 2); got != 2 {
		t.Errorf("first Toggle = %v, want 2", got)
	}
	if got := src.Toggle(1, 2); got != 1 {
		t.Errorf("second Toggle = %v, want 1", got)
	}
	if got := src.Toggle(1, 2); got != 2 {
		t.Errorf("third Toggle = %v, want 2", got)
	}
}

func TestSourceConcurrentWrites(t *testing.T) {
	src := NewSource(0)
	values := []float64{1, 1.25, 1.5, 1.75, 2}

	var wg sync.WaitGroup
	for _, v := range values {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				src.Set(v)
			}
		}(v)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		got := src.Get()
		valid := got == 0
		for _, v := range values {
			if got == v {
				valid = true
			}
		}
		if !valid {
			t.Fatalf("torn read: %v", got)
		}
		select {
		case <-done:
			return
		default:
		}
	}
}
