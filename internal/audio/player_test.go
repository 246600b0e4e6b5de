package audio

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/meyendtris/internal/core"
)

func TestClampRate(t *testing.T) {
	limits := core.R(1.5, 0.75)

	tests := []struct {
		name   string
		rate   float64
		limits core.Range
		want   float64
	}{
		{"inside", 1.0, limits, 1.0},
		{"above", 3, limits, 1.5},
		{"below", 0.1, limits, 0.75},
		{"no limits", 2.5, core.Range{}, 2.5},
		{"non-positive", -1, core.Range{}, rateEpsilon},
		{"nan", math.NaN(), limits, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClampRate(tc.rate, tc.limits); got != tc.want {
				t.Errorf("ClampRate(%v, %+v) = %v, want %v", tc.rate, tc.limits, got, tc.want)
			}
		})
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.mp3"), core.R(1.5, 0.75)); err == nil {
		t.Error("Open() on a missing file should fail")
	}
}
