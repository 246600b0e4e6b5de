package config

import (
	"errors"
	"fmt"
)

// MinFieldSize is the smallest accepted row and column count.
const MinFieldSize = 4

// Validate rejects configurations the module cannot run with. All
// problems are reported together.
func Validate(cfg MeyendtrisConfig) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if cfg.Field.Rows < MinFieldSize || cfg.Field.Cols < MinFieldSize {
		add("field: %dx%d is smaller than %dx%d", cfg.Field.Rows, cfg.Field.Cols, MinFieldSize, MinFieldSize)
	}
	if cfg.Field.RotationRows < 0 || cfg.Field.RotationRows > cfg.Field.Rows {
		add("field: rotation_rows %d outside [0, %d]", cfg.Field.RotationRows, cfg.Field.Rows)
	}

	if cfg.Signal.InputRange.Span() == 0 {
		add("signal: input_range [%g, %g] has zero width", cfg.Signal.InputRange.From, cfg.Signal.InputRange.To)
	}
	if cfg.Signal.BufferLength < 1 {
		add("signal: buffer_length must be at least 1, got %d", cfg.Signal.BufferLength)
	}
	if db := cfg.Signal.DeadBand; db.Enabled && db.Low > db.High {
		add("signal: dead_band low %g exceeds high %g", db.Low, db.High)
	}

	if cfg.Timing.FPS < 1 {
		add("timing: fps must be positive, got %d", cfg.Timing.FPS)
	}
	if cfg.Timing.MoveTimeRange.Min() <= 0 {
		add("timing: move_time_range must be positive")
	}

	if cfg.Undo.Probability < 0 || cfg.Undo.Probability > 1 {
		add("undo: probability %g outside [0, 1]", cfg.Undo.Probability)
	}

	if cfg.Gaze.Margin < 0 {
		add("gaze: margin must not be negative")
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
}
