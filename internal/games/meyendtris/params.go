package meyendtris

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnknownParam is returned for a parameter outside the whitelist.
var ErrUnknownParam = errors.New("meyendtris: unknown parameter")

// Settable parameter names as accepted over the remote link.
const (
	ParamBCI               = "bci"
	ParamUndoProbability   = "undoProbability"
	ParamMapDwellTimes     = "mapDwellTimes"
	ParamColumnDwellTime   = "columnDwellTime"
	ParamDropDwellTime     = "dropDwellTime"
	ParamRotationDwellTime = "rotationDwellTime"
	ParamShowGaze          = "showGaze"
)

// Params lists the settable parameters.
func Params() []string {
	return []string{
		ParamBCI,
		ParamUndoProbability,
		ParamMapDwellTimes,
		ParamColumnDwellTime,
		ParamDropDwellTime,
		ParamRotationDwellTime,
		ParamShowGaze,
	}
}

// NormalizeParam lower-cases a parameter name and strips a leading
// "self." so "self.bci" and "BCI" both name the signal.
func NormalizeParam(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimPrefix(name, "self.")
}

// Set assigns a whitelisted parameter from its textual value. Dwell times
// set here are overwritten every frame while dwell mapping is on.
func (e *Engine) Set(name, value string) error {
	value = strings.TrimSpace(value)

	switch NormalizeParam(name) {
	case strings.ToLower(ParamBCI):
		v, err := parseFloat(name, value)
		if err != nil {
			return err
		}
		e.source.Set(v)

	case strings.ToLower(ParamUndoProbability):
		v, err := parseFloat(name, value)
		if err != nil {
			return err
		}
		if v < 0 || v > 1 {
			return fmt.Errorf("meyendtris: %s=%g outside [0, 1]", name, v)
		}
		e.undoProbability = v

	case strings.ToLower(ParamMapDwellTimes):
		v, err := parseBool(name, value)
		if err != nil {
			return err
		}
		e.mapDwell = v

	case strings.ToLower(ParamColumnDwellTime):
		return e.setDwell(name, value, &e.dwell.Column)

	case strings.ToLower(ParamDropDwellTime):
		return e.setDwell(name, value, &e.dwell.Drop)

	case strings.ToLower(ParamRotationDwellTime):
		return e.setDwell(name, value, &e.dwell.Rotation)

	case strings.ToLower(ParamShowGaze):
		v, err := parseBool(name, value)
		if err != nil {
			return err
		}
		e.showGaze = v

	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}

	e.logger.Info("parameter set", "name", name, "value", value)
	return nil
}

func (e *Engine) setDwell(name, value string, dst *float64) error {
	v, err := parseFloat(name, value)
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("meyendtris: %s=%g is negative", name, v)
	}
	*dst = v
	e.selector.SetThresholds(e.dwell)
	e.logger.Info("parameter set", "name", name, "value", value)
	return nil
}

func parseFloat(name, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("meyendtris: %s: %w", name, err)
	}
	if math.IsNaN(v) {
		return 0, fmt.Errorf("meyendtris: %s is not a number", name)
	}
	return v, nil
}

func parseBool(name, value string) (bool, error) {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("meyendtris: %s: %w", name, err)
	}
	return v, nil
}

// UndoProbability returns the current undo chance.
func (e *Engine) UndoProbability() float64 { return e.undoProbability }

// MapDwellTimes reports whether dwell times follow the signal.
func (e *Engine) MapDwellTimes() bool { return e.mapDwell }

// ShowGaze reports whether the cursor is drawn.
func (e *Engine) ShowGaze() bool { return e.showGaze }
