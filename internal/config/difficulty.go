package config

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/meyendtris/internal/core"
)

// DifficultyPreset represents a named pacing profile. Presets shift the
// signal-mapped ranges; the signal still decides where in the range the
// game runs.
type DifficultyPreset string

const (
	DifficultyRelaxed DifficultyPreset = "relaxed"
	DifficultyNormal  DifficultyPreset = "normal"
	DifficultyIntense DifficultyPreset = "intense"
)

// Presets lists the known presets in display order.
func Presets() []DifficultyPreset {
	return []DifficultyPreset{DifficultyRelaxed, DifficultyNormal, DifficultyIntense}
}

// ParsePreset resolves a preset name case-insensitively. An empty name
// means normal.
func ParsePreset(name string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(strings.ToLower(strings.TrimSpace(name))); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyRelaxed, DifficultyNormal, DifficultyIntense:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown preset %q", name)
	}
}

// ApplyPreset modifies the config based on a difficulty preset. Normal
// leaves the loaded values untouched.
func ApplyPreset(cfg *MeyendtrisConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyRelaxed:
		cfg.Timing.MoveTimeRange = core.R(0.6, 2.0)
		cfg.Dwell.DropRange = core.R(150, 400)
		cfg.Dwell.RotationRange = core.R(45, 150)
		cfg.Music.PlayRateRange = core.R(1.25, 0.75)
	case DifficultyIntense:
		cfg.Timing.MoveTimeRange = core.R(0.25, 1.0)
		cfg.Dwell.DropRange = core.R(60, 200)
		cfg.Dwell.RotationRange = core.R(20, 80)
		cfg.Music.PlayRateRange = core.R(1.75, 1.0)
	}
}
