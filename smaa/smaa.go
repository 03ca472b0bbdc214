// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package smaa implements subpixel morphological anti-aliasing as three
// passes over frame buffers.
//
// The first pass detects luma edges, the second classifies the edge shapes
// and computes blending weights with the help of two precomputed lookup
// tables (package lut), and the third blends each pixel with its neighbors
// according to those weights. Straight edges pass through unchanged; only
// staircase patterns are revectorized.
//
// The passes can run standalone through Pipeline.Process or be wired into a
// framegraph.Graph through Pipeline.Nodes.
package smaa

import (
	"errors"
	"fmt"
)

// ErrConfig is returned when a Config fails validation. Pipelines refuse to
// build with an invalid config rather than degrade at frame time.
var ErrConfig = errors.New("smaa: invalid config")

// Config tunes edge detection and the pattern searches.
type Config struct {
	// Threshold is the minimum luma delta that registers as an edge.
	// Sensible values lie in [0.05, 0.5]; lower catches more edges.
	Threshold float32

	// LocalContrastAdaptationFactor suppresses edges that are much weaker
	// than the strongest delta in their neighborhood.
	LocalContrastAdaptationFactor float32

	// MaxSearchSteps bounds the horizontal and vertical edge-end searches.
	// Each step covers two texels, so the reachable pattern length is about
	// twice this value.
	MaxSearchSteps int

	// MaxSearchStepsDiag bounds the diagonal searches. Zero disables
	// diagonal pattern handling entirely.
	MaxSearchStepsDiag int

	// CornerRounding is the percentage of corner coverage that is kept
	// blended. 0 preserves corners fully sharp, 100 disables corner
	// handling.
	CornerRounding int
}

// Validate reports whether the config is usable. All errors wrap ErrConfig.
func (c Config) Validate() error {
	if !(c.Threshold > 0 && c.Threshold <= 0.5) {
		return fmt.Errorf("%w: threshold %v outside (0, 0.5]", ErrConfig, c.Threshold)
	}
	if c.LocalContrastAdaptationFactor < 1 {
		return fmt.Errorf("%w: local contrast adaptation factor %v below 1",
			ErrConfig, c.LocalContrastAdaptationFactor)
	}
	if c.MaxSearchSteps < 1 || c.MaxSearchSteps > 112 {
		return fmt.Errorf("%w: max search steps %d outside [1, 112]", ErrConfig, c.MaxSearchSteps)
	}
	if c.MaxSearchStepsDiag < 0 || c.MaxSearchStepsDiag > 20 {
		return fmt.Errorf("%w: max diagonal search steps %d outside [0, 20]",
			ErrConfig, c.MaxSearchStepsDiag)
	}
	if c.CornerRounding < 0 || c.CornerRounding > 100 {
		return fmt.Errorf("%w: corner rounding %d outside [0, 100]", ErrConfig, c.CornerRounding)
	}
	return nil
}

// Preset selects a predefined quality/cost tradeoff.
type Preset int

const (
	PresetLow Preset = iota
	PresetMedium
	PresetHigh
	PresetUltra
)

// Config returns the settings for the preset. Unknown values fall back to
// PresetHigh.
func (p Preset) Config() Config {
	switch p {
	case PresetLow:
		return Config{
			Threshold:                     0.15,
			LocalContrastAdaptationFactor: 2.0,
			MaxSearchSteps:                4,
			MaxSearchStepsDiag:            0,
			CornerRounding:                100,
		}
	case PresetMedium:
		return Config{
			Threshold:                     0.1,
			LocalContrastAdaptationFactor: 2.0,
			MaxSearchSteps:                8,
			MaxSearchStepsDiag:            0,
			CornerRounding:                100,
		}
	case PresetUltra:
		return Config{
			Threshold:                     0.05,
			LocalContrastAdaptationFactor: 2.0,
			MaxSearchSteps:                32,
			MaxSearchStepsDiag:            16,
			CornerRounding:                25,
		}
	default:
		return Config{
			Threshold:                     0.1,
			LocalContrastAdaptationFactor: 2.0,
			MaxSearchSteps:                16,
			MaxSearchStepsDiag:            8,
			CornerRounding:                25,
		}
	}
}

func (p Preset) String() string {
	switch p {
	case PresetLow:
		return "low"
	case PresetMedium:
		return "medium"
	case PresetHigh:
		return "high"
	case PresetUltra:
		return "ultra"
	default:
		return fmt.Sprintf("Preset(%d)", int(p))
	}
}
