// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package taa implements temporal anti-aliasing resolve over frame buffers.
//
// Each frame the renderer draws with a subpixel jitter offset (package
// jitter) and hands the result to Resolve together with depth, motion
// vectors and the previous frame's accumulation buffer. The pass reprojects
// the accumulation along the motion vectors, rejects history that no longer
// matches the scene, and blends the survivor with the current frame. Over a
// static scene the accumulated samples converge toward the supersampled
// ground truth; under motion the pass degrades toward the current frame
// instead of ghosting.
//
// History rejection uses neighborhood variance clipping in YCoCg space plus
// an off-screen check, optionally reinforced by depth comparison. Blend
// weight follows per-pixel confidence that is carried in the accumulation
// buffer's alpha channel.
package taa

import (
	"errors"
	"fmt"
)

// ErrConfig is returned when a Config fails validation.
var ErrConfig = errors.New("taa: invalid config")

// Config tunes the resolve pass.
type Config struct {
	// DefaultHistoryBlendRate is the fraction of the current frame blended
	// in when history confidence is low.
	DefaultHistoryBlendRate float32

	// MinHistoryBlendRate is the floor of the blend fraction at full
	// confidence. Keeping it above zero lets slow changes propagate even
	// into a fully converged accumulation.
	MinHistoryBlendRate float32

	// MotionThreshold is the per-axis pixel motion below which a pixel
	// counts as static and its confidence grows.
	MotionThreshold float32

	// Tonemap runs the blend in a tonemapped working space, which tames
	// fireflies in HDR input. The output is mapped back afterwards.
	Tonemap bool

	// DepthRejection compares reprojected history depth against current
	// depth and drops history across disocclusions. Requires the depth
	// history pair.
	DepthRejection bool

	// DepthRejectionThreshold is the relative depth difference above which
	// history is rejected.
	DepthRejectionThreshold float32
}

// DefaultConfig returns the tuning used by the standard pipeline.
func DefaultConfig() Config {
	return Config{
		DefaultHistoryBlendRate: 0.1,
		MinHistoryBlendRate:     0.015,
		MotionThreshold:         0.01,
		Tonemap:                 true,
		DepthRejection:          false,
		DepthRejectionThreshold: 0.1,
	}
}

// Validate reports whether the config is usable. All errors wrap ErrConfig.
func (c Config) Validate() error {
	if !(c.DefaultHistoryBlendRate > 0 && c.DefaultHistoryBlendRate <= 1) {
		return fmt.Errorf("%w: default history blend rate %v outside (0, 1]",
			ErrConfig, c.DefaultHistoryBlendRate)
	}
	if !(c.MinHistoryBlendRate > 0 && c.MinHistoryBlendRate <= 1) {
		return fmt.Errorf("%w: min history blend rate %v outside (0, 1]",
			ErrConfig, c.MinHistoryBlendRate)
	}
	if c.MinHistoryBlendRate > c.DefaultHistoryBlendRate {
		return fmt.Errorf("%w: min history blend rate %v above default %v",
			ErrConfig, c.MinHistoryBlendRate, c.DefaultHistoryBlendRate)
	}
	if c.MotionThreshold < 0 {
		return fmt.Errorf("%w: motion threshold %v negative", ErrConfig, c.MotionThreshold)
	}
	if c.DepthRejection && c.DepthRejectionThreshold <= 0 {
		return fmt.Errorf("%w: depth rejection threshold %v must be positive",
			ErrConfig, c.DepthRejectionThreshold)
	}
	return nil
}
