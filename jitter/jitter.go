// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package jitter generates the deterministic sub-pixel camera offsets that
// drive temporal anti-aliasing. Each frame the camera projection is displaced
// by a fraction of a pixel so that, over a short window of frames, samples
// cover different positions inside every pixel. The temporal resolve pass
// then accumulates them into a super-sampled result.
//
// Offsets come from the Halton (2, 3) low-discrepancy sequence mapped into
// [-0.5, 0.5] pixel units. The sequence is periodic and restartable: whenever
// temporal history is invalidated the caller resets it to index 0 so that
// accumulation restarts from a known phase.
package jitter

import (
	"errors"

	"golang.org/x/image/math/f32"
)

// DefaultLength is the default sequence period. Eight Halton terms cover the
// pixel evenly while keeping the convergence window short.
const DefaultLength = 8

// ErrBadLength is returned for sequence lengths less than one.
var ErrBadLength = errors.New("jitter: sequence length must be at least 1")

// Halton returns the radical inverse of index in the given base, the index-th
// term of the Halton sequence in [0, 1).
func Halton(base, index uint32) float32 {
	var result float32
	f := float32(1)
	for index > 0 {
		f /= float32(base)
		result += f * float32(index%base)
		index /= base
	}
	return result
}

// Sequence is a periodic, restartable sub-pixel offset sequence.
//
// A Sequence is owned by a single view and is not safe for concurrent use.
type Sequence struct {
	offsets []f32.Vec2
	index   uint32
}

// NewSequence creates a sequence with the given period. Terms are the Halton
// (2, 3) pairs starting at sample 1 (sample 0 is the degenerate origin and is
// skipped), shifted into [-0.5, 0.5] pixel units.
func NewSequence(length int) (*Sequence, error) {
	if length < 1 {
		return nil, ErrBadLength
	}
	offsets := make([]f32.Vec2, length)
	for i := range offsets {
		offsets[i] = f32.Vec2{
			Halton(2, uint32(i)+1) - 0.5,
			Halton(3, uint32(i)+1) - 0.5,
		}
	}
	return &Sequence{offsets: offsets}, nil
}

// NewDefaultSequence creates a sequence with DefaultLength terms.
func NewDefaultSequence() *Sequence {
	s, _ := NewSequence(DefaultLength)
	return s
}

// Length returns the sequence period.
func (s *Sequence) Length() int { return len(s.offsets) }

// Index returns the current position within the period.
func (s *Sequence) Index() uint32 { return s.index }

// Offset returns the current term without advancing.
func (s *Sequence) Offset() f32.Vec2 {
	return s.offsets[s.index]
}

// Next returns the current term and advances the sequence, wrapping at the
// period.
func (s *Sequence) Next() (dx, dy float32) {
	o := s.offsets[s.index]
	s.index = (s.index + 1) % uint32(len(s.offsets))
	return o[0], o[1]
}

// Reset rewinds the sequence to index 0. Called when temporal history is
// invalidated so accumulation restarts from a known phase.
func (s *Sequence) Reset() {
	s.index = 0
}

// JitterProjection displaces a row-major perspective projection matrix by a
// sub-pixel offset in pixel units. The offset is converted to a translation
// of the projected XY by (2*dx/width, -2*dy/height) in NDC, which moves the
// rendered image by exactly (dx, dy) pixels.
//
// Orthographic matrices (m[15] == 1) are left untouched and false is
// returned; the renderer should skip jittering such views.
func JitterProjection(m *f32.Mat4, offset f32.Vec2, width, height float32) bool {
	if m[15] == 1.0 {
		return false
	}
	m[2] += 2.0 * offset[0] / width
	m[6] += -2.0 * offset[1] / height
	return true
}
