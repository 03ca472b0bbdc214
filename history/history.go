// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package history owns the per-view temporal accumulation buffers used by
// the TAA resolve pass.
//
// Each view gets a pair of color buffers used in ping-pong fashion: every
// frame reads the slot written by the previous frame and writes the other,
// then the pair flips. A pass therefore never reads and writes the same
// buffer, which makes read-after-write hazards structurally impossible.
//
// The manager allocates lazily, reallocates when a view's resolution changes
// (invalidating history), and frees buffers on view teardown. Handed-out
// buffers stay valid for as long as the caller references them even across a
// reallocation; the manager never recycles storage in place.
package history

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/antialias/frame"
)

// ViewID identifies a view. IDs are assigned by the embedding renderer.
type ViewID uint64

// ErrBadExtent is returned when a view is acquired with a zero-sized extent.
var ErrBadExtent = errors.New("history: extent must be non-zero")

// Textures is the buffer pair handed to the resolve pass for one frame.
type Textures struct {
	// Read holds the accumulation result of the previous frame.
	Read *frame.ColorBuffer

	// Write receives this frame's accumulation result.
	Write *frame.ColorBuffer

	// Reset reports that Read holds no usable history: the pair was just
	// allocated, the view's resolution changed, or the view was invalidated.
	// The resolve pass must ignore Read and output the current color.
	Reset bool
}

// DepthTextures is the optional depth history pair used for depth-based
// history rejection.
type DepthTextures struct {
	Read  *frame.DepthBuffer
	Write *frame.DepthBuffer
}

type entry struct {
	extent frame.Extent
	color  [2]*frame.ColorBuffer
	depth  [2]*frame.DepthBuffer // nil until depth history is requested
	read   int                   // index of the read slot
	reset  bool
}

// Manager tracks history buffer pairs for any number of views.
// All methods are safe for concurrent use.
type Manager struct {
	mu    sync.Mutex
	views map[ViewID]*entry
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{views: make(map[ViewID]*entry)}
}

// Acquire returns the history pair for the view at the given resolution,
// allocating or reallocating as needed. Calling Acquire again in the same
// frame returns the same pair; the slots only swap on Flip.
func (m *Manager) Acquire(id ViewID, extent frame.Extent) (Textures, error) {
	if extent.IsZero() {
		return Textures{}, fmt.Errorf("%w: view %d: %dx%d", ErrBadExtent, id, extent.Width, extent.Height)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.views[id]
	if !ok || e.extent != extent {
		e = &entry{
			extent: extent,
			color: [2]*frame.ColorBuffer{
				frame.NewColorBuffer(extent.Width, extent.Height),
				frame.NewColorBuffer(extent.Width, extent.Height),
			},
			reset: true,
		}
		// Old buffers (if any) are dropped, not reused: an in-flight frame
		// still holding them keeps them alive on its own.
		m.views[id] = e
	}

	return Textures{
		Read:  e.color[e.read],
		Write: e.color[1-e.read],
		Reset: e.reset,
	}, nil
}

// AcquireDepth returns the depth history pair for the view, allocating it on
// first use. The view's color pair must have been acquired first so the
// extent is known; the depth pair always matches the color extent.
func (m *Manager) AcquireDepth(id ViewID) (DepthTextures, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.views[id]
	if !ok {
		return DepthTextures{}, fmt.Errorf("history: view %d has no history pair", id)
	}
	if e.depth[0] == nil {
		e.depth[0] = frame.NewDepthBuffer(e.extent.Width, e.extent.Height)
		e.depth[1] = frame.NewDepthBuffer(e.extent.Width, e.extent.Height)
	}
	return DepthTextures{
		Read:  e.depth[e.read],
		Write: e.depth[1-e.read],
	}, nil
}

// Flip swaps the read and write slots after a frame's write has completed
// and clears the view's reset flag. Unknown views are ignored.
func (m *Manager) Flip(id ViewID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.views[id]; ok {
		e.read = 1 - e.read
		e.reset = false
	}
}

// Invalidate marks the view's history as unusable without reallocating.
// The next Acquire reports Reset until a frame completes with Flip.
func (m *Manager) Invalidate(id ViewID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.views[id]; ok {
		e.reset = true
	}
}

// InvalidateAll marks every view's history as unusable (scene load).
func (m *Manager) InvalidateAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.views {
		e.reset = true
	}
}

// Remove frees the view's buffers on teardown. Unknown views are ignored.
func (m *Manager) Remove(id ViewID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.views, id)
}

// Len returns the number of views with allocated history.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.views)
}
