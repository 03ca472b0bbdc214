// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"errors"
	"fmt"

	"github.com/gogpu/antialias/frame"
)

// Errors reported when nodes access the resource table.
var (
	ErrMissingResource = errors.New("framegraph: resource not present")
	ErrResourceType    = errors.New("framegraph: resource has unexpected type")
)

// ExecContext is the per-frame resource table shared by the nodes of one
// graph execution. External inputs are seeded before Execute; each node adds
// the buffers it produces under their declared names.
type ExecContext struct {
	resources map[Resource]any
}

// NewExecContext creates an empty resource table.
func NewExecContext() *ExecContext {
	return &ExecContext{resources: make(map[Resource]any)}
}

// Set stores a resource under its logical name, replacing any previous value.
func (c *ExecContext) Set(name Resource, v any) {
	c.resources[name] = v
}

// Get returns the resource stored under name.
func (c *ExecContext) Get(name Resource) (any, bool) {
	v, ok := c.resources[name]
	return v, ok
}

// Color returns the color buffer stored under name.
func (c *ExecContext) Color(name Resource) (*frame.ColorBuffer, error) {
	v, ok := c.resources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingResource, name)
	}
	b, ok := v.(*frame.ColorBuffer)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T, want *frame.ColorBuffer", ErrResourceType, name, v)
	}
	return b, nil
}

// Depth returns the depth buffer stored under name.
func (c *ExecContext) Depth(name Resource) (*frame.DepthBuffer, error) {
	v, ok := c.resources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingResource, name)
	}
	b, ok := v.(*frame.DepthBuffer)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T, want *frame.DepthBuffer", ErrResourceType, name, v)
	}
	return b, nil
}

// Motion returns the motion vector buffer stored under name.
func (c *ExecContext) Motion(name Resource) (*frame.MotionBuffer, error) {
	v, ok := c.resources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingResource, name)
	}
	b, ok := v.(*frame.MotionBuffer)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T, want *frame.MotionBuffer", ErrResourceType, name, v)
	}
	return b, nil
}
