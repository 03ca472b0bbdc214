// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package smaa

import (
	"fmt"

	"github.com/gogpu/antialias/frame"
	"github.com/gogpu/antialias/framegraph"
	"github.com/gogpu/antialias/lut"
)

// Resource names of the pipeline's intermediate products in a frame graph.
const (
	ResourceEdges   = framegraph.Resource("smaa.edges")
	ResourceWeights = framegraph.Resource("smaa.weights")
)

// Pipeline owns the configuration, lookup tables and intermediate buffers of
// one SMAA instance. A Pipeline serves a single view; views running in
// parallel each use their own.
type Pipeline struct {
	cfg    Config
	tables *lut.Tables

	edges   *frame.ColorBuffer
	weights *frame.ColorBuffer
	output  *frame.ColorBuffer
}

// NewPipeline validates cfg and builds a pipeline around it. A nil tables
// uses the shared generated pair.
func NewPipeline(cfg Config, tables *lut.Tables) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("smaa: %w", err)
	}
	if tables == nil {
		tables = lut.Default()
	}
	return &Pipeline{cfg: cfg, tables: tables}, nil
}

// Config returns the pipeline's validated configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// ensure sizes the intermediate buffers for the given extent, reallocating
// only when the resolution changes.
func (p *Pipeline) ensure(e frame.Extent) {
	if p.edges != nil && p.edges.Extent() == e {
		return
	}
	p.edges = frame.NewColorBuffer(e.Width, e.Height)
	p.weights = frame.NewColorBuffer(e.Width, e.Height)
	p.output = frame.NewColorBuffer(e.Width, e.Height)
}

// Process runs all three passes, writing the anti-aliased src into dst.
func (p *Pipeline) Process(dst, src *frame.ColorBuffer) error {
	p.ensure(src.Extent())
	if err := DetectEdges(p.edges, src, p.cfg); err != nil {
		return err
	}
	if err := ComputeWeights(p.weights, p.edges, p.tables, p.cfg); err != nil {
		return err
	}
	return BlendNeighborhood(dst, src, p.weights)
}

// Nodes returns the three passes as graph nodes reading the color resource
// src and producing dst. The intermediate edge and weight resources are
// wired internally.
func (p *Pipeline) Nodes(src, dst framegraph.Resource) []framegraph.Node {
	return []framegraph.Node{
		&edgesNode{p: p, src: src},
		&weightsNode{p: p},
		&blendNode{p: p, src: src, dst: dst},
	}
}

type edgesNode struct {
	p   *Pipeline
	src framegraph.Resource
}

func (n *edgesNode) Name() string                  { return "smaa.edges" }
func (n *edgesNode) Reads() []framegraph.Resource  { return []framegraph.Resource{n.src} }
func (n *edgesNode) Writes() []framegraph.Resource { return []framegraph.Resource{ResourceEdges} }

func (n *edgesNode) Execute(ctx *framegraph.ExecContext) error {
	src, err := ctx.Color(n.src)
	if err != nil {
		return err
	}
	n.p.ensure(src.Extent())
	if err := DetectEdges(n.p.edges, src, n.p.cfg); err != nil {
		return err
	}
	ctx.Set(ResourceEdges, n.p.edges)
	return nil
}

type weightsNode struct {
	p *Pipeline
}

func (n *weightsNode) Name() string                  { return "smaa.weights" }
func (n *weightsNode) Reads() []framegraph.Resource  { return []framegraph.Resource{ResourceEdges} }
func (n *weightsNode) Writes() []framegraph.Resource { return []framegraph.Resource{ResourceWeights} }

func (n *weightsNode) Execute(ctx *framegraph.ExecContext) error {
	edges, err := ctx.Color(ResourceEdges)
	if err != nil {
		return err
	}
	n.p.ensure(edges.Extent())
	if err := ComputeWeights(n.p.weights, edges, n.p.tables, n.p.cfg); err != nil {
		return err
	}
	ctx.Set(ResourceWeights, n.p.weights)
	return nil
}

type blendNode struct {
	p        *Pipeline
	src, dst framegraph.Resource
}

func (n *blendNode) Name() string { return "smaa.blend" }
func (n *blendNode) Reads() []framegraph.Resource {
	return []framegraph.Resource{n.src, ResourceWeights}
}
func (n *blendNode) Writes() []framegraph.Resource { return []framegraph.Resource{n.dst} }

func (n *blendNode) Execute(ctx *framegraph.ExecContext) error {
	src, err := ctx.Color(n.src)
	if err != nil {
		return err
	}
	weights, err := ctx.Color(ResourceWeights)
	if err != nil {
		return err
	}
	n.p.ensure(src.Extent())
	if err := BlendNeighborhood(n.p.output, src, weights); err != nil {
		return err
	}
	ctx.Set(n.dst, n.p.output)
	return nil
}
