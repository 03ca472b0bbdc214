// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package taa

import (
	"fmt"

	"github.com/gogpu/antialias/frame"
	"github.com/gogpu/antialias/framegraph"
	"github.com/gogpu/antialias/history"
)

// Resource names the node publishes beyond its destination color target.
// The read side must be declared external by whoever owns the graph, since
// the ping-pong textures live outside it.
const (
	ResourceHistoryRead  framegraph.Resource = "taa.history.read"
	ResourceHistoryWrite framegraph.Resource = "taa.history.write"
)

// Node runs Resolve inside a frame graph. It acquires the ping-pong history
// for its view on every execution; flipping after the frame is the graph
// owner's job.
type Node struct {
	cfg  Config
	mgr  *history.Manager
	view history.ViewID

	color  framegraph.Resource
	depth  framegraph.Resource
	motion framegraph.Resource
	dst    framegraph.Resource

	output *frame.ColorBuffer
}

// NewNode validates cfg and binds the node to its view and resources.
func NewNode(cfg Config, mgr *history.Manager, view history.ViewID,
	color, depth, motion, dst framegraph.Resource) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if mgr == nil {
		return nil, fmt.Errorf("taa: node: nil history manager")
	}
	return &Node{
		cfg:    cfg,
		mgr:    mgr,
		view:   view,
		color:  color,
		depth:  depth,
		motion: motion,
		dst:    dst,
	}, nil
}

func (n *Node) Name() string { return "taa.resolve" }

func (n *Node) Reads() []framegraph.Resource {
	return []framegraph.Resource{n.color, n.depth, n.motion, ResourceHistoryRead}
}

func (n *Node) Writes() []framegraph.Resource {
	return []framegraph.Resource{n.dst, ResourceHistoryWrite}
}

func (n *Node) Execute(ctx *framegraph.ExecContext) error {
	color, err := ctx.Color(n.color)
	if err != nil {
		return err
	}
	depth, err := ctx.Depth(n.depth)
	if err != nil {
		return err
	}
	motion, err := ctx.Motion(n.motion)
	if err != nil {
		return err
	}

	extent := color.Extent()
	tex, err := n.mgr.Acquire(n.view, extent)
	if err != nil {
		return err
	}

	in := Input{
		Color:      color,
		Depth:      depth,
		Motion:     motion,
		History:    tex.Read,
		HistoryOut: tex.Write,
		Reset:      tex.Reset,
	}
	if n.cfg.DepthRejection {
		dtex, err := n.mgr.AcquireDepth(n.view)
		if err != nil {
			return err
		}
		in.DepthHistory = dtex.Read
		in.DepthHistoryOut = dtex.Write
	}

	if n.output == nil || n.output.Extent() != extent {
		n.output = frame.NewColorBuffer(extent.Width, extent.Height)
	}
	if err := Resolve(n.output, in, n.cfg); err != nil {
		return err
	}

	ctx.Set(n.dst, n.output)
	ctx.Set(ResourceHistoryWrite, tex.Write)
	return nil
}
