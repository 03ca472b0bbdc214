// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package framegraph schedules render passes from declared data dependencies.
//
// Each pass is a Node that names the logical resources it reads and writes.
// The graph derives execution order purely from those declarations with a
// topological sort; passes never rely on registration order. Cycles, multiple
// writers of one resource, and reads of resources nobody produces are all
// rejected when the graph is compiled, so scheduling mistakes surface at
// build time rather than as per-frame corruption.
package framegraph

import (
	"errors"
	"fmt"
)

// Resource is the logical name of a buffer flowing between nodes.
type Resource string

// Node is a render pass with declared data dependencies.
//
// Reads and Writes must be complete: the scheduler orders passes only by what
// they declare. A node must not list the same resource in both sets; in-place
// updates are expressed as a read of one logical name and a write of another
// (ping-pong), which keeps read-after-write hazards structurally impossible.
type Node interface {
	// Name identifies the node in diagnostics.
	Name() string

	// Reads returns the resources the node consumes.
	Reads() []Resource

	// Writes returns the resources the node produces.
	Writes() []Resource

	// Execute runs the pass against the frame's resource table.
	Execute(ctx *ExecContext) error
}

// Errors reported when compiling a graph.
var (
	ErrCycle           = errors.New("framegraph: dependency cycle")
	ErrMultipleWriters = errors.New("framegraph: resource has multiple writers")
	ErrInPlaceWrite    = errors.New("framegraph: node reads and writes the same resource")
	ErrUnknownResource = errors.New("framegraph: read of resource with no writer")
)

// Graph is a set of nodes plus the externally supplied resources they may
// read. A Graph is built once per view configuration and executed once per
// frame; it is not safe for concurrent use.
type Graph struct {
	nodes     []Node
	externals map[Resource]bool

	order []Node // compiled execution order, nil until Compile
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{externals: make(map[Resource]bool)}
}

// Add registers a node. Registration order does not influence scheduling
// beyond breaking ties between independent nodes.
func (g *Graph) Add(n Node) {
	g.nodes = append(g.nodes, n)
	g.order = nil
}

// AddExternal declares a resource produced outside the graph (for example
// the rasterizer's color, depth and velocity buffers). Reads of undeclared,
// unwritten resources fail compilation.
func (g *Graph) AddExternal(r Resource) {
	g.externals[r] = true
	g.order = nil
}

// Compile resolves the execution order from declared reads and writes.
// The order is cached until the node set changes.
func (g *Graph) Compile() ([]Node, error) {
	if g.order != nil {
		return g.order, nil
	}

	writer := make(map[Resource]int, len(g.nodes))
	for i, n := range g.nodes {
		reads := make(map[Resource]bool, len(n.Reads()))
		for _, r := range n.Reads() {
			reads[r] = true
		}
		for _, r := range n.Writes() {
			if reads[r] {
				return nil, fmt.Errorf("%w: %q in node %q", ErrInPlaceWrite, r, n.Name())
			}
			if prev, ok := writer[r]; ok {
				return nil, fmt.Errorf("%w: %q written by %q and %q",
					ErrMultipleWriters, r, g.nodes[prev].Name(), n.Name())
			}
			writer[r] = i
		}
	}

	// Edge u -> v when v reads something u writes.
	indegree := make([]int, len(g.nodes))
	successors := make([][]int, len(g.nodes))
	for i, n := range g.nodes {
		for _, r := range n.Reads() {
			w, ok := writer[r]
			if !ok {
				if g.externals[r] {
					continue
				}
				return nil, fmt.Errorf("%w: %q read by %q", ErrUnknownResource, r, n.Name())
			}
			successors[w] = append(successors[w], i)
			indegree[i]++
		}
	}

	// Kahn's algorithm. The ready queue preserves registration order so the
	// schedule is deterministic across runs.
	queue := make([]int, 0, len(g.nodes))
	for i := range g.nodes {
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]Node, 0, len(g.nodes))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, g.nodes[i])
		for _, s := range successors[i] {
			indegree[s]--
			if indegree[s] == 0 {
				queue = append(queue, s)
			}
		}
	}

	if len(order) != len(g.nodes) {
		var stuck []string
		for i, d := range indegree {
			if d > 0 {
				stuck = append(stuck, g.nodes[i].Name())
			}
		}
		return nil, fmt.Errorf("%w involving %v", ErrCycle, stuck)
	}

	g.order = order
	return order, nil
}

// Execute compiles the graph if needed and runs every node in dependency
// order against ctx. The first node error aborts the frame.
func (g *Graph) Execute(ctx *ExecContext) error {
	order, err := g.Compile()
	if err != nil {
		return err
	}
	for _, n := range order {
		if err := n.Execute(ctx); err != nil {
			return fmt.Errorf("framegraph: node %q: %w", n.Name(), err)
		}
	}
	return nil
}
