package antialias

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/antialias/framegraph"
	"github.com/gogpu/antialias/history"
	"github.com/gogpu/antialias/jitter"
	"github.com/gogpu/antialias/lut"
	"github.com/gogpu/antialias/smaa"
	"github.com/gogpu/antialias/taa"
)

// ViewID identifies one rendered view (camera, viewport, XR eye).
type ViewID = history.ViewID

// Logical resource names of the per-view frame graph. Color, depth and
// velocity are externals supplied by the rasterizer through FrameInput.
const (
	ResourceColor     framegraph.Resource = "color"
	ResourceDepth     framegraph.Resource = "depth"
	ResourceVelocity  framegraph.Resource = "velocity"
	ResourceSMAAColor framegraph.Resource = "smaa.color"
	ResourceTAAColor  framegraph.Resource = "taa.color"
)

// Pipeline owns the anti-aliasing configuration and the temporal state of all
// views. Shared state is immutable or internally synchronized, so frames of
// different views may be resolved concurrently; a single View must not be
// used from multiple goroutines at once.
type Pipeline struct {
	cfg     config
	tables  *lut.Tables
	history *history.Manager

	mu    sync.Mutex
	views map[ViewID]*View
}

// New builds a Pipeline from the given options.
//
// Configuration errors disable the affected pass and are reported once in the
// returned error; the Pipeline itself stays usable with the remaining passes
// (a Pipeline with everything disabled simply passes color through). Callers
// that want strict behavior check the error, callers that want best-effort
// behavior use the Pipeline regardless.
func New(opts ...Option) (*Pipeline, error) {
	cfg := defaultPipelineConfig()
	for _, o := range opts {
		o(&cfg)
	}

	p := &Pipeline{
		cfg:     cfg,
		history: history.NewManager(),
		views:   make(map[ViewID]*View),
	}

	var errs []error

	if cfg.jitterLength < 8 || cfg.jitterLength > 16 {
		errs = append(errs, fmt.Errorf("antialias: jitter length %d outside [8, 16]", cfg.jitterLength))
		p.cfg.jitterLength = jitter.DefaultLength
	}

	if p.cfg.smaaEnabled {
		if err := p.cfg.smaaConfig.Validate(); err != nil {
			errs = append(errs, err)
			p.cfg.smaaEnabled = false
		}
	}
	if p.cfg.taaEnabled {
		if err := p.cfg.taaConfig.Validate(); err != nil {
			errs = append(errs, err)
			p.cfg.taaEnabled = false
		}
	}

	if p.cfg.smaaEnabled {
		if cfg.tables != nil {
			t, err := lut.FromProvider(cfg.tables)
			if err != nil {
				errs = append(errs, err)
				p.cfg.smaaEnabled = false
			} else {
				p.tables = t
			}
		} else {
			p.tables = lut.Default()
		}
	}

	Logger().Info("antialias: pipeline built",
		"smaa", p.cfg.smaaEnabled,
		"taa", p.cfg.taaEnabled,
		"jitter_length", p.cfg.jitterLength)

	return p, errors.Join(errs...)
}

// SMAAEnabled reports whether the spatial pass survived configuration.
func (p *Pipeline) SMAAEnabled() bool { return p.cfg.smaaEnabled }

// TAAEnabled reports whether the temporal pass survived configuration.
func (p *Pipeline) TAAEnabled() bool { return p.cfg.taaEnabled }

// View returns the state for the given view, creating it on first use.
func (p *Pipeline) View(id ViewID) *View {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.views[id]
	if !ok {
		v = p.newView(id)
		p.views[id] = v
	}
	return v
}

// RemoveView releases the per-view state, including its history buffers.
// In-flight frames of the view must have completed.
func (p *Pipeline) RemoveView(id ViewID) {
	p.mu.Lock()
	delete(p.views, id)
	p.mu.Unlock()
	p.history.Remove(id)
}

// InvalidateHistory forces a temporal reset of every view, for example after
// a global scene swap. Per-view resets go through FrameInput.ResetHistory.
func (p *Pipeline) InvalidateHistory() {
	p.history.InvalidateAll()
	p.mu.Lock()
	for _, v := range p.views {
		v.jitter.Reset()
	}
	p.mu.Unlock()
}

// newView wires the frame graph for one view. Called with p.mu held.
func (p *Pipeline) newView(id ViewID) *View {
	v := &View{id: id, p: p}

	if p.cfg.jitterLength == jitter.DefaultLength {
		v.jitter = jitter.NewDefaultSequence()
	} else {
		seq, err := jitter.NewSequence(p.cfg.jitterLength)
		if err != nil {
			seq = jitter.NewDefaultSequence()
		}
		v.jitter = seq
	}

	g := framegraph.New()
	g.AddExternal(ResourceColor)
	g.AddExternal(ResourceDepth)
	g.AddExternal(ResourceVelocity)

	smaaSrc, taaSrc := ResourceColor, ResourceColor
	out := ResourceColor
	if p.cfg.smaaEnabled && p.cfg.taaEnabled {
		switch p.cfg.order {
		case OrderTAAThenSMAA:
			smaaSrc, out = ResourceTAAColor, ResourceSMAAColor
		default:
			taaSrc, out = ResourceSMAAColor, ResourceTAAColor
		}
	} else if p.cfg.smaaEnabled {
		out = ResourceSMAAColor
	} else if p.cfg.taaEnabled {
		out = ResourceTAAColor
	}

	if p.cfg.smaaEnabled {
		sp, err := smaa.NewPipeline(p.cfg.smaaConfig, p.tables)
		if err != nil {
			// Validated in New, so this cannot normally happen.
			Logger().Warn("antialias: spatial pass disabled for view", "view", id, "err", err)
		} else {
			v.smaa = sp
			for _, n := range sp.Nodes(smaaSrc, ResourceSMAAColor) {
				g.Add(n)
			}
		}
	}
	if p.cfg.taaEnabled {
		node, err := taa.NewNode(p.cfg.taaConfig, p.history, id,
			taaSrc, ResourceDepth, ResourceVelocity, ResourceTAAColor)
		if err != nil {
			Logger().Warn("antialias: temporal pass disabled for view", "view", id, "err", err)
		} else {
			v.taa = node
			g.Add(node)
			g.AddExternal(taa.ResourceHistoryRead)
		}
	}

	v.graph = g
	v.output = out
	return v
}
