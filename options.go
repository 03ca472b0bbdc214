package antialias

import (
	"github.com/gogpu/antialias/jitter"
	"github.com/gogpu/antialias/lut"
	"github.com/gogpu/antialias/smaa"
	"github.com/gogpu/antialias/taa"
)

// Option configures a Pipeline during creation.
// Use functional options to customize Pipeline behavior.
//
// Example:
//
//	// Default: SMAA High + TAA with standard tuning
//	p, err := antialias.New()
//
//	// Temporal-only with depth rejection
//	cfg := taa.DefaultConfig()
//	cfg.DepthRejection = true
//	p, err := antialias.New(antialias.WithoutSMAA(), antialias.WithTAA(cfg))
type Option func(*config)

// PassOrder selects how the spatial and temporal passes chain when both are
// enabled.
type PassOrder int

const (
	// OrderSMAAThenTAA runs SMAA on the rasterized color and feeds its
	// result to the temporal resolve. This is the default.
	OrderSMAAThenTAA PassOrder = iota

	// OrderTAAThenSMAA resolves the raw color temporally first and runs the
	// spatial pass on the accumulated result.
	OrderTAAThenSMAA
)

// config holds the resolved configuration for Pipeline creation.
type config struct {
	smaaEnabled  bool
	smaaConfig   smaa.Config
	taaEnabled   bool
	taaConfig    taa.Config
	order        PassOrder
	jitterLength int
	tables       lut.Provider
}

// defaultPipelineConfig returns the default pipeline configuration.
func defaultPipelineConfig() config {
	return config{
		smaaEnabled:  true,
		smaaConfig:   smaa.PresetHigh.Config(),
		taaEnabled:   true,
		taaConfig:    taa.DefaultConfig(),
		order:        OrderSMAAThenTAA,
		jitterLength: jitter.DefaultLength,
	}
}

// WithSMAA enables the spatial pass with the given quality preset.
//
// Example:
//
//	p, err := antialias.New(antialias.WithSMAA(smaa.PresetUltra))
func WithSMAA(preset smaa.Preset) Option {
	return func(c *config) {
		c.smaaEnabled = true
		c.smaaConfig = preset.Config()
	}
}

// WithSMAAConfig enables the spatial pass with explicit tuning instead of a
// preset.
func WithSMAAConfig(cfg smaa.Config) Option {
	return func(c *config) {
		c.smaaEnabled = true
		c.smaaConfig = cfg
	}
}

// WithoutSMAA disables the spatial pass.
func WithoutSMAA() Option {
	return func(c *config) {
		c.smaaEnabled = false
	}
}

// WithTAA enables the temporal pass with the given tuning.
//
// Example:
//
//	cfg := taa.DefaultConfig()
//	cfg.DepthRejection = true
//	p, err := antialias.New(antialias.WithTAA(cfg))
func WithTAA(cfg taa.Config) Option {
	return func(c *config) {
		c.taaEnabled = true
		c.taaConfig = cfg
	}
}

// WithoutTAA disables the temporal pass. Views still carry a jitter sequence,
// but without accumulation the renderer should usually skip jittering too.
func WithoutTAA() Option {
	return func(c *config) {
		c.taaEnabled = false
	}
}

// WithPassOrder selects the chaining of the two passes when both are enabled.
func WithPassOrder(o PassOrder) Option {
	return func(c *config) {
		c.order = o
	}
}

// WithJitterLength sets the length of the per-view jitter sequence.
// Valid lengths are 8 through 16; the default is jitter.DefaultLength.
func WithJitterLength(n int) Option {
	return func(c *config) {
		c.jitterLength = n
	}
}

// WithLookupTables supplies externally loaded SMAA lookup tables instead of
// the procedurally generated defaults. Tables with wrong dimensions are a
// configuration error and disable the spatial pass.
func WithLookupTables(p lut.Provider) Option {
	return func(c *config) {
		c.tables = p
	}
}
