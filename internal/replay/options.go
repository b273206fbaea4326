package replay

import (
	"log/slog"

	"github.com/json-to-terraform/connector/internal/config"
	"github.com/json-to-terraform/connector/internal/connector"
	"github.com/json-to-terraform/connector/internal/endpoint"
	"github.com/json-to-terraform/connector/internal/logger"
)

// Capacity decides how many anchors an owner gets per resource type.
type Capacity string

const (
	// CapacityLinked gives an owner one anchor per resource it links to. User gestures get
	// one spare anchor for the duration of the drag.
	CapacityLinked Capacity = "linked"
	// CapacityAvailable gives an owner one anchor per mounted resource of the type.
	CapacityAvailable Capacity = "available"
)

// Options configures the replay behavior.
type Options struct {
	Capacity Capacity
	ReadOnly bool
	// EmitHCL renders the final canvas as Terraform files when true.
	EmitHCL bool
	// MaxTicks bounds the ticks run after each step.
	MaxTicks    int
	Placeholder string
	Endpoints   endpoint.Options
	Logger      *slog.Logger
}

// DefaultOptions returns default replay options.
func DefaultOptions() Options {
	return Options{
		Capacity:    CapacityLinked,
		EmitHCL:     true,
		MaxTicks:    100,
		Placeholder: connector.DefaultPlaceholder,
		Endpoints:   endpoint.DefaultOptions(),
		Logger:      logger.Default,
	}
}

// FromConfig returns replay options for cfg.
func FromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	opts.Capacity = Capacity(cfg.Replay.Capacity)
	opts.ReadOnly = cfg.Replay.ReadOnly
	opts.EmitHCL = cfg.Replay.EmitHCL
	opts.MaxTicks = cfg.Replay.MaxTicks
	opts.Placeholder = cfg.Volume.Placeholder
	opts.Endpoints.AnchorSegments = cfg.Canvas.AnchorSegments
	opts.Endpoints.Layout = endpoint.Layout{Size: cfg.Canvas.AnchorSize, Gap: cfg.Canvas.AnchorGap}
	return opts
}
