// Package connector keeps the connections drawn on a diagram surface in step with the
// links an external state layer wants, and turns user gestures on the surface into link
// notifications for that layer.
package connector

import (
	"errors"
	"log/slog"

	"github.com/json-to-terraform/connector/internal/endpoint"
	"github.com/json-to-terraform/connector/internal/logger"
	"github.com/json-to-terraform/connector/internal/move"
	"github.com/json-to-terraform/connector/internal/overlay"
	"github.com/json-to-terraform/connector/internal/registry"
	"github.com/json-to-terraform/connector/internal/surface"
)

// DefaultPlaceholder is the value given to user-drawn links of value-carrying types.
const DefaultPlaceholder = "/container/project/path"

var (
	ErrNoScheduler    = errors.New("reconciler needs a scheduler")
	ErrUnknownOverlay = errors.New("unknown overlay")
	ErrReadOnly       = errors.New("canvas is read-only")
	ErrNotALink       = errors.New("connection does not resolve to a link")
)

// Options configures a Reconciler.
type Options struct {
	ReadOnly bool
	// Endpoints configures the endpoint registry. Its ReadOnly and Logger fields are
	// overridden by the fields above and below.
	Endpoints endpoint.Options
	// Scheduler runs the end of a move suppression window on the next tick.
	Scheduler move.Scheduler
	// Handlers supplies per-type decorations; registry.Default when nil.
	Handlers *registry.Registry
	// Placeholder is the initial value of user-drawn links that carry a value.
	Placeholder string
	Logger      *slog.Logger
}

// DefaultOptions returns options without a scheduler; callers must set one.
func DefaultOptions() Options {
	return Options{
		Endpoints:   endpoint.DefaultOptions(),
		Handlers:    registry.Default,
		Placeholder: DefaultPlaceholder,
		Logger:      logger.Default,
	}
}

// LinkFunc receives a link of the type it was registered for.
type LinkFunc func(ownerID, resourceID string)

// MoveFunc receives the link a user moved and the link it became.
type MoveFunc func(ownerID, resourceID, newOwnerID, newResourceID string)

// ValueFunc receives the new value of a link.
type ValueFunc func(ownerID, resourceID, value string)

// Reconciler drives one surface. It is single-threaded like the surface it drives.
type Reconciler struct {
	surface  *surface.Surface
	reg      *endpoint.Registry
	coord    *move.Coordinator
	handlers *registry.Registry
	opts     Options
	log      *slog.Logger

	onConnect    map[string][]LinkFunc
	onDisconnect map[string][]LinkFunc
	onMoved      map[string][]MoveFunc
	onValue      map[string][]ValueFunc
}

// New binds a reconciler to s. It subscribes to the surface events once, for its lifetime.
func New(s *surface.Surface, opts Options) (*Reconciler, error) {
	if opts.Scheduler == nil {
		return nil, ErrNoScheduler
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default
	}
	if opts.Handlers == nil {
		opts.Handlers = registry.Default
	}
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}
	eopts := opts.Endpoints
	eopts.ReadOnly = opts.ReadOnly
	eopts.Logger = opts.Logger

	r := &Reconciler{
		surface:      s,
		reg:          endpoint.New(s, eopts),
		coord:        move.New(opts.Scheduler),
		handlers:     opts.Handlers,
		opts:         opts,
		log:          opts.Logger,
		onConnect:    make(map[string][]LinkFunc),
		onDisconnect: make(map[string][]LinkFunc),
		onMoved:      make(map[string][]MoveFunc),
		onValue:      make(map[string][]ValueFunc),
	}
	s.OnConnection(r.handleConnection)
	s.OnConnectionDetached(r.handleDetached)
	s.OnConnectionMoved(r.handleMoved)
	s.SetBeforeDrop(r.beforeDrop)
	return r, nil
}

// Surface returns the driven surface.
func (r *Reconciler) Surface() *surface.Surface { return r.surface }

// Endpoints returns the endpoint registry.
func (r *Reconciler) Endpoints() *endpoint.Registry { return r.reg }

// Suppressed returns how many surface notifications move gestures absorbed.
func (r *Reconciler) Suppressed() int { return r.coord.Swallowed() }

// PrepareEndpoints registers the element holding the anchors of an owner.
func (r *Reconciler) PrepareEndpoints(ownerID string, holder surface.ElementID) error {
	return r.reg.PrepareEndpoints(ownerID, holder)
}

// UpdateEndpoints resizes the anchors of (ownerID, resourceType) to len(desired).
func (r *Reconciler) UpdateEndpoints(desired []string, ownerID, resourceType string, metadata map[string]string) {
	r.surface.Batch(func() {
		r.reg.UpdateEndpoints(desired, ownerID, resourceType, metadata)
	})
}

// AddResourceEndpoint makes el the attachment point of a resource.
func (r *Reconciler) AddResourceEndpoint(el surface.ElementID, resourceID, resourceType string) error {
	var err error
	r.surface.Batch(func() {
		err = r.reg.AddResourceEndpoint(el, resourceID, resourceType)
	})
	return err
}

// RemoveResourceEndpoint drops the attachment point of el and its connections, silently.
func (r *Reconciler) RemoveResourceEndpoint(el surface.ElementID) {
	r.surface.Batch(func() {
		r.reg.RemoveResourceEndpoint(el)
	})
}

// OnLayoutChanged repaints every connection after nodes moved or resized.
func (r *Reconciler) OnLayoutChanged() {
	r.surface.RepaintEverything()
}

// SetReadOnly toggles user interaction. Delete affordances are hidden and open value editors
// are cancelled while read-only; leaving read-only makes drawn values editable.
func (r *Reconciler) SetReadOnly(v bool) {
	r.opts.ReadOnly = v
	r.reg.SetReadOnly(v)
	for _, c := range r.surface.Connections() {
		r.syncDeleteAffordances(c)
		switch {
		case v && overlay.CurrentMode(c) == overlay.ModeEdit:
			_ = overlay.Cancel(c)
		case !v:
			overlay.EnableEdit(c)
		}
	}
}

// ReadOnly reports whether the canvas is read-only.
func (r *Reconciler) ReadOnly() bool { return r.opts.ReadOnly }

// OnConnect subscribes to links a user draws.
func (r *Reconciler) OnConnect(resourceType string, fn LinkFunc) {
	r.onConnect[resourceType] = append(r.onConnect[resourceType], fn)
}

// OnDisconnect subscribes to links a user removes.
func (r *Reconciler) OnDisconnect(resourceType string, fn LinkFunc) {
	r.onDisconnect[resourceType] = append(r.onDisconnect[resourceType], fn)
}

// OnMoved subscribes to links a user drags to another owner or resource.
func (r *Reconciler) OnMoved(resourceType string, fn MoveFunc) {
	r.onMoved[resourceType] = append(r.onMoved[resourceType], fn)
}

// OnValueChanged subscribes to link values a user edits.
func (r *Reconciler) OnValueChanged(resourceType string, fn ValueFunc) {
	r.onValue[resourceType] = append(r.onValue[resourceType], fn)
}
