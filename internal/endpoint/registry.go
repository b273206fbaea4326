// Package endpoint keeps the owner-side anchor slots of the canvas in step with the desired
// number of links per owner and resource type, and maps surface elements back to the
// owners and resources they stand for.
package endpoint

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/json-to-terraform/connector/internal/geometry"
	"github.com/json-to-terraform/connector/internal/logger"
	"github.com/json-to-terraform/connector/internal/overlay"
	"github.com/json-to-terraform/connector/internal/surface"
)

var (
	ErrNoHolder      = errors.New("owner has no anchor holder")
	ErrUnknownHolder = errors.New("anchor holder is not mounted")
)

// Side tells which end of a link an element stands for.
type Side int

const (
	OwnerSide Side = iota + 1
	ResourceSide
)

// Binding maps a surface element to its domain identity.
type Binding struct {
	Side         Side
	OwnerID      string
	ResourceID   string
	ResourceType string
}

// Pair is a resolved owner/resource link.
type Pair struct {
	OwnerID      string
	ResourceID   string
	ResourceType string
}

// Layout positions owner anchors inside their holder, left to right.
type Layout struct {
	Size float64
	Gap  float64
}

// Options configures a Registry.
type Options struct {
	Layout Layout
	// AnchorSegments is the number of segments of the anchor strip on resource elements.
	AnchorSegments int
	ReadOnly       bool
	Logger         *slog.Logger
}

// DefaultOptions returns the layout used by the canvas.
func DefaultOptions() Options {
	return Options{
		Layout:         Layout{Size: 10, Gap: 4},
		AnchorSegments: 30,
		Logger:         logger.Default,
	}
}

type ownerSlots struct {
	holder   surface.ElementID
	order    []surface.ElementID
	anchors  map[string][]surface.ElementID
	desired  map[string][]string
	metadata map[string]map[string]string
}

// Registry owns the endpoints of one surface.
type Registry struct {
	surface   *surface.Surface
	opts      Options
	log       *slog.Logger
	elements  map[surface.ElementID]Binding
	owners    map[string]*ownerSlots
	resources map[string]surface.ElementID
}

// New returns a registry bound to s.
func New(s *surface.Surface, opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = logger.Default
	}
	if opts.Layout.Size <= 0 {
		opts.Layout = DefaultOptions().Layout
	}
	if opts.AnchorSegments <= 0 {
		opts.AnchorSegments = DefaultOptions().AnchorSegments
	}
	return &Registry{
		surface:   s,
		opts:      opts,
		log:       opts.Logger,
		elements:  make(map[surface.ElementID]Binding),
		owners:    make(map[string]*ownerSlots),
		resources: make(map[string]surface.ElementID),
	}
}

func (r *Registry) slots(ownerID string) *ownerSlots {
	o, ok := r.owners[ownerID]
	if !ok {
		o = &ownerSlots{
			anchors:  make(map[string][]surface.ElementID),
			desired:  make(map[string][]string),
			metadata: make(map[string]map[string]string),
		}
		r.owners[ownerID] = o
	}
	return o
}

// PrepareEndpoints registers the mounted element that holds the anchors of an owner.
func (r *Registry) PrepareEndpoints(ownerID string, holder surface.ElementID) error {
	if r.surface.Element(holder) == nil {
		return fmt.Errorf("prepare endpoints for %s: %w", ownerID, ErrUnknownHolder)
	}
	r.slots(ownerID).holder = holder
	return nil
}

// UpdateEndpoints resizes the anchors of (ownerID, resourceType) to len(desired) and records
// desired and metadata. Only free anchors are removed when shrinking, nearest to the origin
// first. Failures are logged; the next call retries.
func (r *Registry) UpdateEndpoints(desired []string, ownerID, resourceType string, metadata map[string]string) {
	o := r.slots(ownerID)
	defer func() {
		o.desired[resourceType] = append([]string(nil), desired...)
		o.metadata[resourceType] = copyMap(metadata)
	}()

	r.prune(o)
	existing := len(o.anchors[resourceType])
	diff := len(desired) - existing
	switch {
	case diff == 0:
		return
	case diff > 0:
		if err := r.grow(ownerID, o, resourceType, diff); err != nil {
			r.log.Error("add endpoints", "owner", ownerID, "resource_type", resourceType, "error", err)
		}
	default:
		r.shrink(ownerID, o, resourceType, -diff)
	}
	r.relayout(o)
}

func (r *Registry) grow(ownerID string, o *ownerSlots, resourceType string, n int) error {
	if o.holder == "" {
		return ErrNoHolder
	}
	holder := r.surface.Element(o.holder)
	if holder == nil {
		return ErrUnknownHolder
	}

	opts := surface.EndpointOptions{
		MaxConnections: 1,
		IsSource:       true,
		IsTarget:       true,
		Enabled:        !r.opts.ReadOnly,
		Anchors:        []geometry.Anchor{geometry.BottomCenter},
		DeleteOnDetach: false,
		Scope:          resourceType,
		// shown or hidden per connection by the read-only state
		ConnectorOverlays: overlay.DeleteAffordances(),
	}

	for i := 0; i < n; i++ {
		id := surface.NewElementID()
		if _, err := r.surface.Mount(id, o.holder, r.slot(holder.Box, len(o.order))); err != nil {
			return err
		}
		if _, err := r.surface.AddEndpoint(id, opts); err != nil {
			_ = r.surface.Unmount(id)
			return err
		}
		r.elements[id] = Binding{Side: OwnerSide, OwnerID: ownerID, ResourceType: resourceType}
		o.order = append(o.order, id)
		o.anchors[resourceType] = append(o.anchors[resourceType], id)
	}
	return nil
}

func (r *Registry) shrink(ownerID string, o *ownerSlots, resourceType string, n int) {
	free := r.FreeEndpoints(ownerID, resourceType, false)
	if len(free) < n {
		r.log.Warn("bound endpoints kept while shrinking",
			"owner", ownerID, "resource_type", resourceType, "excess", n, "free", len(free))
	}
	for i := 0; i < n && i < len(free); i++ {
		el := free[i].Element()
		if err := r.surface.Unmount(el); err != nil {
			r.log.Error("remove endpoint", "owner", ownerID, "resource_type", resourceType, "error", err)
			continue
		}
		delete(r.elements, el)
		o.order = removeID(o.order, el)
		o.anchors[resourceType] = removeID(o.anchors[resourceType], el)
	}
}

// prune forgets anchors whose element was unmounted behind the registry's back.
func (r *Registry) prune(o *ownerSlots) {
	for _, id := range append([]surface.ElementID(nil), o.order...) {
		if r.surface.Element(id) != nil {
			continue
		}
		b := r.elements[id]
		delete(r.elements, id)
		o.order = removeID(o.order, id)
		o.anchors[b.ResourceType] = removeID(o.anchors[b.ResourceType], id)
	}
}

func (r *Registry) slot(holder geometry.Box, i int) geometry.Box {
	l := r.opts.Layout
	return geometry.Box{X: holder.X + float64(i)*(l.Size+l.Gap), Y: holder.Y, W: l.Size, H: l.Size}
}

func (r *Registry) relayout(o *ownerSlots) {
	holder := r.surface.Element(o.holder)
	if holder == nil {
		return
	}
	for i, id := range o.order {
		if err := r.surface.Place(id, r.slot(holder.Box, i)); err != nil {
			r.log.Error("place endpoint", "element", id, "error", err)
		}
	}
}

// Endpoints returns every owner endpoint of (ownerID, resourceType) in creation order.
func (r *Registry) Endpoints(ownerID, resourceType string) []*surface.Endpoint {
	o, ok := r.owners[ownerID]
	if !ok {
		return nil
	}
	var out []*surface.Endpoint
	for _, el := range o.anchors[resourceType] {
		out = append(out, r.surface.Endpoints(el)...)
	}
	return out
}

// FreeEndpoints returns the owner endpoints of (ownerID, resourceType) that can take a
// connection, nearest to the canvas origin first.
func (r *Registry) FreeEndpoints(ownerID, resourceType string, visibleOnly bool) []*surface.Endpoint {
	type candidate struct {
		ep   *surface.Endpoint
		dist float64
	}
	var cands []candidate
	for _, ep := range r.Endpoints(ownerID, resourceType) {
		if ep.IsFull() {
			continue
		}
		el := r.surface.Element(ep.Element())
		if el == nil || (visibleOnly && !el.Visible) {
			continue
		}
		cands = append(cands, candidate{ep, geometry.Distance(geometry.Point{}, geometry.Point{X: el.Box.X, Y: el.Box.Y})})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })

	out := make([]*surface.Endpoint, len(cands))
	for i, c := range cands {
		out[i] = c.ep
	}
	return out
}

// Desired returns the resource list last passed to UpdateEndpoints for the key.
func (r *Registry) Desired(ownerID, resourceType string) []string {
	o, ok := r.owners[ownerID]
	if !ok {
		return nil
	}
	return append([]string(nil), o.desired[resourceType]...)
}

// Metadata returns the per-resource metadata last passed to UpdateEndpoints for the key.
func (r *Registry) Metadata(ownerID, resourceType string) map[string]string {
	o, ok := r.owners[ownerID]
	if !ok {
		return nil
	}
	return copyMap(o.metadata[resourceType])
}

// MetadataFor returns the metadata of one link, or "".
func (r *Registry) MetadataFor(ownerID, resourceType, resourceID string) string {
	o, ok := r.owners[ownerID]
	if !ok {
		return ""
	}
	return o.metadata[resourceType][resourceID]
}

// Owners returns the ids of every known owner, sorted.
func (r *Registry) Owners() []string {
	out := make([]string, 0, len(r.owners))
	for id := range r.owners {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func removeID(ids []surface.ElementID, id surface.ElementID) []surface.ElementID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
