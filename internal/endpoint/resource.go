package endpoint

import (
	"fmt"

	"github.com/json-to-terraform/connector/internal/geometry"
	"github.com/json-to-terraform/connector/internal/overlay"
	"github.com/json-to-terraform/connector/internal/surface"
)

// AddResourceEndpoint turns a mounted element into the attachment point of a resource.
func (r *Registry) AddResourceEndpoint(el surface.ElementID, resourceID, resourceType string) error {
	if r.surface.Element(el) == nil {
		return fmt.Errorf("add resource endpoint %s: %w", resourceID, surface.ErrUnknownElement)
	}
	if prev, ok := r.resources[resourceID]; ok && prev != el {
		r.RemoveResourceEndpoint(prev)
	}
	for _, ep := range r.surface.Endpoints(el) {
		r.surface.DeleteEndpoint(ep)
	}

	opts := surface.EndpointOptions{
		MaxConnections: surface.Unbounded,
		IsSource:       true,
		IsTarget:       true,
		Enabled:        !r.opts.ReadOnly,
		Anchors:        geometry.StripAnchors(r.opts.AnchorSegments),
		DeleteOnDetach: false,
		Scope:          resourceType,
		// shown or hidden per connection by the read-only state
		ConnectorOverlays: overlay.DeleteAffordances(),
	}
	if _, err := r.surface.AddEndpoint(el, opts); err != nil {
		return fmt.Errorf("add resource endpoint %s: %w", resourceID, err)
	}

	r.elements[el] = Binding{Side: ResourceSide, ResourceID: resourceID, ResourceType: resourceType}
	r.resources[resourceID] = el
	return nil
}

// RemoveResourceEndpoint detaches the attachment point from an element. Connections on it
// are dropped without notifications; reconciliation redraws them once the resource is
// mounted again.
func (r *Registry) RemoveResourceEndpoint(el surface.ElementID) {
	b, ok := r.elements[el]
	if !ok || b.Side != ResourceSide {
		return
	}
	for _, ep := range r.surface.Endpoints(el) {
		r.surface.DeleteEndpoint(ep)
	}
	delete(r.elements, el)
	if r.resources[b.ResourceID] == el {
		delete(r.resources, b.ResourceID)
	}
}

// AttachPoint returns the attachment endpoint of a resource, or nil when it is not mounted.
func (r *Registry) AttachPoint(resourceID string) *surface.Endpoint {
	el, ok := r.resources[resourceID]
	if !ok {
		return nil
	}
	eps := r.surface.Endpoints(el)
	if len(eps) == 0 {
		return nil
	}
	return eps[0]
}

// Binding returns the domain identity of an element.
func (r *Registry) Binding(el surface.ElementID) (Binding, bool) {
	b, ok := r.elements[el]
	return b, ok
}

// Resolve maps two elements to an owner/resource pair, in either order. Elements that are
// not registered, two elements on the same side, and mismatched resource types resolve to
// no link. A non-empty resourceType restricts the match to that type.
func (r *Registry) Resolve(a, b surface.ElementID, resourceType string) (Pair, bool) {
	ba, okA := r.elements[a]
	bb, okB := r.elements[b]
	if !okA || !okB {
		return Pair{}, false
	}

	var own, res Binding
	switch {
	case ba.Side == OwnerSide && bb.Side == ResourceSide:
		own, res = ba, bb
	case ba.Side == ResourceSide && bb.Side == OwnerSide:
		own, res = bb, ba
	default:
		return Pair{}, false
	}
	if own.ResourceType != res.ResourceType {
		return Pair{}, false
	}
	if resourceType != "" && res.ResourceType != resourceType {
		return Pair{}, false
	}
	return Pair{OwnerID: own.OwnerID, ResourceID: res.ResourceID, ResourceType: res.ResourceType}, true
}

// ResolveConnection resolves the two endpoints of a connection.
func (r *Registry) ResolveConnection(c *surface.Connection, resourceType string) (Pair, bool) {
	if c == nil || c.Source() == nil || c.Target() == nil {
		return Pair{}, false
	}
	return r.Resolve(c.Source().Element(), c.Target().Element(), resourceType)
}

// SetReadOnly enables or disables user interaction on every registered endpoint.
func (r *Registry) SetReadOnly(v bool) {
	r.opts.ReadOnly = v
	for el := range r.elements {
		for _, ep := range r.surface.Endpoints(el) {
			ep.SetEnabled(!v)
		}
	}
}

// ReadOnly reports whether endpoints are created disabled.
func (r *Registry) ReadOnly() bool { return r.opts.ReadOnly }
