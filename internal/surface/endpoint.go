package surface

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/json-to-terraform/connector/internal/geometry"
)

// Unbounded is the MaxConnections value for endpoints without a capacity limit.
const Unbounded = -1

// EndpointOptions describes an endpoint when it is added.
type EndpointOptions struct {
	MaxConnections int
	IsSource       bool
	IsTarget       bool
	Enabled        bool
	// Anchors holds one static anchor or several candidates chosen on every repaint.
	Anchors []geometry.Anchor
	// DeleteOnDetach removes the endpoint when its last connection is detached.
	DeleteOnDetach bool
	// Scope tags the endpoint with the resource type it serves.
	Scope string
	// ConnectorOverlays are attached to every connection this endpoint originates.
	ConnectorOverlays []OverlaySpec
}

// Endpoint is an attachment slot on an element.
type Endpoint struct {
	ID          string
	element     ElementID
	opts        EndpointOptions
	connections []*Connection
}

// Element returns the element the endpoint is attached to.
func (e *Endpoint) Element() ElementID { return e.element }

// Options returns the endpoint options.
func (e *Endpoint) Options() EndpointOptions { return e.opts }

// Enabled reports whether users may drag from or onto the endpoint.
func (e *Endpoint) Enabled() bool { return e.opts.Enabled }

// SetEnabled toggles user interaction.
func (e *Endpoint) SetEnabled(v bool) { e.opts.Enabled = v }

// Connections returns the connections attached to the endpoint.
func (e *Endpoint) Connections() []*Connection {
	return append([]*Connection(nil), e.connections...)
}

// IsFull reports whether the endpoint reached its capacity.
func (e *Endpoint) IsFull() bool {
	max := e.opts.MaxConnections
	return max >= 0 && len(e.connections) >= max
}

// AddEndpoint attaches a new endpoint to a mounted element.
func (s *Surface) AddEndpoint(el ElementID, opts EndpointOptions) (*Endpoint, error) {
	if _, ok := s.elements[el]; !ok {
		return nil, fmt.Errorf("add endpoint on %s: %w", el, ErrUnknownElement)
	}
	ep := &Endpoint{ID: uuid.NewString(), element: el, opts: opts}
	s.endpoints = append(s.endpoints, ep)
	s.mutated()
	return ep, nil
}

// DeleteEndpoint removes an endpoint. Its connections are dropped without events.
func (s *Surface) DeleteEndpoint(ep *Endpoint) {
	if ep == nil {
		return
	}
	for _, c := range ep.Connections() {
		s.removeConnection(c)
	}
	for i, e := range s.endpoints {
		if e == ep {
			s.endpoints = append(s.endpoints[:i], s.endpoints[i+1:]...)
			s.mutated()
			return
		}
	}
}

// Endpoints returns the endpoints attached to an element in creation order.
func (s *Surface) Endpoints(el ElementID) []*Endpoint {
	var out []*Endpoint
	for _, ep := range s.endpoints {
		if ep.element == el {
			out = append(out, ep)
		}
	}
	return out
}

// Endpoint returns the endpoint with the given id, or nil.
func (s *Surface) Endpoint(id string) *Endpoint {
	for _, ep := range s.endpoints {
		if ep.ID == id {
			return ep
		}
	}
	return nil
}

func sortElements(els []*Element) {
	sort.SliceStable(els, func(i, j int) bool {
		a, b := els[i].Box, els[j].Box
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return els[i].ID < els[j].ID
	})
}
