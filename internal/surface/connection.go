package surface

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/json-to-terraform/connector/internal/geometry"
)

// Connection is a rendered edge between two endpoints.
type Connection struct {
	ID       string
	source   *Endpoint
	target   *Endpoint
	overlays []*Overlay
	points   [2]geometry.Point
}

// Source returns the endpoint the connection was dragged from.
func (c *Connection) Source() *Endpoint { return c.source }

// Target returns the endpoint the connection was dropped on.
func (c *Connection) Target() *Endpoint { return c.target }

// Points returns the painted source and target attachment points.
func (c *Connection) Points() (geometry.Point, geometry.Point) { return c.points[0], c.points[1] }

// Overlays returns the decorations of the connection.
func (c *Connection) Overlays() []*Overlay {
	return append([]*Overlay(nil), c.overlays...)
}

// Overlay returns the overlay with the given key, or nil.
func (c *Connection) Overlay(key string) *Overlay {
	for _, o := range c.overlays {
		if o.spec.Key == key {
			return o
		}
	}
	return nil
}

// AddOverlay attaches a decoration.
func (c *Connection) AddOverlay(spec OverlaySpec) *Overlay {
	o := &Overlay{
		ID:      uuid.NewString(),
		spec:    spec,
		visible: !spec.Hidden,
		label:   spec.Label,
		value:   spec.Value,
		conn:    c,
	}
	c.overlays = append(c.overlays, o)
	return o
}

// ConnectParams describes a connection to create.
type ConnectParams struct {
	Source *Endpoint
	Target *Endpoint
	// FireEvent emits EventConnection when set.
	FireEvent bool
	Overlays  []OverlaySpec
}

// Connect creates a connection between two endpoints.
func (s *Surface) Connect(p ConnectParams) (*Connection, error) {
	if p.Source == nil || p.Target == nil {
		return nil, fmt.Errorf("connect: %w", ErrNilEndpoint)
	}
	if err := checkFree(p.Source, nil); err != nil {
		return nil, fmt.Errorf("connect source %s: %w", p.Source.ID, err)
	}
	if err := checkFree(p.Target, nil); err != nil {
		return nil, fmt.Errorf("connect target %s: %w", p.Target.ID, err)
	}

	c := &Connection{ID: uuid.NewString(), source: p.Source, target: p.Target}
	for _, spec := range p.Source.opts.ConnectorOverlays {
		c.AddOverlay(spec)
	}
	for _, spec := range p.Overlays {
		c.AddOverlay(spec)
	}
	p.Source.connections = append(p.Source.connections, c)
	p.Target.connections = append(p.Target.connections, c)
	s.connections = append(s.connections, c)
	s.mutated()

	if p.FireEvent {
		s.emitConnection(ConnectionEvent{Connection: c, Source: c.source, Target: c.target})
	}
	return c, nil
}

// Detach removes a connection. fireEvent controls EventConnectionDetached.
func (s *Surface) Detach(c *Connection, fireEvent bool) error {
	if !s.has(c) {
		return ErrUnknownConn
	}
	src, tgt := c.source, c.target
	s.removeConnection(c)
	if fireEvent {
		s.emitDetached(ConnectionEvent{Connection: c, Source: src, Target: tgt})
	}
	for _, ep := range []*Endpoint{src, tgt} {
		if ep.opts.DeleteOnDetach && len(ep.connections) == 0 {
			s.DeleteEndpoint(ep)
		}
	}
	return nil
}

// Connections returns every live connection in creation order.
func (s *Surface) Connections() []*Connection {
	return append([]*Connection(nil), s.connections...)
}

// Connection returns the connection with the given id, or nil.
func (s *Surface) Connection(id string) *Connection {
	for _, c := range s.connections {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// FindOverlay returns the overlay with the given id and its connection.
func (s *Surface) FindOverlay(id string) (*Connection, *Overlay) {
	for _, c := range s.connections {
		for _, o := range c.overlays {
			if o.ID == id {
				return c, o
			}
		}
	}
	return nil, nil
}

func (s *Surface) has(c *Connection) bool {
	for _, x := range s.connections {
		if x == c {
			return true
		}
	}
	return false
}

func (s *Surface) removeConnection(c *Connection) {
	c.source.connections = without(c.source.connections, c)
	c.target.connections = without(c.target.connections, c)
	before := len(s.connections)
	s.connections = without(s.connections, c)
	if len(s.connections) != before {
		s.mutated()
	}
}

func without(list []*Connection, c *Connection) []*Connection {
	out := list[:0]
	for _, x := range list {
		if x != c {
			out = append(out, x)
		}
	}
	return out
}

// checkFree verifies ep can take one more connection, not counting ignore.
func checkFree(ep *Endpoint, ignore *Connection) error {
	max := ep.opts.MaxConnections
	if max < 0 {
		return nil
	}
	n := 0
	for _, c := range ep.connections {
		if c != ignore {
			n++
		}
	}
	if n >= max {
		return ErrEndpointFull
	}
	return nil
}
