// Package surface is an in-memory diagram engine: mounted elements, endpoints with a
// connection capacity, connections between endpoints, overlays on connections, and the
// low-level events a drawing library fires when the graph changes.
package surface

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/json-to-terraform/connector/internal/geometry"
)

var (
	ErrUnknownElement = errors.New("unknown element")
	ErrDuplicateID    = errors.New("element already mounted")
	ErrNilEndpoint    = errors.New("nil endpoint")
	ErrEndpointFull   = errors.New("endpoint is full")
	ErrNotSource      = errors.New("endpoint cannot originate connections")
	ErrNotTarget      = errors.New("endpoint cannot accept connections")
	ErrDisabled       = errors.New("endpoint is disabled")
	ErrDropRejected   = errors.New("drop rejected")
	ErrUnknownConn    = errors.New("unknown connection")
)

// ElementID identifies a mounted element.
type ElementID string

// Element is a mounted box. Children are laid out by whoever mounts them.
type Element struct {
	ID      ElementID
	Parent  ElementID
	Box     geometry.Box
	Visible bool
}

// Options configures a Surface.
type Options struct {
	// Selector picks the anchor of a dynamic endpoint facing the other end of a connection.
	Selector func(src, target geometry.Box, anchors []geometry.Anchor) int
}

// DefaultOptions returns options using geometry.SelectAnchor.
func DefaultOptions() Options {
	return Options{Selector: geometry.SelectAnchor}
}

// Stats counts work done by the surface.
type Stats struct {
	// Mutations counts endpoint and connection creations and removals.
	Mutations int
	// Repaints counts full repaint passes.
	Repaints int
}

// Surface holds the live diagram. It is single-threaded: callers must not use it from more
// than one goroutine.
type Surface struct {
	opts        Options
	elements    map[ElementID]*Element
	endpoints   []*Endpoint
	connections []*Connection

	onConnection []func(ConnectionEvent)
	onDetached   []func(ConnectionEvent)
	onMoved      []func(MoveEvent)
	beforeDrop   func(source, target ElementID) bool

	batchDepth int
	dirty      bool
	stats      Stats
}

// New returns an empty surface.
func New(opts Options) *Surface {
	if opts.Selector == nil {
		opts.Selector = geometry.SelectAnchor
	}
	return &Surface{
		opts:     opts,
		elements: make(map[ElementID]*Element),
	}
}

// NewElementID returns a fresh random element id.
func NewElementID() ElementID {
	return ElementID(uuid.NewString())
}

// Mount adds an element. Parent may be empty.
func (s *Surface) Mount(id ElementID, parent ElementID, box geometry.Box) (*Element, error) {
	if id == "" {
		return nil, fmt.Errorf("mount: %w: empty id", ErrUnknownElement)
	}
	if _, ok := s.elements[id]; ok {
		return nil, fmt.Errorf("mount %s: %w", id, ErrDuplicateID)
	}
	if parent != "" {
		if _, ok := s.elements[parent]; !ok {
			return nil, fmt.Errorf("mount %s under %s: %w", id, parent, ErrUnknownElement)
		}
	}
	el := &Element{ID: id, Parent: parent, Box: box, Visible: true}
	s.elements[id] = el
	return el, nil
}

// Unmount removes an element, its children, and every endpoint on them. Connections on
// those endpoints are dropped without events.
func (s *Surface) Unmount(id ElementID) error {
	if _, ok := s.elements[id]; !ok {
		return fmt.Errorf("unmount %s: %w", id, ErrUnknownElement)
	}
	for _, child := range s.Children(id) {
		_ = s.Unmount(child.ID)
	}
	for _, ep := range s.Endpoints(id) {
		s.DeleteEndpoint(ep)
	}
	delete(s.elements, id)
	return nil
}

// Element returns the element with the given id, or nil.
func (s *Surface) Element(id ElementID) *Element {
	return s.elements[id]
}

// Children returns the direct children of an element ordered by position, left to right
// and then top to bottom.
func (s *Surface) Children(parent ElementID) []*Element {
	var out []*Element
	for _, el := range s.elements {
		if el.Parent == parent && parent != "" {
			out = append(out, el)
		}
	}
	sortElements(out)
	return out
}

// Place moves and resizes an element. Children keep their offset from the parent.
func (s *Surface) Place(id ElementID, box geometry.Box) error {
	el, ok := s.elements[id]
	if !ok {
		return fmt.Errorf("place %s: %w", id, ErrUnknownElement)
	}
	s.place(el, box)
	s.invalidate()
	return nil
}

func (s *Surface) place(el *Element, box geometry.Box) {
	dx, dy := box.X-el.Box.X, box.Y-el.Box.Y
	el.Box = box
	for _, child := range s.Children(el.ID) {
		b := child.Box
		b.X += dx
		b.Y += dy
		s.place(child, b)
	}
}

// SetVisible shows or hides an element and its children.
func (s *Surface) SetVisible(id ElementID, visible bool) error {
	el, ok := s.elements[id]
	if !ok {
		return fmt.Errorf("set visible %s: %w", id, ErrUnknownElement)
	}
	s.setVisible(el, visible)
	s.invalidate()
	return nil
}

func (s *Surface) setVisible(el *Element, visible bool) {
	el.Visible = visible
	for _, child := range s.Children(el.ID) {
		s.setVisible(child, visible)
	}
}

// Stats returns the work counters.
func (s *Surface) Stats() Stats { return s.stats }

// Batch runs fn with repainting suspended and repaints once at the end if anything changed.
func (s *Surface) Batch(fn func()) {
	s.batchDepth++
	defer func() {
		s.batchDepth--
		if s.batchDepth == 0 && s.dirty {
			s.RepaintEverything()
		}
	}()
	fn()
}

// RepaintEverything recomputes the attachment points of every connection.
func (s *Surface) RepaintEverything() {
	for _, c := range s.connections {
		s.paint(c)
	}
	s.dirty = false
	s.stats.Repaints++
}

func (s *Surface) invalidate() {
	if s.batchDepth > 0 {
		s.dirty = true
		return
	}
	s.RepaintEverything()
}

func (s *Surface) paint(c *Connection) {
	src, tgt := s.elements[c.source.element], s.elements[c.target.element]
	if src == nil || tgt == nil {
		return
	}
	c.points[0] = s.anchorPoint(c.source, src.Box, tgt.Box)
	c.points[1] = s.anchorPoint(c.target, tgt.Box, src.Box)
}

func (s *Surface) anchorPoint(ep *Endpoint, own, other geometry.Box) geometry.Point {
	anchors := ep.opts.Anchors
	switch len(anchors) {
	case 0:
		return own.At(geometry.BottomCenter)
	case 1:
		return own.At(anchors[0])
	}
	i := s.opts.Selector(own, other, anchors)
	if i < 0 || i >= len(anchors) {
		i = 0
	}
	return own.At(anchors[i])
}

func (s *Surface) mutated() {
	s.stats.Mutations++
	s.invalidate()
}
