package surface

import "fmt"

// ConnectionEvent is fired when a connection is created or detached.
type ConnectionEvent struct {
	Connection *Connection
	Source     *Endpoint
	Target     *Endpoint
}

// MoveEvent is fired when a user drags an existing connection to another endpoint pair.
type MoveEvent struct {
	Connection     *Connection
	OriginalSource *Endpoint
	OriginalTarget *Endpoint
	NewSource      *Endpoint
	NewTarget      *Endpoint
}

// OnConnection subscribes to connection creation.
func (s *Surface) OnConnection(fn func(ConnectionEvent)) {
	s.onConnection = append(s.onConnection, fn)
}

// OnConnectionDetached subscribes to connection removal.
func (s *Surface) OnConnectionDetached(fn func(ConnectionEvent)) {
	s.onDetached = append(s.onDetached, fn)
}

// OnConnectionMoved subscribes to connection moves.
func (s *Surface) OnConnectionMoved(fn func(MoveEvent)) {
	s.onMoved = append(s.onMoved, fn)
}

// SetBeforeDrop installs the check a user drop must pass. A nil check accepts everything.
func (s *Surface) SetBeforeDrop(fn func(source, target ElementID) bool) {
	s.beforeDrop = fn
}

func (s *Surface) emitConnection(ev ConnectionEvent) {
	for _, fn := range s.onConnection {
		fn(ev)
	}
}

func (s *Surface) emitDetached(ev ConnectionEvent) {
	for _, fn := range s.onDetached {
		fn(ev)
	}
}

func (s *Surface) emitMoved(ev MoveEvent) {
	for _, fn := range s.onMoved {
		fn(ev)
	}
}

// Drag simulates a user dragging a new connection from one endpoint onto another.
func (s *Surface) Drag(from, to *Endpoint) (*Connection, error) {
	if err := s.checkGesture(from, to); err != nil {
		return nil, fmt.Errorf("drag: %w", err)
	}
	if !from.opts.IsSource {
		return nil, fmt.Errorf("drag: %w", ErrNotSource)
	}
	if !to.opts.IsTarget {
		return nil, fmt.Errorf("drag: %w", ErrNotTarget)
	}
	return s.Connect(ConnectParams{Source: from, Target: to, FireEvent: true})
}

// DragMove simulates a user dragging an existing connection onto a new endpoint pair. Like
// common browser diagram engines it fires EventConnectionMoved followed, synchronously, by
// EventConnection for the same gesture.
func (s *Surface) DragMove(c *Connection, newSource, newTarget *Endpoint) error {
	if !s.has(c) {
		return fmt.Errorf("drag move: %w", ErrUnknownConn)
	}
	if err := s.checkGesture(newSource, newTarget); err != nil {
		return fmt.Errorf("drag move: %w", err)
	}
	if err := checkFree(newSource, c); err != nil {
		return fmt.Errorf("drag move source: %w", err)
	}
	if err := checkFree(newTarget, c); err != nil {
		return fmt.Errorf("drag move target: %w", err)
	}

	ev := MoveEvent{
		Connection:     c,
		OriginalSource: c.source,
		OriginalTarget: c.target,
		NewSource:      newSource,
		NewTarget:      newTarget,
	}
	c.source.connections = without(c.source.connections, c)
	c.target.connections = without(c.target.connections, c)
	c.source, c.target = newSource, newTarget
	newSource.connections = append(newSource.connections, c)
	newTarget.connections = append(newTarget.connections, c)
	s.mutated()

	s.emitMoved(ev)
	s.emitConnection(ConnectionEvent{Connection: c, Source: newSource, Target: newTarget})
	return nil
}

// UserDetach simulates a user pulling a connection off the canvas.
func (s *Surface) UserDetach(c *Connection) error {
	if !s.has(c) {
		return fmt.Errorf("user detach: %w", ErrUnknownConn)
	}
	if !c.source.opts.Enabled || !c.target.opts.Enabled {
		return fmt.Errorf("user detach: %w", ErrDisabled)
	}
	return s.Detach(c, true)
}

func (s *Surface) checkGesture(from, to *Endpoint) error {
	if from == nil || to == nil {
		return ErrNilEndpoint
	}
	if !from.opts.Enabled || !to.opts.Enabled {
		return ErrDisabled
	}
	if s.beforeDrop != nil && !s.beforeDrop(from.element, to.element) {
		return ErrDropRejected
	}
	return nil
}
