package connector

import (
	"fmt"

	"github.com/json-to-terraform/connector/internal/overlay"
	"github.com/json-to-terraform/connector/internal/surface"
)

// beforeDrop accepts a user drop only between an owner anchor and a resource of its type.
func (r *Reconciler) beforeDrop(source, target surface.ElementID) bool {
	_, ok := r.reg.Resolve(source, target, "")
	return ok
}

func (r *Reconciler) handleConnection(ev surface.ConnectionEvent) {
	if !r.coord.Admit() {
		r.log.Debug("connection event suppressed", "connection", ev.Connection.ID)
		return
	}
	p, ok := r.reg.ResolveConnection(ev.Connection, "")
	if !ok {
		r.log.Debug("connection does not resolve to a link", "connection", ev.Connection.ID)
		return
	}
	if h, ok := r.handlers.Get(p.ResourceType); ok && h.CarriesValue() {
		h.Decorate(ev.Connection, !r.opts.ReadOnly, r.opts.Placeholder)
	}
	r.syncDeleteAffordances(ev.Connection)
	for _, fn := range r.onConnect[p.ResourceType] {
		fn(p.OwnerID, p.ResourceID)
	}
}

func (r *Reconciler) handleDetached(ev surface.ConnectionEvent) {
	if !r.coord.Admit() {
		r.log.Debug("detach event suppressed", "connection", ev.Connection.ID)
		return
	}
	if ev.Source == nil || ev.Target == nil {
		return
	}
	p, ok := r.reg.Resolve(ev.Source.Element(), ev.Target.Element(), "")
	if !ok {
		return
	}
	for _, fn := range r.onDisconnect[p.ResourceType] {
		fn(p.OwnerID, p.ResourceID)
	}
}

// handleMoved reports a move once and absorbs the connect and detach notifications the
// surface fires for the same gesture until the next tick.
func (r *Reconciler) handleMoved(ev surface.MoveEvent) {
	r.coord.EnterSuppressionWindow()

	from, okFrom := r.reg.Resolve(ev.OriginalSource.Element(), ev.OriginalTarget.Element(), "")
	to, okTo := r.reg.Resolve(ev.NewSource.Element(), ev.NewTarget.Element(), "")
	if !okFrom || !okTo || from.ResourceType != to.ResourceType {
		r.log.Warn("moved connection does not resolve to a link pair", "connection", ev.Connection.ID)
		return
	}
	for _, fn := range r.onMoved[from.ResourceType] {
		fn(from.OwnerID, from.ResourceID, to.OwnerID, to.ResourceID)
	}
}

// ClickOverlay handles a click on a connection decoration. A delete affordance removes the
// connection as a user action; a value label opens its editor. Clicks are ignored while
// read-only.
func (r *Reconciler) ClickOverlay(overlayID string) error {
	c, o := r.surface.FindOverlay(overlayID)
	if o == nil {
		return fmt.Errorf("click %s: %w", overlayID, ErrUnknownOverlay)
	}
	if r.opts.ReadOnly {
		r.log.Debug("overlay click ignored on read-only canvas", "overlay", overlayID)
		return nil
	}
	switch {
	case overlay.IsDelete(o):
		return r.surface.Detach(c, true)
	case o.Spec().Key == overlay.KeyValue:
		return overlay.BeginEdit(c)
	}
	return nil
}

// CommitValue closes the editor of a connection with value and notifies the value
// subscribers of its type.
func (r *Reconciler) CommitValue(connID, value string) error {
	if r.opts.ReadOnly {
		return ErrReadOnly
	}
	c := r.surface.Connection(connID)
	if c == nil {
		return fmt.Errorf("commit value: %w", surface.ErrUnknownConn)
	}
	p, ok := r.reg.ResolveConnection(c, "")
	if !ok {
		return fmt.Errorf("commit value: %w", ErrNotALink)
	}
	if err := overlay.Commit(c, value); err != nil {
		return fmt.Errorf("commit value: %w", err)
	}
	for _, fn := range r.onValue[p.ResourceType] {
		fn(p.OwnerID, p.ResourceID, value)
	}
	return nil
}

// CancelValueEdit closes the editor of a connection and keeps its value.
func (r *Reconciler) CancelValueEdit(connID string) error {
	c := r.surface.Connection(connID)
	if c == nil {
		return fmt.Errorf("cancel value edit: %w", surface.ErrUnknownConn)
	}
	return overlay.Cancel(c)
}
