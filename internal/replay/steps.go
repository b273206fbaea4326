package replay

import (
	"errors"
	"fmt"

	"github.com/json-to-terraform/connector/internal/diagram"
	"github.com/json-to-terraform/connector/internal/endpoint"
	"github.com/json-to-terraform/connector/internal/overlay"
	"github.com/json-to-terraform/connector/internal/surface"
)

var (
	ErrUnknownOp       = errors.New("unknown op")
	ErrNoFreeEndpoint  = errors.New("owner has no free endpoint")
	ErrNotMounted      = errors.New("resource is not mounted")
	ErrNoConnection    = errors.New("link is not drawn")
	ErrAlreadyLinked   = errors.New("link is already drawn")
	ErrUnknownNode     = errors.New("unknown owner or resource")
	ErrMissingArgument = errors.New("missing argument")
)

func (r *Replayer) step(st Step) error {
	switch st.Op {
	case OpConnect:
		return r.connect(st)
	case OpDisconnect:
		c, err := r.connection(st)
		if err != nil {
			return err
		}
		return r.surface.UserDetach(c)
	case OpDeleteClick:
		return r.deleteClick(st)
	case OpMove:
		return r.move(st)
	case OpEditValue:
		return r.editValue(st)
	case OpMountResource:
		return r.mountStep(st)
	case OpUnmountResource:
		return r.unmountStep(st)
	case OpSetLinks:
		return r.setLinks(st)
	case OpLayout:
		return r.layout(st)
	case OpReadOnly:
		r.rec.SetReadOnly(st.Enabled)
		return nil
	case OpTick:
		n := st.Count
		if n < 1 {
			n = 1
		}
		for i := 0; i < n; i++ {
			r.out.Ticks++
			r.loop.Tick()
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, st.Op)
	}
}

// typeOf returns the resource type of a step, defaulting to the type of its resource.
func (r *Replayer) typeOf(st Step) (string, error) {
	if st.Type != "" {
		return st.Type, nil
	}
	res := r.snap.ResourceByID(st.Resource)
	if res == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownNode, st.Resource)
	}
	return res.Type, nil
}

// freeEndpoint returns a free anchor of owner for a gesture towards resourceID. When every
// anchor is bound, as it always is under CapacityLinked, one spare anchor is offered for the
// gesture; release takes it back if the gesture does not land.
func (r *Replayer) freeEndpoint(owner, resourceType, resourceID string) (ep *surface.Endpoint, release func(), err error) {
	reg := r.rec.Endpoints()
	release = func() {}
	if free := reg.FreeEndpoints(owner, resourceType, true); len(free) > 0 {
		return free[0], release, nil
	}
	if r.snap.OwnerByID(owner) == nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownNode, owner)
	}

	desired, metadata := reg.Desired(owner, resourceType), reg.Metadata(owner, resourceType)
	r.rec.UpdateEndpoints(append(append([]string(nil), desired...), resourceID), owner, resourceType, metadata)
	release = func() { r.rec.UpdateEndpoints(desired, owner, resourceType, metadata) }

	free := reg.FreeEndpoints(owner, resourceType, true)
	if len(free) == 0 {
		release()
		return nil, nil, fmt.Errorf("%w: %s (%s)", ErrNoFreeEndpoint, owner, resourceType)
	}
	return free[0], release, nil
}

func (r *Replayer) attachPoint(resourceID string) (*surface.Endpoint, error) {
	ep := r.rec.Endpoints().AttachPoint(resourceID)
	if ep == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotMounted, resourceID)
	}
	return ep, nil
}

func (r *Replayer) connection(st Step) (*surface.Connection, error) {
	t, err := r.typeOf(st)
	if err != nil {
		return nil, err
	}
	c := r.rec.FindConnection(st.Owner, st.Resource, t)
	if c == nil {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNoConnection, st.Owner, st.Resource)
	}
	return c, nil
}

func (r *Replayer) connect(st Step) error {
	t, err := r.typeOf(st)
	if err != nil {
		return err
	}
	if r.rec.FindConnection(st.Owner, st.Resource, t) != nil {
		return fmt.Errorf("%w: %s -> %s", ErrAlreadyLinked, st.Owner, st.Resource)
	}
	to, err := r.attachPoint(st.Resource)
	if err != nil {
		return err
	}
	from, release, err := r.freeEndpoint(st.Owner, t, st.Resource)
	if err != nil {
		return err
	}
	if _, err = r.surface.Drag(from, to); err != nil {
		release()
	}
	return err
}

func (r *Replayer) deleteClick(st Step) error {
	c, err := r.connection(st)
	if err != nil {
		return err
	}
	for _, o := range c.Overlays() {
		if overlay.IsDelete(o) {
			return r.rec.ClickOverlay(o.ID)
		}
	}
	return fmt.Errorf("%w: delete affordance on %s -> %s", ErrNoConnection, st.Owner, st.Resource)
}

// move drags the ends of a drawn link onto ToOwner and ToResource; either may be left out.
func (r *Replayer) move(st Step) error {
	c, err := r.connection(st)
	if err != nil {
		return err
	}
	t, _ := r.typeOf(st)
	toOwner, toResource := st.Owner, st.Resource
	if st.ToOwner != "" {
		toOwner = st.ToOwner
	}
	if st.ToResource != "" {
		toResource = st.ToResource
	}
	if r.rec.FindConnection(toOwner, toResource, t) != nil {
		return fmt.Errorf("%w: %s -> %s", ErrAlreadyLinked, toOwner, toResource)
	}

	ownerEnd, resourceEnd := c.Source(), c.Target()
	if b, ok := r.rec.Endpoints().Binding(ownerEnd.Element()); !ok || b.Side != endpoint.OwnerSide {
		ownerEnd, resourceEnd = resourceEnd, ownerEnd
	}
	if toResource != st.Resource {
		if resourceEnd, err = r.attachPoint(toResource); err != nil {
			return err
		}
	}
	release := func() {}
	if toOwner != st.Owner {
		if ownerEnd, release, err = r.freeEndpoint(toOwner, t, toResource); err != nil {
			return err
		}
	}
	if err = r.surface.DragMove(c, ownerEnd, resourceEnd); err != nil {
		release()
	}
	return err
}

func (r *Replayer) editValue(st Step) error {
	c, err := r.connection(st)
	if err != nil {
		return err
	}
	label := c.Overlay(overlay.KeyValue)
	if label == nil {
		return fmt.Errorf("edit value: %w", overlay.ErrNoValueOverlay)
	}
	if err := r.rec.ClickOverlay(label.ID); err != nil {
		return err
	}
	return r.rec.CommitValue(c.ID, st.Value)
}

func (r *Replayer) mountStep(st Step) error {
	if st.Resource == "" {
		return fmt.Errorf("mount_resource: %w: resource", ErrMissingArgument)
	}
	res := r.snap.ResourceByID(st.Resource)
	if res == nil {
		if st.Type == "" {
			return fmt.Errorf("mount_resource %s: %w: type", st.Resource, ErrMissingArgument)
		}
		if _, ok := r.reg.Get(st.Type); !ok {
			return fmt.Errorf("mount_resource %s: unsupported resource type %q", st.Resource, st.Type)
		}
		r.snap.Resources = append(r.snap.Resources, diagram.Resource{
			ID: st.Resource, Type: st.Type, Label: st.Label, Properties: map[string]any{},
		})
		res = &r.snap.Resources[len(r.snap.Resources)-1]
	}
	if r.mounted[res.ID] {
		return nil
	}
	if st.Box != nil {
		res.Box = *st.Box
	}
	if err := r.mountResource(res); err != nil {
		return err
	}
	r.scheduleSync(res.Type)
	return nil
}

func (r *Replayer) unmountStep(st Step) error {
	res := r.snap.ResourceByID(st.Resource)
	if res == nil || !r.mounted[res.ID] {
		return fmt.Errorf("unmount_resource: %w: %s", ErrNotMounted, st.Resource)
	}
	el := resourceElement(res.ID)
	r.rec.RemoveResourceEndpoint(el)
	if err := r.surface.Unmount(el); err != nil {
		return err
	}
	r.mounted[res.ID] = false
	r.scheduleSync(res.Type)
	return nil
}

// setLinks replaces the desired links of one type, the way the state layer pushes a new
// link set after an external change.
func (r *Replayer) setLinks(st Step) error {
	if st.Type == "" {
		return fmt.Errorf("set_links: %w: type", ErrMissingArgument)
	}
	var links []diagram.Link
	for _, l := range r.snap.Links {
		if l.Type != st.Type {
			links = append(links, l)
		}
	}
	for owner, resources := range st.Links {
		if r.snap.OwnerByID(owner) == nil {
			return fmt.Errorf("set_links: %w: %q", ErrUnknownNode, owner)
		}
		for _, res := range resources {
			rr := r.snap.ResourceByID(res)
			if rr == nil || rr.Type != st.Type {
				return fmt.Errorf("set_links: %w: %s %q", ErrUnknownNode, st.Type, res)
			}
			links = append(links, diagram.Link{
				Owner: owner, Resource: res, Type: st.Type, MountPath: st.Metadata[owner][res],
			})
		}
	}
	r.snap.Links = links
	r.scheduleSync(st.Type)
	return nil
}

func (r *Replayer) layout(st Step) error {
	if st.Box == nil {
		return fmt.Errorf("layout: %w: box", ErrMissingArgument)
	}
	var el surface.ElementID
	switch {
	case st.Owner != "" && r.snap.OwnerByID(st.Owner) != nil:
		el = ownerElement(st.Owner)
		r.snap.OwnerByID(st.Owner).Box = *st.Box
	case st.Resource != "" && r.snap.ResourceByID(st.Resource) != nil:
		el = resourceElement(st.Resource)
		r.snap.ResourceByID(st.Resource).Box = *st.Box
	default:
		return fmt.Errorf("layout: %w", ErrUnknownNode)
	}
	if err := r.surface.Place(el, *st.Box); err != nil {
		return err
	}
	r.rec.OnLayoutChanged()
	return nil
}
