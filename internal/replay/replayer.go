// Package replay plays the state layer of a canvas: it mounts a snapshot on an in-memory
// surface, keeps the desired links, answers link notifications by re-syncing on the next
// tick, and replays scripted user gestures against the reconciler.
package replay

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/json-to-terraform/connector/internal/connector"
	"github.com/json-to-terraform/connector/internal/dependency"
	"github.com/json-to-terraform/connector/internal/diagram"
	"github.com/json-to-terraform/connector/internal/export"
	"github.com/json-to-terraform/connector/internal/registry"
	"github.com/json-to-terraform/connector/internal/result"
	"github.com/json-to-terraform/connector/internal/surface"
	"github.com/json-to-terraform/connector/internal/tick"
)

// Replayer runs one script. It is not reusable.
type Replayer struct {
	opts    Options
	reg     *registry.Registry
	log     *slog.Logger
	loop    *tick.Loop
	surface *surface.Surface
	rec     *connector.Reconciler

	snap    *diagram.Snapshot
	mounted map[string]bool
	pending map[string]bool
	out     *result.RunResult
}

// New returns a replayer using the handlers of reg (registry.Default when nil).
func New(opts Options, reg *registry.Registry) *Replayer {
	if opts.MaxTicks <= 0 {
		opts.MaxTicks = DefaultOptions().MaxTicks
	}
	if opts.Capacity == "" {
		opts.Capacity = CapacityLinked
	}
	if opts.Logger == nil {
		opts.Logger = DefaultOptions().Logger
	}
	if reg == nil {
		reg = registry.Default
	}
	return &Replayer{
		opts:    opts,
		reg:     reg,
		log:     opts.Logger,
		loop:    tick.NewLoop(),
		surface: surface.New(surface.DefaultOptions()),
		mounted: make(map[string]bool),
		pending: make(map[string]bool),
	}
}

// Reconciler returns the reconciler driven by the replay, nil before Run.
func (r *Replayer) Reconciler() *connector.Reconciler { return r.rec }

// Run mounts the canvas of s, reconciles it, replays its steps and checks that the drawn
// links match the desired ones.
func (r *Replayer) Run(s *Script) (*result.RunResult, error) {
	out := &result.RunResult{Success: true, Links: make(map[string]map[string][]string)}
	r.out = out
	r.snap = &s.Canvas

	for _, ve := range diagram.Validate(r.snap) {
		out.Fail(result.Error{
			Type: ve.Type, Severity: ve.Severity, NodeID: ve.NodeID,
			Message: ve.Message, Suggestion: ve.Suggestion,
		})
	}
	for _, t := range r.snap.ResourceTypes() {
		if _, ok := r.reg.Get(t); !ok {
			out.Fail(result.Error{
				Type: "validation_error", Severity: "error",
				Message:    "unsupported resource type: " + t,
				Suggestion: "Use one of the registered types",
			})
		}
	}
	if !out.Success {
		return out, nil
	}

	copts := connector.DefaultOptions()
	copts.ReadOnly = r.opts.ReadOnly
	copts.Endpoints = r.opts.Endpoints
	copts.Scheduler = r.loop
	copts.Handlers = r.reg
	copts.Placeholder = r.opts.Placeholder
	copts.Logger = r.log
	rec, err := connector.New(r.surface, copts)
	if err != nil {
		return nil, err
	}
	r.rec = rec
	r.subscribe()

	if err := r.mount(); err != nil {
		out.Fail(result.Error{Type: "dependency_error", Severity: "error", Message: err.Error()})
		return out, nil
	}
	for _, t := range r.reg.ListSupportedTypes() {
		r.sync(t)
	}

	for i, st := range s.Steps {
		if err := r.step(st); err != nil {
			r.log.Warn("step failed", "step", i, "op", st.Op, "error", err)
			out.Fail(result.Error{
				Type: "step_error", Severity: "error", NodeID: st.Owner,
				Message: fmt.Sprintf("step %d (%s): %v", i, st.Op, err),
			})
		}
		ticks, idle := r.loop.Drain(r.opts.MaxTicks)
		out.Ticks += ticks
		if !idle {
			out.Fail(result.Error{
				Type: "tick_limit", Severity: "error",
				Message:    fmt.Sprintf("step %d (%s): loop still busy after %d ticks", i, st.Op, ticks),
				Suggestion: "Raise replay.max_ticks",
			})
		}
	}

	r.check()
	out.Swallowed = r.rec.Suppressed()

	if r.opts.EmitHCL && out.Success {
		res, err := export.New(export.DefaultOptions(), r.reg).Export(r.snap)
		if err != nil {
			return nil, err
		}
		out.Warnings = append(out.Warnings, res.Warnings...)
		if !res.Success {
			for _, e := range res.Errors {
				out.Fail(e)
			}
		}
		out.TerraformFiles = res.TerraformFiles
	}
	return out, nil
}

func ownerElement(id string) surface.ElementID    { return surface.ElementID("owner:" + id) }
func resourceElement(id string) surface.ElementID { return surface.ElementID("resource:" + id) }

// mount puts resources on the surface before the owners that link to them.
func (r *Replayer) mount() error {
	ordered, _, err := dependency.Order(r.snap)
	if err != nil {
		return err
	}
	for _, id := range ordered {
		if res := r.snap.ResourceByID(id); res != nil {
			if err := r.mountResource(res); err != nil {
				return err
			}
			continue
		}
		o := r.snap.OwnerByID(id)
		if _, err := r.surface.Mount(ownerElement(o.ID), "", o.Box); err != nil {
			return err
		}
		if err := r.rec.PrepareEndpoints(o.ID, ownerElement(o.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Replayer) mountResource(res *diagram.Resource) error {
	el := resourceElement(res.ID)
	if _, err := r.surface.Mount(el, "", res.Box); err != nil {
		return err
	}
	if err := r.rec.AddResourceEndpoint(el, res.ID, res.Type); err != nil {
		return err
	}
	r.mounted[res.ID] = true
	return nil
}

// subscribe records user notifications in the snapshot and re-syncs on the next tick.
func (r *Replayer) subscribe() {
	for _, t := range r.reg.ListSupportedTypes() {
		t := t
		h, _ := r.reg.Get(t)
		r.rec.OnConnect(t, func(owner, res string) {
			l := diagram.Link{Owner: owner, Resource: res, Type: t}
			if h.CarriesValue() {
				l.MountPath = r.opts.Placeholder
			}
			r.snap.Links = append(r.snap.Links, l)
			r.notify(result.Notification{Kind: result.KindConnect, ResourceType: t, OwnerID: owner, ResourceID: res})
		})
		r.rec.OnDisconnect(t, func(owner, res string) {
			r.removeLink(owner, res, t)
			r.notify(result.Notification{Kind: result.KindDisconnect, ResourceType: t, OwnerID: owner, ResourceID: res})
		})
		r.rec.OnMoved(t, func(owner, res, newOwner, newRes string) {
			if l := r.findLink(owner, res, t); l != nil {
				l.Owner, l.Resource = newOwner, newRes
			}
			r.notify(result.Notification{
				Kind: result.KindMoved, ResourceType: t, OwnerID: owner, ResourceID: res,
				NewOwnerID: newOwner, NewResourceID: newRes,
			})
		})
		r.rec.OnValueChanged(t, func(owner, res, value string) {
			if l := r.findLink(owner, res, t); l != nil {
				l.MountPath = value
			}
			r.notify(result.Notification{Kind: result.KindValueChanged, ResourceType: t, OwnerID: owner, ResourceID: res, Value: value})
		})
	}
}

func (r *Replayer) notify(n result.Notification) {
	r.log.Debug("link notification", "kind", n.Kind, "resource_type", n.ResourceType,
		"owner", n.OwnerID, "resource", n.ResourceID)
	r.out.Notifications = append(r.out.Notifications, n)
	r.scheduleSync(n.ResourceType)
}

// scheduleSync queues one re-sync of resourceType for the next tick.
func (r *Replayer) scheduleSync(resourceType string) {
	if r.pending[resourceType] {
		return
	}
	r.pending[resourceType] = true
	r.loop.Schedule(func() {
		r.pending[resourceType] = false
		r.sync(resourceType)
	})
}

// sync sizes every owner's anchors and applies the desired links of one type.
func (r *Replayer) sync(resourceType string) {
	var available []string
	for _, id := range r.snap.ResourcesOfType(resourceType) {
		if r.mounted[id] {
			available = append(available, id)
		}
	}
	desired := r.snap.LinksByOwner(resourceType)
	metadata := r.snap.MetadataByOwner(resourceType)

	for _, o := range r.snap.Owners {
		capacity := desired[o.ID]
		if r.opts.Capacity == CapacityAvailable {
			capacity = available
		}
		r.rec.UpdateEndpoints(capacity, o.ID, resourceType, metadata[o.ID])
	}

	report := r.rec.ApplyLinks(desired, resourceType)
	if report.Changed() || len(report.Warnings) > 0 || len(report.Errors) > 0 {
		r.out.Reports = append(r.out.Reports, report)
	}
}

// check compares the drawn links with the desired links of mounted resources.
func (r *Replayer) check() {
	for _, t := range r.reg.ListSupportedTypes() {
		want := r.snap.LinksByOwner(t)
		for owner, resources := range want {
			var kept []string
			for _, res := range resources {
				if r.mounted[res] {
					kept = append(kept, res)
				}
			}
			want[owner] = kept
		}

		got := r.rec.Links(t)
		if !got.Equal(want) {
			r.out.Fail(result.Error{
				Type: "bijection_error", Severity: "error",
				Message:    fmt.Sprintf("drawn %s links %v differ from desired %v", t, got, want),
				Suggestion: "Check the reports for links that could not be drawn",
			})
		}

		links := make(map[string][]string)
		for _, owner := range got.Owners() {
			resources := append([]string(nil), got[owner]...)
			sort.Strings(resources)
			links[owner] = resources
		}
		r.out.Links[t] = links
	}
}

func (r *Replayer) findLink(owner, res, resourceType string) *diagram.Link {
	for i := range r.snap.Links {
		l := &r.snap.Links[i]
		if l.Owner == owner && l.Resource == res && l.Type == resourceType {
			return l
		}
	}
	return nil
}

func (r *Replayer) removeLink(owner, res, resourceType string) {
	out := r.snap.Links[:0]
	for _, l := range r.snap.Links {
		if l.Owner == owner && l.Resource == res && l.Type == resourceType {
			continue
		}
		out = append(out, l)
	}
	r.snap.Links = out
}
