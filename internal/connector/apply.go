package connector

import (
	"fmt"

	"github.com/json-to-terraform/connector/internal/linkdiff"
	"github.com/json-to-terraform/connector/internal/overlay"
	"github.com/json-to-terraform/connector/internal/result"
	"github.com/json-to-terraform/connector/internal/surface"
)

// Links returns the links of one type currently drawn on the surface.
func (r *Reconciler) Links(resourceType string) linkdiff.Links {
	out := make(linkdiff.Links)
	for _, c := range r.surface.Connections() {
		if p, ok := r.reg.ResolveConnection(c, resourceType); ok {
			out.Add(p.OwnerID, p.ResourceID)
		}
	}
	return out
}

// FindConnection returns the drawn connection of a link, or nil.
func (r *Reconciler) FindConnection(ownerID, resourceID, resourceType string) *surface.Connection {
	for _, c := range r.surface.Connections() {
		p, ok := r.reg.ResolveConnection(c, resourceType)
		if ok && p.OwnerID == ownerID && p.ResourceID == resourceID {
			return c
		}
	}
	return nil
}

// ApplyLinks makes the drawn connections of resourceType match desired with the fewest
// removals and additions, in one repaint. Desired is the whole link set of the type. Links
// that cannot be drawn yet are reported as warnings; the next call retries them.
func (r *Reconciler) ApplyLinks(desired linkdiff.Links, resourceType string) result.ApplyReport {
	report := result.ApplyReport{ResourceType: resourceType}
	plan := linkdiff.Diff(desired, r.Links(resourceType))

	r.surface.Batch(func() {
		if !plan.Empty() {
			r.remove(plan.ToRemove, resourceType, &report)
			r.add(plan.ToAdd, resourceType, &report)
		}
		r.refreshValues(resourceType, &report)
	})

	if report.Changed() {
		r.log.Debug("links applied", "resource_type", resourceType,
			"added", report.Added, "removed", report.Removed, "updated", report.Updated)
	}
	return report
}

func (r *Reconciler) remove(toRemove linkdiff.Links, resourceType string, report *result.ApplyReport) {
	for _, owner := range toRemove.Owners() {
		resources := toRemove[owner]
		if len(resources) == 0 {
			continue
		}
		for _, res := range resources {
			c := r.FindConnection(owner, res, resourceType)
			if c == nil {
				continue
			}
			if err := r.surface.Detach(c, false); err != nil {
				r.fail(report, owner, fmt.Sprintf("detach %s -> %s: %v", owner, res, err))
				continue
			}
			report.Removed++
		}
		// trim the anchors freed above down to the recorded desired size
		r.reg.UpdateEndpoints(r.reg.Desired(owner, resourceType), owner, resourceType, r.reg.Metadata(owner, resourceType))
	}
}

func (r *Reconciler) add(toAdd linkdiff.Links, resourceType string, report *result.ApplyReport) {
	h, _ := r.handlers.Get(resourceType)
	for _, owner := range toAdd.Owners() {
		for _, res := range toAdd[owner] {
			free := r.reg.FreeEndpoints(owner, resourceType, true)
			if len(free) == 0 {
				r.warn(report, owner, "no free "+resourceType+" endpoint for "+res,
					"Size the owner's endpoints with UpdateEndpoints before applying links")
				continue
			}
			attach := r.reg.AttachPoint(res)
			if attach == nil {
				r.warn(report, owner, resourceType+" "+res+" is not mounted",
					"Mount the resource and call AddResourceEndpoint")
				continue
			}
			c, err := r.surface.Connect(surface.ConnectParams{Source: free[0], Target: attach})
			if err != nil {
				r.fail(report, owner, fmt.Sprintf("connect %s -> %s: %v", owner, res, err))
				continue
			}
			if h != nil {
				h.Decorate(c, !r.opts.ReadOnly, r.reg.MetadataFor(owner, resourceType, res))
			}
			r.syncDeleteAffordances(c)
			report.Added++
		}
	}
}

// refreshValues shows the recorded metadata on connections whose label is out of date.
// Connections being edited are left alone.
func (r *Reconciler) refreshValues(resourceType string, report *result.ApplyReport) {
	h, ok := r.handlers.Get(resourceType)
	if !ok || !h.CarriesValue() {
		return
	}
	for _, c := range r.surface.Connections() {
		p, ok := r.reg.ResolveConnection(c, resourceType)
		if !ok || overlay.CurrentMode(c) != overlay.ModeDisplay {
			continue
		}
		want := r.reg.MetadataFor(p.OwnerID, resourceType, p.ResourceID)
		if want == "" || want == overlay.Value(c) {
			continue
		}
		if c.Overlay(overlay.KeyValueEdit) != nil {
			if err := overlay.Commit(c, want); err != nil {
				r.fail(report, p.OwnerID, err.Error())
				continue
			}
		} else {
			c.Overlay(overlay.KeyValue).SetLabel(want)
		}
		report.Updated++
	}
}

func (r *Reconciler) syncDeleteAffordances(c *surface.Connection) {
	for _, o := range c.Overlays() {
		if !overlay.IsDelete(o) {
			continue
		}
		if r.opts.ReadOnly {
			o.Hide()
		} else {
			o.Show()
		}
	}
}

func (r *Reconciler) warn(report *result.ApplyReport, owner, msg, suggestion string) {
	r.log.Warn(msg, "owner", owner, "resource_type", report.ResourceType)
	report.Warnings = append(report.Warnings, result.Warning{
		Type: "reconcile_warning", Severity: "warning", NodeID: owner,
		Message: msg, Suggestion: suggestion,
	})
}

func (r *Reconciler) fail(report *result.ApplyReport, owner, msg string) {
	r.log.Error(msg, "owner", owner, "resource_type", report.ResourceType)
	report.Errors = append(report.Errors, result.Error{
		Type: "reconcile_error", Severity: "error", NodeID: owner, Message: msg,
	})
}
