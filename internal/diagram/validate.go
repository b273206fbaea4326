package diagram

import (
	"fmt"
	"sort"

	"github.com/json-to-terraform/connector/internal/linkdiff"
)

// ValidationError is one problem found in a canvas snapshot.
type ValidationError struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"` // error
	NodeID     string `json:"node_id,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Validate checks required fields and references of the snapshot. Links without a type take
// the type of their resource. Whether a resource type is supported is decided by handlers.
func Validate(s *Snapshot) []ValidationError {
	var errs []ValidationError

	if s == nil {
		return []ValidationError{{Type: "schema_error", Severity: "error", Message: "snapshot is nil"}}
	}

	if s.Metadata.Version == "" {
		errs = append(errs, ValidationError{
			Type: "schema_error", Severity: "error",
			Message: "metadata.version is required", Suggestion: "Set metadata.version (e.g. \"1.0\")",
		})
	}

	seen := make(map[string]bool)
	checkID := func(kind, id string, i int) {
		switch {
		case id == "":
			errs = append(errs, ValidationError{
				Type: "schema_error", Severity: "error",
				Message: fmt.Sprintf("%s at index %d has empty id", kind, i), Suggestion: "Set " + kind + ".id",
			})
		case seen[id]:
			errs = append(errs, ValidationError{
				Type: "schema_error", Severity: "error", NodeID: id,
				Message: "duplicate node id: " + id, Suggestion: "Use unique ids for owners and resources",
			})
		default:
			seen[id] = true
		}
	}

	owners := make(map[string]bool)
	for i := range s.Owners {
		o := &s.Owners[i]
		checkID("owner", o.ID, i)
		owners[o.ID] = true
		if o.Properties == nil {
			o.Properties = make(map[string]any)
		}
	}

	resourceType := make(map[string]string)
	for i := range s.Resources {
		r := &s.Resources[i]
		checkID("resource", r.ID, i)
		if r.Type == "" {
			errs = append(errs, ValidationError{
				Type: "schema_error", Severity: "error", NodeID: r.ID,
				Message: "resource.type is required", Suggestion: "Set resource.type (e.g. network, volume)",
			})
		}
		resourceType[r.ID] = r.Type
		if r.Properties == nil {
			r.Properties = make(map[string]any)
		}
	}

	seenLink := make(map[Link]bool)
	for i := range s.Links {
		l := &s.Links[i]
		if !owners[l.Owner] {
			errs = append(errs, ValidationError{
				Type: "schema_error", Severity: "error", NodeID: l.Owner,
				Message:    fmt.Sprintf("link at index %d references unknown owner %q", i, l.Owner),
				Suggestion: "Reference an existing owner id",
			})
			continue
		}
		rt, ok := resourceType[l.Resource]
		if !ok {
			errs = append(errs, ValidationError{
				Type: "schema_error", Severity: "error", NodeID: l.Owner,
				Message:    fmt.Sprintf("link at index %d references unknown resource %q", i, l.Resource),
				Suggestion: "Reference an existing resource id",
			})
			continue
		}
		if l.Type == "" {
			l.Type = rt
		} else if l.Type != rt {
			errs = append(errs, ValidationError{
				Type: "schema_error", Severity: "error", NodeID: l.Owner,
				Message:    fmt.Sprintf("link %s -> %s has type %q but the resource is a %q", l.Owner, l.Resource, l.Type, rt),
				Suggestion: "Drop link.type or make it match the resource",
			})
			continue
		}
		key := Link{Owner: l.Owner, Resource: l.Resource, Type: l.Type}
		if seenLink[key] {
			errs = append(errs, ValidationError{
				Type: "schema_error", Severity: "error", NodeID: l.Owner,
				Message: fmt.Sprintf("duplicate link %s -> %s", l.Owner, l.Resource), Suggestion: "Link each resource once per owner",
			})
		}
		seenLink[key] = true
	}

	return errs
}

// OwnerByID returns the owner with the given id, or nil.
func (s *Snapshot) OwnerByID(id string) *Owner {
	for i := range s.Owners {
		if s.Owners[i].ID == id {
			return &s.Owners[i]
		}
	}
	return nil
}

// ResourceByID returns the resource with the given id, or nil.
func (s *Snapshot) ResourceByID(id string) *Resource {
	for i := range s.Resources {
		if s.Resources[i].ID == id {
			return &s.Resources[i]
		}
	}
	return nil
}

// ResourceTypes returns the distinct resource types of the snapshot, sorted.
func (s *Snapshot) ResourceTypes() []string {
	set := make(map[string]bool)
	for _, r := range s.Resources {
		if r.Type != "" {
			set[r.Type] = true
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ResourcesOfType returns the ids of the resources of one type in snapshot order.
func (s *Snapshot) ResourcesOfType(resourceType string) []string {
	var out []string
	for _, r := range s.Resources {
		if r.Type == resourceType {
			out = append(out, r.ID)
		}
	}
	return out
}

// LinksOf returns the links of one owner and type in snapshot order.
func (s *Snapshot) LinksOf(ownerID, resourceType string) []Link {
	var out []Link
	for _, l := range s.Links {
		if l.Owner == ownerID && l.Type == resourceType {
			out = append(out, l)
		}
	}
	return out
}

// LinksByOwner returns the links of one type keyed by owner. Every owner of the snapshot
// has a key, linked or not.
func (s *Snapshot) LinksByOwner(resourceType string) linkdiff.Links {
	out := make(linkdiff.Links, len(s.Owners))
	for _, o := range s.Owners {
		out[o.ID] = []string{}
	}
	for _, l := range s.Links {
		if l.Type == resourceType {
			out.Add(l.Owner, l.Resource)
		}
	}
	return out
}

// MetadataByOwner returns the mount paths of one type keyed by owner, then resource.
func (s *Snapshot) MetadataByOwner(resourceType string) map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, l := range s.Links {
		if l.Type != resourceType || l.MountPath == "" {
			continue
		}
		if out[l.Owner] == nil {
			out[l.Owner] = make(map[string]string)
		}
		out[l.Owner][l.Resource] = l.MountPath
	}
	return out
}

// GetStr returns a string property, or "".
func GetStr(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetBool returns a bool property, or false.
func GetBool(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	v, ok := m[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// GetMap returns a nested property map.
func GetMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	v, ok := m[key]
	if !ok {
		return nil
	}
	mm, _ := v.(map[string]any)
	return mm
}

// GetStrMap returns a map of string -> string (e.g. labels).
func GetStrMap(m map[string]any, key string) map[string]string {
	raw := GetMap(m, key)
	if raw == nil {
		return nil
	}
	out := make(map[string]string)
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
