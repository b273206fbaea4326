package registry

import (
	"sort"
	"sync"

	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/json-to-terraform/connector/internal/diagram"
	"github.com/json-to-terraform/connector/internal/result"
	"github.com/json-to-terraform/connector/internal/surface"
)

// RefMap maps canvas node ids to the Terraform address they were rendered at.
type RefMap map[string]string

// ResourceHandler owns everything type-specific about one kind of resource: how its links
// are decorated and validated, and how it and its links render.
type ResourceHandler interface {
	ResourceType() string
	// TerraformType is the Terraform resource type rendered for a resource node.
	TerraformType() string
	// CarriesValue reports whether links of this type hold an editable value.
	CarriesValue() bool
	// Decorate adds the type-specific overlays to a freshly drawn connection.
	Decorate(c *surface.Connection, editable bool, value string)
	Validate(link diagram.Link) ([]result.Error, []result.Warning)
	GenerateHCL(res *diagram.Resource) ([]byte, error)
	// AppendLinks writes the owner side of links into the owner's resource block.
	AppendLinks(body *hclwrite.Body, links []diagram.Link, refs RefMap)
}

// Default is filled by the handler package from init().
var Default = New()

// Registry maps resource types to their handlers. It is safe for concurrent reads.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]ResourceHandler
}

// New returns a registry with no handlers.
func New() *Registry {
	return &Registry{handlers: make(map[string]ResourceHandler)}
}

// Register installs h for resourceType, replacing any earlier handler.
func (r *Registry) Register(resourceType string, h ResourceHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[resourceType] = h
}

// Get looks up the handler of a resource type.
func (r *Registry) Get(resourceType string) (ResourceHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[resourceType]
	return h, ok
}

// ListSupportedTypes returns all registered resource types, sorted.
func (r *Registry) ListSupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
