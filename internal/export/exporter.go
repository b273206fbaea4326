package export

import (
	"runtime"
	"strings"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/json-to-terraform/connector/internal/dependency"
	"github.com/json-to-terraform/connector/internal/diagram"
	"github.com/json-to-terraform/connector/internal/registry"
	"github.com/json-to-terraform/connector/internal/result"
)

// Options configures the exporter.
type Options struct {
	// EmitTfvars generates terraform.tfvars from canvas metadata when true.
	EmitTfvars bool
	// MaxParallel is the max number of nodes rendered in parallel per tier (0 = default).
	MaxParallel int
}

// DefaultOptions returns default exporter options.
func DefaultOptions() Options {
	return Options{
		EmitTfvars:  true,
		MaxParallel: 0, // use runtime.NumCPU
	}
}

// Exporter renders a canvas snapshot as Terraform files for the docker provider.
type Exporter struct {
	opts Options
	reg  *registry.Registry
}

// New returns an exporter using the handlers of reg (registry.Default when nil).
func New(opts Options, reg *registry.Registry) *Exporter {
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = runtime.NumCPU()
	}
	if opts.MaxParallel > 32 {
		opts.MaxParallel = 32
	}
	if reg == nil {
		reg = registry.Default
	}
	return &Exporter{opts: opts, reg: reg}
}

type nodeResult struct {
	nodeID string
	addr   string
	hcl    []byte
	errs   []result.Error
	warns  []result.Warning
}

// Export validates the snapshot, orders its nodes and renders one block per node.
func (e *Exporter) Export(s *diagram.Snapshot) (*result.ExportResult, error) {
	out := &result.ExportResult{Success: true}

	for _, ve := range diagram.Validate(s) {
		out.Errors = append(out.Errors, result.Error{
			Type: ve.Type, Severity: ve.Severity, NodeID: ve.NodeID,
			Message: ve.Message, Suggestion: ve.Suggestion,
		})
	}
	if len(out.Errors) > 0 {
		out.Success = false
		return out, nil
	}

	_, tiers, err := dependency.Order(s)
	if err != nil {
		out.Success = false
		out.Errors = append(out.Errors, result.Error{
			Type: "dependency_error", Severity: "error",
			Message: err.Error(), Suggestion: "Make sure no id is used both as owner and resource",
		})
		return out, nil
	}

	refs := make(registry.RefMap)
	var blocks [][]byte
	sem := make(chan struct{}, e.opts.MaxParallel)

	// Tier by tier; owners only ever depend on resources of earlier tiers, so refs is
	// complete for a tier before its goroutines read it.
	for _, tier := range tiers {
		var wg sync.WaitGroup
		var mu sync.Mutex
		results := make(map[string]nodeResult, len(tier))

		for _, id := range tier {
			wg.Add(1)
			sem <- struct{}{}
			go func(id string) {
				defer wg.Done()
				defer func() { <-sem }()
				res := e.render(s, id, refs)
				mu.Lock()
				results[id] = res
				mu.Unlock()
			}(id)
		}
		wg.Wait()

		for _, id := range tier {
			res := results[id]
			out.Errors = append(out.Errors, res.errs...)
			out.Warnings = append(out.Warnings, res.warns...)
			if len(res.errs) > 0 {
				out.Success = false
			}
			if len(res.hcl) > 0 {
				blocks = append(blocks, res.hcl)
				refs[id] = res.addr
			}
		}
	}

	if !out.Success {
		return out, nil
	}

	b := NewBuilder(e.opts.EmitTfvars)
	b.Set(FileVersions, VersionsTF())
	b.Set(FileVariables, VariablesTF())
	b.Set(FileOutputs, OutputsTF(s.Owners))
	for _, block := range blocks {
		b.AddResource(block)
	}
	if e.opts.EmitTfvars {
		b.Set(FileTfvars, TfvarsFromMetadata(&s.Metadata))
	}
	out.TerraformFiles = b.Build()
	return out, nil
}

func (e *Exporter) render(s *diagram.Snapshot, id string, refs registry.RefMap) nodeResult {
	if r := s.ResourceByID(id); r != nil {
		return e.renderResource(r)
	}
	if o := s.OwnerByID(id); o != nil {
		return e.renderOwner(s, o, refs)
	}
	return nodeResult{nodeID: id}
}

func (e *Exporter) renderResource(r *diagram.Resource) nodeResult {
	res := nodeResult{nodeID: r.ID}
	h, ok := e.reg.Get(r.Type)
	if !ok {
		res.errs = append(res.errs, unsupported(r.ID, r.Type, e.reg))
		return res
	}
	hcl, err := h.GenerateHCL(r)
	if err != nil {
		res.errs = append(res.errs, result.Error{
			Type: "generation_error", Severity: "error", NodeID: r.ID, Message: err.Error(),
		})
		return res
	}
	res.hcl = hcl
	res.addr = Address(h.TerraformType(), r.ID)
	return res
}

func (e *Exporter) renderOwner(s *diagram.Snapshot, o *diagram.Owner, refs registry.RefMap) nodeResult {
	res := nodeResult{nodeID: o.ID, addr: Address(ContainerType, o.ID)}
	if o.Image == "" {
		res.errs = append(res.errs, result.Error{
			Type: "validation_error", Severity: "error", NodeID: o.ID,
			Message: "image is required", Suggestion: "Set owner.image (e.g. nginx:1.27)",
		})
	}

	block := ResourceBlock(ContainerType, SanitizeName(o.ID))
	body := block.Body()
	name := o.Label
	if name == "" {
		name = o.ID
	}
	SetAttributeStr(body, "name", name)
	SetAttributeStr(body, "image", o.Image)
	SetAttributeStr(body, "restart", diagram.GetStr(o.Properties, "restart"))

	labels := body.AppendNewBlock("labels", nil)
	labels.Body().SetAttributeValue("label", cty.StringVal("com.docker.compose.project"))
	labels.Body().SetAttributeTraversal("value", varTraversal("project"))

	for _, t := range s.ResourceTypes() {
		links := s.LinksOf(o.ID, t)
		if len(links) == 0 {
			continue
		}
		h, ok := e.reg.Get(t)
		if !ok {
			res.errs = append(res.errs, unsupported(o.ID, t, e.reg))
			continue
		}
		for _, l := range links {
			errs, warns := h.Validate(l)
			res.errs = append(res.errs, errs...)
			res.warns = append(res.warns, warns...)
		}
		h.AppendLinks(body, links, refs)
	}

	if len(res.errs) == 0 {
		res.hcl = BlockToBytes(block)
	}
	return res
}

func unsupported(nodeID, resourceType string, reg *registry.Registry) result.Error {
	return result.Error{
		Type: "validation_error", Severity: "error", NodeID: nodeID,
		Message:    "unsupported resource type: " + resourceType,
		Suggestion: "Use one of: " + strings.Join(reg.ListSupportedTypes(), ", "),
	}
}
