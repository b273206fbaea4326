package handler

import (
	"path"

	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/json-to-terraform/connector/internal/diagram"
	"github.com/json-to-terraform/connector/internal/export"
	"github.com/json-to-terraform/connector/internal/overlay"
	"github.com/json-to-terraform/connector/internal/registry"
	"github.com/json-to-terraform/connector/internal/result"
	"github.com/json-to-terraform/connector/internal/surface"
)

// Volume is the resource type of container volumes. Volume links carry the path the volume
// is mounted at inside the container.
const Volume = "volume"

type volumeHandler struct{}

func init() {
	registry.Default.Register(Volume, &volumeHandler{})
}

func (volumeHandler) ResourceType() string  { return Volume }
func (volumeHandler) TerraformType() string { return "docker_volume" }
func (volumeHandler) CarriesValue() bool    { return true }

func (volumeHandler) Decorate(c *surface.Connection, editable bool, value string) {
	overlay.Attach(c, editable, value)
}

func (volumeHandler) Validate(link diagram.Link) ([]result.Error, []result.Warning) {
	var errs []result.Error
	var warns []result.Warning
	switch {
	case link.MountPath == "":
		warns = append(warns, result.Warning{
			Type: "validation_warning", Severity: "warning", NodeID: link.Owner,
			Message:    "volume " + link.Resource + " has no mount path",
			Suggestion: "Edit the link label to set the container path",
		})
	case !path.IsAbs(link.MountPath):
		errs = append(errs, result.Error{
			Type: "validation_error", Severity: "error", NodeID: link.Owner,
			Message:    "mount path must be absolute: " + link.MountPath,
			Suggestion: "Use a path such as /var/lib/data",
		})
	}
	return errs, warns
}

func (h volumeHandler) GenerateHCL(res *diagram.Resource) ([]byte, error) {
	block := export.ResourceBlock(h.TerraformType(), export.SanitizeName(res.ID))
	body := block.Body()

	p := res.Properties
	name := res.Label
	if name == "" {
		name = res.ID
	}
	export.SetAttributeStr(body, "name", name)
	export.SetAttributeStr(body, "driver", diagram.GetStr(p, "driver"))
	export.SetAttributeMap(body, "driver_opts", diagram.GetStrMap(p, "driver_opts"))

	return export.BlockToBytes(block), nil
}

func (h volumeHandler) AppendLinks(body *hclwrite.Body, links []diagram.Link, refs RefMap) {
	for _, l := range links {
		vb := body.AppendNewBlock("volumes", nil).Body()
		export.SetAttributeRef(vb, "volume_name", address(refs, l.Resource, h.TerraformType()), "name")
		export.SetAttributeStr(vb, "container_path", l.MountPath)
	}
}
