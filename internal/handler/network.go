package handler

import (
	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/json-to-terraform/connector/internal/diagram"
	"github.com/json-to-terraform/connector/internal/export"
	"github.com/json-to-terraform/connector/internal/registry"
	"github.com/json-to-terraform/connector/internal/result"
	"github.com/json-to-terraform/connector/internal/surface"
)

// Network is the resource type of container networks.
const Network = "network"

type networkHandler struct{}

func init() {
	registry.Default.Register(Network, &networkHandler{})
}

func (networkHandler) ResourceType() string  { return Network }
func (networkHandler) TerraformType() string { return "docker_network" }
func (networkHandler) CarriesValue() bool    { return false }

// Network links carry nothing but the delete affordances of their owner anchor.
func (networkHandler) Decorate(*surface.Connection, bool, string) {}

func (networkHandler) Validate(link diagram.Link) ([]result.Error, []result.Warning) {
	var warns []result.Warning
	if link.MountPath != "" {
		warns = append(warns, result.Warning{
			Type: "validation_warning", Severity: "warning", NodeID: link.Owner,
			Message:    "mount_path is ignored on network link to " + link.Resource,
			Suggestion: "Remove link.mount_path",
		})
	}
	return nil, warns
}

func (h networkHandler) GenerateHCL(res *diagram.Resource) ([]byte, error) {
	block := export.ResourceBlock(h.TerraformType(), export.SanitizeName(res.ID))
	body := block.Body()

	p := res.Properties
	name := res.Label
	if name == "" {
		name = res.ID
	}
	export.SetAttributeStr(body, "name", name)
	export.SetAttributeStr(body, "driver", diagram.GetStr(p, "driver"))
	if diagram.GetBool(p, "internal") {
		export.SetAttributeBool(body, "internal", true)
	}
	if diagram.GetBool(p, "attachable") {
		export.SetAttributeBool(body, "attachable", true)
	}
	export.SetAttributeMap(body, "options", diagram.GetStrMap(p, "options"))

	return export.BlockToBytes(block), nil
}

func (h networkHandler) AppendLinks(body *hclwrite.Body, links []diagram.Link, refs RefMap) {
	for _, l := range links {
		nb := body.AppendNewBlock("networks_advanced", nil).Body()
		export.SetAttributeRef(nb, "name", address(refs, l.Resource, h.TerraformType()), "name")
	}
}
