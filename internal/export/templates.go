package export

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/json-to-terraform/connector/internal/diagram"
)

// ContainerType is the Terraform resource type rendered for owners.
const ContainerType = "docker_container"

// VersionsTF returns content for versions.tf (terraform block + docker provider).
func VersionsTF() []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	tfBlock := body.AppendNewBlock("terraform", nil)
	tfBody := tfBlock.Body()
	tfBody.SetAttributeValue("required_version", cty.StringVal(">= 1.0"))
	reqProv := tfBody.AppendNewBlock("required_providers", nil)
	reqProv.Body().SetAttributeValue("docker", cty.ObjectVal(map[string]cty.Value{
		"source":  cty.StringVal("kreuzwerker/docker"),
		"version": cty.StringVal("~> 3.0"),
	}))

	body.AppendNewline()
	provBlock := body.AppendNewBlock("provider", []string{"docker"})
	provBlock.Body().SetAttributeTraversal("host", varTraversal("docker_host"))

	return f.Bytes()
}

// VariablesTF returns content for variables.tf.
func VariablesTF() []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	host := body.AppendNewBlock("variable", []string{"docker_host"})
	host.Body().SetAttributeValue("description", cty.StringVal("Docker daemon address"))
	host.Body().SetAttributeTraversal("type", hcl.Traversal{hcl.TraverseRoot{Name: "string"}})
	host.Body().SetAttributeValue("default", cty.StringVal("unix:///var/run/docker.sock"))

	body.AppendNewline()
	project := body.AppendNewBlock("variable", []string{"project"})
	project.Body().SetAttributeValue("description", cty.StringVal("Project label set on every container"))
	project.Body().SetAttributeTraversal("type", hcl.Traversal{hcl.TraverseRoot{Name: "string"}})
	project.Body().SetAttributeValue("default", cty.StringVal("canvas"))

	return f.Bytes()
}

// OutputsTF returns one id output per owner.
func OutputsTF(owners []diagram.Owner) []byte {
	if len(owners) == 0 {
		return nil
	}
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	for i, o := range owners {
		if i > 0 {
			body.AppendNewline()
		}
		out := body.AppendNewBlock("output", []string{SanitizeName(o.ID) + "_id"})
		out.Body().SetAttributeTraversal("value", RefTraversal(Address(ContainerType, o.ID), "id"))
	}
	return f.Bytes()
}

// TfvarsFromMetadata generates terraform.tfvars from canvas metadata.
func TfvarsFromMetadata(m *diagram.Metadata) []byte {
	if m == nil {
		return nil
	}
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	SetAttributeStr(body, "project", SanitizeName(m.Name))
	return f.Bytes()
}

// varTraversal builds hcl.Traversal for var.name (e.g. var.docker_host).
func varTraversal(name string) hcl.Traversal {
	return hcl.Traversal{
		hcl.TraverseRoot{Name: "var"},
		hcl.TraverseAttr{Name: name},
	}
}
