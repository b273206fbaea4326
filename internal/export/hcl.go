package export

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// SanitizeName converts a node id to a Terraform-safe resource name (e.g. net-1 -> net_1).
func SanitizeName(id string) string {
	r := strings.NewReplacer("-", "_", ".", "_", " ", "_", "/", "_")
	name := r.Replace(id)
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = "n_" + name
	}
	return name
}

// Address returns the Terraform address of a node rendered as tfType.
func Address(tfType, id string) string {
	return tfType + "." + SanitizeName(id)
}

// ResourceBlock returns an empty resource block labelled with type and name.
func ResourceBlock(resourceType, name string) *hclwrite.Block {
	return hclwrite.NewBlock("resource", []string{resourceType, name})
}

// SetAttributeStr sets name to value unless value is empty.
func SetAttributeStr(body *hclwrite.Body, name, value string) {
	if value != "" {
		body.SetAttributeValue(name, cty.StringVal(value))
	}
}

// SetAttributeBool always writes the attribute, false included.
func SetAttributeBool(body *hclwrite.Body, name string, value bool) {
	body.SetAttributeValue(name, cty.BoolVal(value))
}

// SetAttributeMap sets a map(string) attribute (e.g. driver options).
func SetAttributeMap(body *hclwrite.Body, name string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	ctyMap := make(map[string]cty.Value)
	for k, v := range m {
		ctyMap[k] = cty.StringVal(v)
	}
	body.SetAttributeValue(name, cty.MapVal(ctyMap))
}

// SetAttributeRef sets an attribute to a reference such as docker_network.net_1.name.
func SetAttributeRef(body *hclwrite.Body, name, addr, attr string) {
	body.SetAttributeTraversal(name, RefTraversal(addr, attr))
}

// RefTraversal builds hcl.Traversal for a resource address and attribute.
func RefTraversal(addr, attr string) hcl.Traversal {
	var t hcl.Traversal
	for _, part := range strings.Split(addr, ".") {
		if part == "" {
			continue
		}
		if len(t) == 0 {
			t = append(t, hcl.TraverseRoot{Name: part})
		} else {
			t = append(t, hcl.TraverseAttr{Name: part})
		}
	}
	if attr != "" {
		t = append(t, hcl.TraverseAttr{Name: attr})
	}
	return t
}

// BlockToBytes renders block on its own, newline terminated.
func BlockToBytes(block *hclwrite.Block) []byte {
	f := hclwrite.NewEmptyFile()
	f.Body().AppendBlock(block)
	return f.Bytes()
}
