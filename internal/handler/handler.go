package handler

import (
	"github.com/json-to-terraform/connector/internal/export"
	"github.com/json-to-terraform/connector/internal/registry"
)

// RefMap is an alias for registry.RefMap so handlers can use refs without importing registry in every signature.
type RefMap = registry.RefMap

// address returns the rendered address of a resource, falling back to the address it would
// get as tfType when it was not rendered in this pass.
func address(refs RefMap, id, tfType string) string {
	if addr, ok := refs[id]; ok {
		return addr
	}
	return export.Address(tfType, id)
}
