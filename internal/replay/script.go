package replay

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/json-to-terraform/connector/internal/diagram"
	"github.com/json-to-terraform/connector/internal/geometry"
)

// Op names a replay step.
type Op string

const (
	OpConnect         Op = "connect"
	OpDisconnect      Op = "disconnect"
	OpDeleteClick     Op = "delete_click"
	OpMove            Op = "move"
	OpEditValue       Op = "edit_value"
	OpMountResource   Op = "mount_resource"
	OpUnmountResource Op = "unmount_resource"
	OpSetLinks        Op = "set_links"
	OpLayout          Op = "layout"
	OpReadOnly        Op = "read_only"
	OpTick            Op = "tick"
)

// Script is an initial canvas followed by the steps to replay on it.
type Script struct {
	Canvas diagram.Snapshot `json:"canvas" yaml:"canvas"`
	Steps  []Step           `json:"steps" yaml:"steps"`
}

// Step is one user gesture or state layer change. Which fields matter depends on Op.
type Step struct {
	Op       Op     `json:"op" yaml:"op"`
	Owner    string `json:"owner,omitempty" yaml:"owner,omitempty"`
	Resource string `json:"resource,omitempty" yaml:"resource,omitempty"`
	// Type defaults to the type of Resource.
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
	ToOwner    string `json:"to_owner,omitempty" yaml:"to_owner,omitempty"`
	ToResource string `json:"to_resource,omitempty" yaml:"to_resource,omitempty"`
	Value      string `json:"value,omitempty" yaml:"value,omitempty"`
	Label      string `json:"label,omitempty" yaml:"label,omitempty"`
	// Box places the element of Owner or Resource.
	Box      *geometry.Box                `json:"box,omitempty" yaml:"box,omitempty"`
	Links    map[string][]string          `json:"links,omitempty" yaml:"links,omitempty"`
	Metadata map[string]map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Enabled  bool                         `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Count    int                          `json:"count,omitempty" yaml:"count,omitempty"`
}

// Parse decodes a YAML or JSON script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, st := range s.Steps {
		if st.Op == "" {
			return nil, fmt.Errorf("parse script: step %d has no op", i)
		}
	}
	return &s, nil
}

// LoadFile reads and parses the script at path.
func LoadFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return Parse(data)
}
