package diagram

import "github.com/json-to-terraform/connector/internal/geometry"

// Snapshot is the root structure of a canvas: owners, resources and the links between them.
type Snapshot struct {
	Metadata  Metadata   `json:"metadata" yaml:"metadata"`
	Owners    []Owner    `json:"owners" yaml:"owners"`
	Resources []Resource `json:"resources" yaml:"resources"`
	Links     []Link     `json:"links" yaml:"links"`
}

// Metadata holds canvas-level information.
type Metadata struct {
	Version     string `json:"version" yaml:"version"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Environment string `json:"environment" yaml:"environment"`
}

// Owner is a node that links to resources (a container).
type Owner struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Image string `json:"image" yaml:"image"`
	// Box is the anchor holder strip of the owner on the canvas.
	Box        geometry.Box   `json:"box" yaml:"box"`
	Properties map[string]any `json:"properties" yaml:"properties"`
}

// Resource is a node owners link to (a network or a volume).
type Resource struct {
	ID         string         `json:"id" yaml:"id"`
	Type       string         `json:"type" yaml:"type"`
	Label      string         `json:"label" yaml:"label"`
	Box        geometry.Box   `json:"box" yaml:"box"`
	Properties map[string]any `json:"properties" yaml:"properties"`
}

// Link connects an owner to a resource. MountPath is only meaningful for volumes.
type Link struct {
	Owner     string `json:"owner" yaml:"owner"`
	Resource  string `json:"resource" yaml:"resource"`
	Type      string `json:"type" yaml:"type"`
	MountPath string `json:"mount_path,omitempty" yaml:"mount_path,omitempty"`
}
