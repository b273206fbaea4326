package result

// Error represents a validation, reconciliation or export error.
type Error struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	NodeID     string `json:"node_id,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Warning represents a non-fatal issue, e.g. a link that could not be drawn yet.
type Warning struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	NodeID     string `json:"node_id,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ApplyReport summarizes one reconciliation pass for a resource type.
type ApplyReport struct {
	ResourceType string    `json:"resource_type"`
	Added        int       `json:"added"`
	Removed      int       `json:"removed"`
	Updated      int       `json:"updated,omitempty"`
	Errors       []Error   `json:"errors,omitempty"`
	Warnings     []Warning `json:"warnings,omitempty"`
}

// Changed reports whether the pass touched the surface.
func (r ApplyReport) Changed() bool {
	return r.Added+r.Removed+r.Updated > 0
}

// NotificationKind names a user-originated change.
type NotificationKind string

const (
	KindConnect      NotificationKind = "connect"
	KindDisconnect   NotificationKind = "disconnect"
	KindMoved        NotificationKind = "moved"
	KindValueChanged NotificationKind = "value_changed"
)

// Notification is a user-originated change reported to the state layer.
type Notification struct {
	Kind          NotificationKind `json:"kind"`
	ResourceType  string           `json:"resource_type"`
	OwnerID       string           `json:"owner_id"`
	ResourceID    string           `json:"resource_id"`
	NewOwnerID    string           `json:"new_owner_id,omitempty"`
	NewResourceID string           `json:"new_resource_id,omitempty"`
	Value         string           `json:"value,omitempty"`
}

// ExportResult is the result of rendering a canvas as Terraform.
type ExportResult struct {
	Success        bool              `json:"success"`
	TerraformFiles map[string][]byte `json:"-"` // filename -> content
	Errors         []Error           `json:"errors,omitempty"`
	Warnings       []Warning         `json:"warnings,omitempty"`
}

// RunResult is the outcome of a replay.
type RunResult struct {
	Success bool `json:"success"`
	// Links is the drawn link state per resource type, owner and resource.
	Links         map[string]map[string][]string `json:"links"`
	Notifications []Notification                 `json:"notifications,omitempty"`
	Reports       []ApplyReport                  `json:"reports,omitempty"`
	// Swallowed counts surface notifications absorbed during move gestures.
	Swallowed      int               `json:"swallowed"`
	Ticks          int               `json:"ticks"`
	TerraformFiles map[string][]byte `json:"-"`
	Errors         []Error           `json:"errors,omitempty"`
	Warnings       []Warning         `json:"warnings,omitempty"`
}

// Fail records err and marks the run unsuccessful.
func (r *RunResult) Fail(err Error) {
	r.Success = false
	r.Errors = append(r.Errors, err)
}
