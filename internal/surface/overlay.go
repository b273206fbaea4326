package surface

// OverlayKind is the rendering kind of an overlay.
type OverlayKind string

const (
	OverlayCustom OverlayKind = "custom"
	OverlayLabel  OverlayKind = "label"
	OverlayInput  OverlayKind = "input"
)

// OverlaySpec describes a decoration attached to a connection.
type OverlaySpec struct {
	// Key names the overlay within its connection.
	Key      string
	Kind     OverlayKind
	Location float64
	Class    string
	Label    string
	Value    string
	Hidden   bool
}

// Overlay is a decoration on a live connection.
type Overlay struct {
	ID      string
	spec    OverlaySpec
	visible bool
	label   string
	value   string
	conn    *Connection
}

// Spec returns the description the overlay was created from.
func (o *Overlay) Spec() OverlaySpec { return o.spec }

// Connection returns the connection the overlay decorates.
func (o *Overlay) Connection() *Connection { return o.conn }

func (o *Overlay) Show()             { o.visible = true }
func (o *Overlay) Hide()             { o.visible = false }
func (o *Overlay) Visible() bool     { return o.visible }
func (o *Overlay) Label() string     { return o.label }
func (o *Overlay) Value() string     { return o.value }
func (o *Overlay) SetLabel(v string) { o.label = v }
func (o *Overlay) SetValue(v string) { o.value = v }
