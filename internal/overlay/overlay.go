// Package overlay builds connection decorations: delete affordances at both ends and, for
// resource types that carry a value on the link, a display label paired with an inline
// editor. Exactly one of the pair is visible at a time.
package overlay

import (
	"errors"

	"github.com/json-to-terraform/connector/internal/surface"
)

const (
	DeleteClass = "resource-delete-connection"

	KeyValue     = "link-value"
	KeyValueEdit = "link-value-edit"
)

var (
	ErrNoValueOverlay = errors.New("connection has no value overlay")
	ErrNotEditable    = errors.New("connection value is not editable")
)

// Mode is the visible half of the value pair.
type Mode int

const (
	ModeNone Mode = iota
	ModeDisplay
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeDisplay:
		return "display"
	case ModeEdit:
		return "edit"
	default:
		return "none"
	}
}

// DeleteAffordances returns the delete buttons placed at both ends of a connection.
func DeleteAffordances() []surface.OverlaySpec {
	return []surface.OverlaySpec{
		{Kind: surface.OverlayCustom, Location: 1, Class: DeleteClass},
		{Kind: surface.OverlayCustom, Location: 0, Class: DeleteClass},
	}
}

// IsDelete reports whether o is a delete affordance.
func IsDelete(o *surface.Overlay) bool {
	return o != nil && o.Spec().Class == DeleteClass
}

// ValueOverlays returns the display label for value and, when editable, the hidden editor.
func ValueOverlays(editable bool, value string) []surface.OverlaySpec {
	var out []surface.OverlaySpec
	if editable {
		out = append(out, surface.OverlaySpec{
			Key:      KeyValueEdit,
			Kind:     surface.OverlayInput,
			Location: 0.9,
			Class:    "resource-link-value-edit",
			Value:    value,
			Hidden:   true,
		})
	}
	class := "resource-link-value"
	if editable {
		class += " editable"
	}
	return append(out, surface.OverlaySpec{
		Key:      KeyValue,
		Kind:     surface.OverlayLabel,
		Location: 0.5,
		Class:    class,
		Label:    value,
	})
}

// Attach adds the value pair to c unless it already carries one.
func Attach(c *surface.Connection, editable bool, value string) {
	if c.Overlay(KeyValue) != nil {
		return
	}
	for _, spec := range ValueOverlays(editable, value) {
		c.AddOverlay(spec)
	}
}

// EnableEdit adds the hidden editor to a value label drawn without one.
func EnableEdit(c *surface.Connection) {
	display := c.Overlay(KeyValue)
	if display == nil || c.Overlay(KeyValueEdit) != nil {
		return
	}
	c.AddOverlay(ValueOverlays(true, display.Label())[0])
}

// CurrentMode reports which half of the value pair is visible.
func CurrentMode(c *surface.Connection) Mode {
	display, edit := c.Overlay(KeyValue), c.Overlay(KeyValueEdit)
	switch {
	case edit != nil && edit.Visible():
		return ModeEdit
	case display != nil && display.Visible():
		return ModeDisplay
	default:
		return ModeNone
	}
}

// Value returns the value shown by the display label.
func Value(c *surface.Connection) string {
	if o := c.Overlay(KeyValue); o != nil {
		return o.Label()
	}
	return ""
}

// BeginEdit hides the label and shows the editor primed with the current value.
func BeginEdit(c *surface.Connection) error {
	display, edit, err := pair(c)
	if err != nil {
		return err
	}
	edit.SetValue(display.Label())
	display.Hide()
	edit.Show()
	return nil
}

// Commit hides the editor and shows the label with value.
func Commit(c *surface.Connection, value string) error {
	display, edit, err := pair(c)
	if err != nil {
		return err
	}
	edit.SetValue(value)
	edit.Hide()
	display.SetLabel(value)
	display.Show()
	return nil
}

// Cancel hides the editor and shows the unchanged label.
func Cancel(c *surface.Connection) error {
	display, edit, err := pair(c)
	if err != nil {
		return err
	}
	edit.Hide()
	display.Show()
	return nil
}

func pair(c *surface.Connection) (display, edit *surface.Overlay, err error) {
	display = c.Overlay(KeyValue)
	if display == nil {
		return nil, nil, ErrNoValueOverlay
	}
	edit = c.Overlay(KeyValueEdit)
	if edit == nil {
		return nil, nil, ErrNotEditable
	}
	return display, edit, nil
}
