// Package protocol defines the typed messages of the remote introspection
// protocol spoken with an attached GUI application, plus the reference
// envelope codec. The wire schema is a versioned contract owned by the
// remote side; this package mirrors it one struct per primitive.
package protocol

// Handle is an opaque reference to a remote window or element. Equality
// requires both fields: the generation advances whenever the remote side
// replaces or destroys the object behind an index, so a stale pair must be
// rejected by the peer rather than resolved locally.
type Handle struct {
	Index      uint32 `json:"index"`
	Generation uint32 `json:"generation"`
}

// Size is a logical width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Position is a logical screen coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WindowProperties describes one remote window.
type WindowProperties struct {
	Size              Size     `json:"size"`
	Position          Position `json:"position"`
	IsFullscreen      bool     `json:"is_fullscreen"`
	IsMaximized       bool     `json:"is_maximized"`
	IsMinimized       bool     `json:"is_minimized"`
	RootElementHandle Handle   `json:"root_element_handle"`
}

// TypeNameAndID is one entry of an element's type chain. ID is the
// qualified element ID ("App::ok_btn") when the element has one.
type TypeNameAndID struct {
	TypeName string `json:"type_name"`
	ID       string `json:"id,omitempty"`
}

// ElementProperties is the full property set of a single element as
// reported by the peer. TypeInfo is ordered most-derived first.
type ElementProperties struct {
	TypeInfo        []TypeNameAndID `json:"type_info"`
	AccessibleRole  string          `json:"accessible_role"`
	Label           string          `json:"accessible_label,omitempty"`
	Value           string          `json:"accessible_value,omitempty"`
	Description     string          `json:"accessible_description,omitempty"`
	Placeholder     string          `json:"accessible_placeholder,omitempty"`
	Checked         bool            `json:"accessible_checked"`
	Checkable       bool            `json:"accessible_checkable"`
	Enabled         bool            `json:"accessible_enabled"`
	ReadOnly        bool            `json:"accessible_read_only"`
	ValueMinimum    float64         `json:"accessible_value_minimum"`
	ValueMaximum    float64         `json:"accessible_value_maximum"`
	ValueStep       float64         `json:"accessible_value_step"`
	Size            *Size           `json:"size,omitempty"`
	Position        *Position       `json:"absolute_position,omitempty"`
	ComputedOpacity float64         `json:"computed_opacity"`
}

// DescendantFilter narrows an element_descendants query. Empty fields
// match everything.
type DescendantFilter struct {
	ID             string `json:"id,omitempty"`
	TypeName       string `json:"type_name,omitempty"`
	AccessibleRole string `json:"accessible_role,omitempty"`
}

// IsZero reports whether the filter matches all descendants.
func (f DescendantFilter) IsZero() bool {
	return f.ID == "" && f.TypeName == "" && f.AccessibleRole == ""
}

// DescendantMatch is a summary of one matched descendant: enough to
// identify and locate the element without a follow-up properties fetch.
type DescendantMatch struct {
	Handle         Handle          `json:"handle"`
	TypeInfo       []TypeNameAndID `json:"type_info"`
	AccessibleRole string          `json:"accessible_role"`
	Size           *Size           `json:"size,omitempty"`
	Position       *Position       `json:"absolute_position,omitempty"`
}
