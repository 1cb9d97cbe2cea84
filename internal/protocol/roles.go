package protocol

// AccessibleRoles is the closed set of role strings the remote protocol
// reports, most generic first. Filter validation checks against this set so
// a typo fails before a round trip instead of silently matching nothing.
var AccessibleRoles = []string{
	"unknown",
	"button",
	"checkbox",
	"combobox",
	"list",
	"slider",
	"spinbox",
	"tab",
	"tab-list",
	"text",
	"table",
	"tree",
	"progress-indicator",
	"text-input",
	"switch",
	"list-item",
	"tab-panel",
	"groupbox",
	"image",
	"radio-button",
}

var roleSet = func() map[string]bool {
	m := make(map[string]bool, len(AccessibleRoles))
	for _, r := range AccessibleRoles {
		m[r] = true
	}
	return m
}()

// IsAccessibleRole reports whether s is a known role string. Matching is
// case sensitive, like the wire protocol.
func IsAccessibleRole(s string) bool {
	return roleSet[s]
}

// KeyModifiers is the set of modifier names accepted by dispatch_key.
var KeyModifiers = []string{"shift", "control", "alt", "meta"}

var modifierSet = func() map[string]bool {
	m := make(map[string]bool, len(KeyModifiers))
	for _, k := range KeyModifiers {
		m[k] = true
	}
	return m
}()

// IsKeyModifier reports whether s is a known key modifier name.
func IsKeyModifier(s string) bool {
	return modifierSet[s]
}
