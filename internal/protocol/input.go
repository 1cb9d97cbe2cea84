package protocol

import (
	"fmt"
	"strings"
)

// MouseButton identifies which pointer button a click uses.
type MouseButton string

const (
	MouseLeft   MouseButton = "left"
	MouseRight  MouseButton = "right"
	MouseMiddle MouseButton = "middle"
)

// ParseMouseButton converts a tool argument to a MouseButton. An empty
// string defaults to the left button.
func ParseMouseButton(s string) (MouseButton, error) {
	switch strings.ToLower(s) {
	case "", "left":
		return MouseLeft, nil
	case "right":
		return MouseRight, nil
	case "middle":
		return MouseMiddle, nil
	default:
		return MouseLeft, fmt.Errorf("unknown mouse button: %q (expected left, right, or middle)", s)
	}
}

// AccessibilityAction is an action that can be invoked on an element
// through its accessibility interface.
type AccessibilityAction string

const (
	ActionDefault   AccessibilityAction = "default"
	ActionIncrement AccessibilityAction = "increment"
	ActionDecrement AccessibilityAction = "decrement"
	ActionExpand    AccessibilityAction = "expand"
)

// ParseAccessibilityAction converts a tool argument to an
// AccessibilityAction.
func ParseAccessibilityAction(s string) (AccessibilityAction, error) {
	switch strings.ToLower(s) {
	case "default":
		return ActionDefault, nil
	case "increment":
		return ActionIncrement, nil
	case "decrement":
		return ActionDecrement, nil
	case "expand":
		return ActionExpand, nil
	default:
		return ActionDefault, fmt.Errorf("unknown accessibility action: %q (expected default, increment, decrement, or expand)", s)
	}
}
