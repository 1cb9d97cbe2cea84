package protocol

// Operation names. Every request carries one of these in its envelope and
// the matching response echoes it back; there is no other correlation on
// the wire, pairing relies on strict request/response ordering.
const (
	OpWindowList         = "window_list"
	OpWindowProperties   = "window_properties"
	OpFindElementsByID   = "find_elements_by_id"
	OpElementProperties  = "element_properties"
	OpElementChildren    = "element_children"
	OpElementDescendants = "element_descendants"
	OpElementClick       = "element_click"
	OpInvokeAction       = "invoke_action"
	OpSetValue           = "set_value"
	OpDispatchKey        = "dispatch_key"
	OpScreenshot         = "screenshot"
)

type WindowListResponse struct {
	WindowHandles []Handle `json:"window_handles"`
}

type WindowPropertiesRequest struct {
	WindowHandle Handle `json:"window_handle"`
}

type FindElementsByIDRequest struct {
	WindowHandle Handle `json:"window_handle"`
	QualifiedID  string `json:"qualified_id"`
}

type FindElementsByIDResponse struct {
	ElementHandles []Handle `json:"element_handles"`
}

type ElementPropertiesRequest struct {
	ElementHandle Handle `json:"element_handle"`
}

type ElementChildrenRequest struct {
	ElementHandle Handle `json:"element_handle"`
}

// ElementChildrenResponse lists direct children in the peer's paint order,
// which callers must preserve.
type ElementChildrenResponse struct {
	ChildHandles []Handle `json:"child_handles"`
}

type ElementDescendantsRequest struct {
	ElementHandle Handle           `json:"element_handle"`
	Filter        DescendantFilter `json:"filter"`
	FindAll       bool             `json:"find_all"`
}

type ElementDescendantsResponse struct {
	Matches []DescendantMatch `json:"matches"`
}

type ElementClickRequest struct {
	ElementHandle Handle      `json:"element_handle"`
	Button        MouseButton `json:"button"`
	Double        bool        `json:"double"`
}

type InvokeActionRequest struct {
	ElementHandle Handle              `json:"element_handle"`
	Action        AccessibilityAction `json:"action"`
}

type SetValueRequest struct {
	ElementHandle Handle `json:"element_handle"`
	Value         string `json:"value"`
}

type DispatchKeyRequest struct {
	WindowHandle Handle   `json:"window_handle"`
	Key          string   `json:"key"`
	Modifiers    []string `json:"modifiers,omitempty"`
	Down         bool     `json:"down"`
}

type ScreenshotRequest struct {
	WindowHandle Handle `json:"window_handle"`
}

// ScreenshotResponse carries the window contents as an already encoded
// image (PNG unless the peer says otherwise).
type ScreenshotResponse struct {
	Image []byte `json:"image"`
}
