// Package server maps named tool invocations onto remote-protocol
// operations: it validates argument payloads before anything touches the
// connection, routes each tool to the bridge, and shapes results into MCP
// content blocks.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/mj1618/uibridge/internal/bridge"
	"github.com/mj1618/uibridge/internal/model"
	"github.com/mj1618/uibridge/internal/protocol"
)

// Gateway is the set of remote primitives the dispatcher routes to. It is
// satisfied by *bridge.Gateway; tests substitute a fake.
type Gateway interface {
	ListWindows(ctx context.Context) ([]protocol.Handle, error)
	WindowProperties(ctx context.Context, window protocol.Handle) (protocol.WindowProperties, error)
	FindElementsByID(ctx context.Context, window protocol.Handle, qualifiedID string) ([]protocol.Handle, error)
	ElementProperties(ctx context.Context, element protocol.Handle) (protocol.ElementProperties, error)
	ElementChildren(ctx context.Context, element protocol.Handle) ([]protocol.Handle, error)
	ElementDescendants(ctx context.Context, element protocol.Handle, filter protocol.DescendantFilter, findAll bool) ([]protocol.DescendantMatch, error)
	Click(ctx context.Context, element protocol.Handle, button protocol.MouseButton, double bool) error
	InvokeAction(ctx context.Context, element protocol.Handle, action protocol.AccessibilityAction) error
	SetValue(ctx context.Context, element protocol.Handle, value string) error
	DispatchKey(ctx context.Context, window protocol.Handle, key string, modifiers []string, down bool) error
	Screenshot(ctx context.Context, window protocol.Handle) ([]byte, error)
}

// Dispatcher holds the gateway and implements one MCP handler per tool.
// The gateway is an injected dependency rather than ambient state, so
// every remote interaction of a handler is visible in its call path.
type Dispatcher struct {
	gw Gateway
}

// NewDispatcher returns a Dispatcher routing through gw.
func NewDispatcher(gw Gateway) *Dispatcher {
	return &Dispatcher{gw: gw}
}

// jsonResult renders v as an indented JSON text block.
func jsonResult(v any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err))
	}
	return mcp.NewToolResultText(string(b))
}

// errorResult reports a failed tool call. Tool failures never become
// transport errors; the second return value of a handler stays nil.
func errorResult(tool string, err error) *mcp.CallToolResult {
	log.Debug().Str("tool", tool).Err(err).Msg("tool call failed")
	return mcp.NewToolResultError(err.Error())
}

func okResult() *mcp.CallToolResult {
	return jsonResult(map[string]bool{"ok": true})
}

// handlesOrEmpty keeps empty match lists as [] rather than null in JSON.
func handlesOrEmpty(handles []protocol.Handle) []protocol.Handle {
	if handles == nil {
		return []protocol.Handle{}
	}
	return handles
}

func (d *Dispatcher) HandleListWindows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	windows, err := d.gw.ListWindows(ctx)
	if err != nil {
		return errorResult("list_windows", err), nil
	}
	return jsonResult(map[string]any{"windows": handlesOrEmpty(windows)}), nil
}

func (d *Dispatcher) HandleGetWindowProperties(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	window, err := handleArg(request.GetArguments(), "window_handle")
	if err != nil {
		return errorResult("get_window_properties", err), nil
	}
	props, err := d.gw.WindowProperties(ctx, window)
	if err != nil {
		return errorResult("get_window_properties", err), nil
	}
	return jsonResult(map[string]any{
		"size":     props.Size,
		"position": props.Position,
		"state": map[string]bool{
			"fullscreen": props.IsFullscreen,
			"maximized":  props.IsMaximized,
			"minimized":  props.IsMinimized,
		},
		"root_element_handle": props.RootElementHandle,
	}), nil
}

func (d *Dispatcher) HandleFindElementsByID(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	window, err := handleArg(args, "window_handle")
	if err != nil {
		return errorResult("find_elements_by_id", err), nil
	}
	qualifiedID, err := stringArg(args, "qualified_id")
	if err != nil {
		return errorResult("find_elements_by_id", err), nil
	}
	matches, err := d.gw.FindElementsByID(ctx, window, qualifiedID)
	if err != nil {
		return errorResult("find_elements_by_id", err), nil
	}
	return jsonResult(map[string]any{"matches": handlesOrEmpty(matches)}), nil
}

func (d *Dispatcher) HandleGetElementProperties(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	element, err := handleArg(request.GetArguments(), "element_handle")
	if err != nil {
		return errorResult("get_element_properties", err), nil
	}
	props, err := d.gw.ElementProperties(ctx, element)
	if err != nil {
		return errorResult("get_element_properties", err), nil
	}
	node := model.NodeFromProperties(element, props)
	return jsonResult(map[string]any{
		"type_info":       node.TypeInfo,
		"accessible_role": node.AccessibleRole,
		"properties":      node.Properties,
		"geometry":        node.Geometry,
	}), nil
}

// descendantSummary is the client-facing shape of one descendant match.
type descendantSummary struct {
	Handle         protocol.Handle          `json:"handle"`
	TypeInfo       []protocol.TypeNameAndID `json:"type_info"`
	AccessibleRole string                   `json:"accessible_role"`
	Geometry       *model.Geometry          `json:"geometry,omitempty"`
}

func summarize(m protocol.DescendantMatch, _ int) descendantSummary {
	s := descendantSummary{
		Handle:         m.Handle,
		TypeInfo:       m.TypeInfo,
		AccessibleRole: m.AccessibleRole,
	}
	if m.Size != nil && m.Position != nil {
		s.Geometry = &model.Geometry{
			X:      m.Position.X,
			Y:      m.Position.Y,
			Width:  m.Size.Width,
			Height: m.Size.Height,
		}
	}
	return s
}

func (d *Dispatcher) HandleQueryElementDescendants(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	element, err := handleArg(args, "element_handle")
	if err != nil {
		return errorResult("query_element_descendants", err), nil
	}
	filter, err := filterArg(args)
	if err != nil {
		return errorResult("query_element_descendants", err), nil
	}
	findAll, err := optBoolArg(args, "find_all", true)
	if err != nil {
		return errorResult("query_element_descendants", err), nil
	}
	matches, err := d.gw.ElementDescendants(ctx, element, filter, findAll)
	if err != nil {
		return errorResult("query_element_descendants", err), nil
	}
	summaries := lo.Map(matches, summarize)
	if summaries == nil {
		summaries = []descendantSummary{}
	}
	return jsonResult(map[string]any{"matches": summaries}), nil
}

// filterArg extracts the optional descendant filter object. A role filter
// is checked against the known role table so a typo fails loudly instead
// of matching nothing.
func filterArg(args map[string]any) (protocol.DescendantFilter, error) {
	raw, ok := args["filter"]
	if !ok {
		return protocol.DescendantFilter{}, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return protocol.DescendantFilter{}, invalidArgs("filter must be an object")
	}
	id, err := optStringArg(obj, "id", "")
	if err != nil {
		return protocol.DescendantFilter{}, err
	}
	typeName, err := optStringArg(obj, "type_name", "")
	if err != nil {
		return protocol.DescendantFilter{}, err
	}
	role, err := optStringArg(obj, "accessible_role", "")
	if err != nil {
		return protocol.DescendantFilter{}, err
	}
	if role != "" && !protocol.IsAccessibleRole(role) {
		return protocol.DescendantFilter{}, invalidArgs("unknown accessible role %q", role)
	}
	return protocol.DescendantFilter{ID: id, TypeName: typeName, AccessibleRole: role}, nil
}

func (d *Dispatcher) HandleGetElementTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	element, err := handleArg(args, "element_handle")
	if err != nil {
		return errorResult("get_element_tree", err), nil
	}
	maxDepth, err := optIntArg(args, "max_depth", -1)
	if err != nil {
		return errorResult("get_element_tree", err), nil
	}
	if maxDepth < 0 && maxDepth != -1 {
		return errorResult("get_element_tree", invalidArgs("max_depth must be non-negative")), nil
	}
	node, err := bridge.BuildTree(ctx, d.gw, element, bridge.ClampTreeDepth(maxDepth))
	if err != nil {
		return errorResult("get_element_tree", err), nil
	}
	return jsonResult(node), nil
}

func (d *Dispatcher) HandleTakeScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	window, err := handleArg(args, "window_handle")
	if err != nil {
		return errorResult("take_screenshot", err), nil
	}
	scale, err := optNumberArg(args, "scale", 1.0)
	if err != nil {
		return errorResult("take_screenshot", err), nil
	}
	if scale < 0.1 || scale > 1.0 {
		return errorResult("take_screenshot", invalidArgs("scale must be between 0.1 and 1.0")), nil
	}
	data, err := bridge.CaptureScreenshot(ctx, d.gw, window, scale)
	if err != nil {
		return errorResult("take_screenshot", err), nil
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	meta := fmt.Sprintf(`{"size_bytes": %d}`, len(data))
	return mcp.NewToolResultImage(meta, encoded, bridge.ScreenshotMIMEType), nil
}

func (d *Dispatcher) HandleClickElement(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	element, err := handleArg(args, "element_handle")
	if err != nil {
		return errorResult("click_element", err), nil
	}
	buttonStr, err := optStringArg(args, "button", "")
	if err != nil {
		return errorResult("click_element", err), nil
	}
	button, err := protocol.ParseMouseButton(buttonStr)
	if err != nil {
		return errorResult("click_element", invalidArgs("%v", err)), nil
	}
	double, err := optBoolArg(args, "double", false)
	if err != nil {
		return errorResult("click_element", err), nil
	}
	if err := d.gw.Click(ctx, element, button, double); err != nil {
		return errorResult("click_element", err), nil
	}
	return okResult(), nil
}

func (d *Dispatcher) HandleInvokeAccessibilityAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	element, err := handleArg(args, "element_handle")
	if err != nil {
		return errorResult("invoke_accessibility_action", err), nil
	}
	actionStr, err := stringArg(args, "action")
	if err != nil {
		return errorResult("invoke_accessibility_action", err), nil
	}
	action, err := protocol.ParseAccessibilityAction(actionStr)
	if err != nil {
		return errorResult("invoke_accessibility_action", invalidArgs("%v", err)), nil
	}
	if err := d.gw.InvokeAction(ctx, element, action); err != nil {
		return errorResult("invoke_accessibility_action", err), nil
	}
	return okResult(), nil
}

func (d *Dispatcher) HandleSetElementValue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	element, err := handleArg(args, "element_handle")
	if err != nil {
		return errorResult("set_element_value", err), nil
	}
	value, err := stringArg(args, "value")
	if err != nil {
		return errorResult("set_element_value", err), nil
	}
	if err := d.gw.SetValue(ctx, element, value); err != nil {
		return errorResult("set_element_value", err), nil
	}
	return okResult(), nil
}

func (d *Dispatcher) HandleDispatchKeyEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	window, err := handleArg(args, "window_handle")
	if err != nil {
		return errorResult("dispatch_key_event", err), nil
	}
	key, err := stringArg(args, "key")
	if err != nil {
		return errorResult("dispatch_key_event", err), nil
	}
	modifiers, err := optStringSliceArg(args, "modifiers")
	if err != nil {
		return errorResult("dispatch_key_event", err), nil
	}
	for _, m := range modifiers {
		if !protocol.IsKeyModifier(m) {
			return errorResult("dispatch_key_event", invalidArgs("unknown modifier %q", m)), nil
		}
	}

	// down omitted means press followed by release; down present sends
	// exactly one event.
	if raw, ok := args["down"]; ok {
		down, isBool := raw.(bool)
		if !isBool {
			return errorResult("dispatch_key_event", invalidArgs("down must be a boolean")), nil
		}
		if err := d.gw.DispatchKey(ctx, window, key, modifiers, down); err != nil {
			return errorResult("dispatch_key_event", err), nil
		}
		return okResult(), nil
	}

	if err := d.gw.DispatchKey(ctx, window, key, modifiers, true); err != nil {
		return errorResult("dispatch_key_event", err), nil
	}
	if err := d.gw.DispatchKey(ctx, window, key, modifiers, false); err != nil {
		return errorResult("dispatch_key_event", err), nil
	}
	return okResult(), nil
}
