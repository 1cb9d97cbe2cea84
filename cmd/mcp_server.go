package cmd

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mj1618/uibridge/internal/bridge"
	"github.com/mj1618/uibridge/internal/config"
	"github.com/mj1618/uibridge/internal/protocol"
	"github.com/mj1618/uibridge/internal/server"
	"github.com/mj1618/uibridge/internal/version"
)

const serverInstructions = `This server connects to a running GUI application and lets you inspect
and interact with its UI. Launch the application with
UIBRIDGE_SERVER=localhost:<listen-port> so it attaches to this bridge.

Recommended workflow:
1. list_windows - get window handles
2. get_window_properties - get the root_element_handle
3. get_element_tree (max_depth=2-3) - explore the UI hierarchy
4. Use find_elements_by_id or query_element_descendants for targeted lookups
5. get_element_properties - inspect specific elements
6. take_screenshot - see the current visual state

Handles (window_handle, element_handle) are {index, generation} objects
returned by the tools above. They remain valid as long as the application
is connected and the UI element exists.`

// mcpServer wires the connection manager, gateway, and dispatcher into an
// MCP server.
type mcpServer struct {
	manager    *bridge.Manager
	dispatcher *server.Dispatcher
	mcp        *mcpserver.MCPServer
}

// newMCPServer builds the bridge stack and registers all tools.
func newMCPServer(cfg config.Config) (*mcpServer, error) {
	manager := bridge.NewManager(bridge.ManagerConfig{
		ListenAddr:    fmt.Sprintf("127.0.0.1:%d", cfg.ListenPort),
		CallTimeout:   cfg.CallTimeout(),
		AcceptBackoff: cfg.AcceptBackoff(),
		MaxFrameBytes: cfg.MaxFrameBytes,
	})
	gateway := bridge.NewGateway(manager)

	s := &mcpServer{
		manager:    manager,
		dispatcher: server.NewDispatcher(gateway),
	}

	s.mcp = mcpserver.NewMCPServer(
		"uibridge",
		version.Version,
		mcpserver.WithInstructions(serverInstructions),
	)

	s.registerTools()
	return s, nil
}

// start binds the application listener. Bind failure is fatal.
func (s *mcpServer) start(ctx context.Context) error {
	return s.manager.Start(ctx)
}

func (s *mcpServer) stop() {
	_ = s.manager.Close()
}

// serve runs the MCP server on the chosen transport.
func (s *mcpServer) serve(transport string, port int) error {
	switch transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", transport)
	}
}

// handleProperty builds the schema options for an {index, generation}
// handle argument.
func handleProperty(desc string) []mcp.PropertyOption {
	return []mcp.PropertyOption{
		mcp.Description(desc),
		mcp.Required(),
		mcp.Properties(map[string]any{
			"index":      map[string]any{"type": "integer"},
			"generation": map[string]any{"type": "integer"},
		}),
	}
}

func (s *mcpServer) registerTools() {
	// list_windows
	s.mcp.AddTool(
		mcp.NewTool("list_windows",
			mcp.WithDescription("List all windows in the connected application. Returns window handles usable with other tools. This is typically the first tool to call."),
		),
		s.dispatcher.HandleListWindows,
	)

	// get_window_properties
	s.mcp.AddTool(
		mcp.NewTool("get_window_properties",
			mcp.WithDescription("Get a window's size, position, state (fullscreen/maximized/minimized), and root element handle. The root_element_handle is the entry point for get_element_tree, get_element_properties, and query_element_descendants."),
			mcp.WithObject("window_handle", handleProperty("Window handle from list_windows")...),
		),
		s.dispatcher.HandleGetWindowProperties,
	)

	// find_elements_by_id
	s.mcp.AddTool(
		mcp.NewTool("find_elements_by_id",
			mcp.WithDescription("Find elements by their qualified ID (e.g. 'App::mybutton'). Returns element handles. Use get_element_tree first to discover available element IDs."),
			mcp.WithObject("window_handle", handleProperty("Window handle")...),
			mcp.WithString("qualified_id",
				mcp.Description("Qualified element ID (e.g. 'App::mybutton')"),
				mcp.Required(),
			),
		),
		s.dispatcher.HandleFindElementsByID,
	)

	// get_element_properties
	s.mcp.AddTool(
		mcp.NewTool("get_element_properties",
			mcp.WithDescription("Get all properties of an element: type info, accessible role and properties (label, value, enabled, etc.), and geometry."),
			mcp.WithObject("element_handle", handleProperty("Element handle")...),
		),
		s.dispatcher.HandleGetElementProperties,
	)

	// query_element_descendants
	s.mcp.AddTool(
		mcp.NewTool("query_element_descendants",
			mcp.WithDescription("Query descendants of an element, optionally filtered by id, type_name, or accessible_role. More efficient than get_element_tree for targeted searches."),
			mcp.WithObject("element_handle", handleProperty("Element handle to start the query from")...),
			mcp.WithObject("filter",
				mcp.Description("Optional filter; empty fields match everything"),
				mcp.Properties(map[string]any{
					"id":              map[string]any{"type": "string", "description": "Match elements by qualified ID"},
					"type_name":       map[string]any{"type": "string", "description": "Match elements by type name (e.g. 'Button')"},
					"accessible_role": map[string]any{"type": "string", "description": "Match by accessible role (e.g. 'button', 'text', 'slider')"},
				}),
			),
			mcp.WithBoolean("find_all",
				mcp.Description("Return all matches (true, default) or only the first"),
				mcp.DefaultBool(true),
			),
		),
		s.dispatcher.HandleQueryElementDescendants,
	)

	// get_element_tree
	s.mcp.AddTool(
		mcp.NewTool("get_element_tree",
			mcp.WithDescription("Get the element tree starting from a root element as nested JSON. Start with max_depth=2 or 3 for an overview, then drill deeper. Each level of depth costs extra protocol round trips."),
			mcp.WithObject("element_handle", handleProperty("Root element handle (typically from get_window_properties root_element_handle)")...),
			mcp.WithNumber("max_depth",
				mcp.Description(fmt.Sprintf("Maximum depth to traverse (default %d, max %d)", bridge.DefaultTreeDepth, bridge.MaxTreeDepth)),
				mcp.DefaultNumber(bridge.DefaultTreeDepth),
			),
		),
		s.dispatcher.HandleGetElementTree,
	)

	// take_screenshot
	s.mcp.AddTool(
		mcp.NewTool("take_screenshot",
			mcp.WithDescription("Take a screenshot of a window. Returns an MCP image content block (base64 PNG) that clients can render inline."),
			mcp.WithObject("window_handle", handleProperty("Window handle")...),
			mcp.WithNumber("scale",
				mcp.Description("Downscale factor 0.1-1.0 (default 1.0, for token efficiency)"),
				mcp.DefaultNumber(1.0),
			),
		),
		s.dispatcher.HandleTakeScreenshot,
	)

	// click_element
	s.mcp.AddTool(
		mcp.NewTool("click_element",
			mcp.WithDescription("Simulate a mouse click on an element."),
			mcp.WithObject("element_handle", handleProperty("Element handle")...),
			mcp.WithString("button",
				mcp.Description("Mouse button"),
				mcp.Enum("left", "right", "middle"),
				mcp.DefaultString("left"),
			),
			mcp.WithBoolean("double",
				mcp.Description("Double-click"),
				mcp.DefaultBool(false),
			),
		),
		s.dispatcher.HandleClickElement,
	)

	// invoke_accessibility_action
	s.mcp.AddTool(
		mcp.NewTool("invoke_accessibility_action",
			mcp.WithDescription("Invoke an accessibility action on an element (e.g. default action for buttons, increment/decrement for sliders)."),
			mcp.WithObject("element_handle", handleProperty("Element handle")...),
			mcp.WithString("action",
				mcp.Description("The accessibility action to invoke"),
				mcp.Enum("default", "increment", "decrement", "expand"),
				mcp.Required(),
			),
		),
		s.dispatcher.HandleInvokeAccessibilityAction,
	)

	// set_element_value
	s.mcp.AddTool(
		mcp.NewTool("set_element_value",
			mcp.WithDescription("Set the accessible value of an element (e.g. text input content, slider value)."),
			mcp.WithObject("element_handle", handleProperty("Element handle")...),
			mcp.WithString("value",
				mcp.Description("The value to set"),
				mcp.Required(),
			),
		),
		s.dispatcher.HandleSetElementValue,
	)

	// dispatch_key_event
	s.mcp.AddTool(
		mcp.NewTool("dispatch_key_event",
			mcp.WithDescription("Dispatch a keyboard event to a window. Omit 'down' for a press-and-release; set it to send a single press (true) or release (false)."),
			mcp.WithObject("window_handle", handleProperty("Window handle")...),
			mcp.WithString("key",
				mcp.Description("The key text to send"),
				mcp.Required(),
			),
			mcp.WithArray("modifiers",
				mcp.Description(fmt.Sprintf("Modifier keys held during the event: %v", protocol.KeyModifiers)),
				mcp.Items(map[string]any{"type": "string"}),
			),
			mcp.WithBoolean("down",
				mcp.Description("true = key press, false = key release; omit for press-and-release"),
			),
		),
		s.dispatcher.HandleDispatchKeyEvent,
	)
}
