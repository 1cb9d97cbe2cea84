package bridge

import (
	"context"
	"fmt"

	"github.com/mj1618/uibridge/internal/protocol"
)

// transport is the slice of Manager the gateway depends on.
type transport interface {
	Call(ctx context.Context, request []byte) ([]byte, error)
	Drop(reason string)
}

// Gateway is the typed layer over the connection manager: one method per
// remote primitive. Each method performs exactly one round trip and never
// retries; failures surface immediately so the caller decides what to do.
type Gateway struct {
	tr transport
}

// NewGateway returns a Gateway issuing calls through tr.
func NewGateway(tr transport) *Gateway {
	return &Gateway{tr: tr}
}

// roundTrip encodes one request, performs the round trip, and decodes the
// response body into out (skipped when out is nil). A response whose
// operation does not echo the request's, or that fails to decode, is a
// protocol error: the byte stream can no longer be trusted to be aligned
// with the request/response cadence, so the connection is dropped.
func (g *Gateway) roundTrip(ctx context.Context, op string, body, out any) error {
	req, err := protocol.EncodeRequest(op, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	raw, err := g.tr.Call(ctx, req)
	if err != nil {
		return err
	}

	gotOp, wireErr, respBody, err := protocol.DecodeResponse(raw)
	if err != nil {
		g.tr.Drop("undecodable response")
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if gotOp != op {
		g.tr.Drop("response op mismatch")
		return fmt.Errorf("%w: sent %s, peer answered %s", ErrProtocol, op, gotOp)
	}
	if wireErr != nil {
		return classifyWireError(wireErr)
	}
	if out == nil {
		return nil
	}
	if err := protocol.DecodeBody(op, respBody, out); err != nil {
		g.tr.Drop("undecodable response body")
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return nil
}

// ListWindows returns the handles of all windows the peer currently shows.
func (g *Gateway) ListWindows(ctx context.Context) ([]protocol.Handle, error) {
	var resp protocol.WindowListResponse
	if err := g.roundTrip(ctx, protocol.OpWindowList, nil, &resp); err != nil {
		return nil, err
	}
	return resp.WindowHandles, nil
}

// WindowProperties returns size, position, state flags, and the root
// element handle of one window.
func (g *Gateway) WindowProperties(ctx context.Context, window protocol.Handle) (protocol.WindowProperties, error) {
	var resp protocol.WindowProperties
	err := g.roundTrip(ctx, protocol.OpWindowProperties,
		protocol.WindowPropertiesRequest{WindowHandle: window}, &resp)
	return resp, err
}

// FindElementsByID returns the handles of elements matching a qualified ID
// like "App::ok_btn" within the given window.
func (g *Gateway) FindElementsByID(ctx context.Context, window protocol.Handle, qualifiedID string) ([]protocol.Handle, error) {
	var resp protocol.FindElementsByIDResponse
	err := g.roundTrip(ctx, protocol.OpFindElementsByID,
		protocol.FindElementsByIDRequest{WindowHandle: window, QualifiedID: qualifiedID}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.ElementHandles, nil
}

// ElementProperties returns the full property set of one element.
func (g *Gateway) ElementProperties(ctx context.Context, element protocol.Handle) (protocol.ElementProperties, error) {
	var resp protocol.ElementProperties
	err := g.roundTrip(ctx, protocol.OpElementProperties,
		protocol.ElementPropertiesRequest{ElementHandle: element}, &resp)
	return resp, err
}

// ElementChildren returns the direct children of an element in the peer's
// reported order.
func (g *Gateway) ElementChildren(ctx context.Context, element protocol.Handle) ([]protocol.Handle, error) {
	var resp protocol.ElementChildrenResponse
	err := g.roundTrip(ctx, protocol.OpElementChildren,
		protocol.ElementChildrenRequest{ElementHandle: element}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.ChildHandles, nil
}

// ElementDescendants queries the subtree under an element with an optional
// filter, returning match summaries. With findAll false the peer stops at
// the first match.
func (g *Gateway) ElementDescendants(ctx context.Context, element protocol.Handle, filter protocol.DescendantFilter, findAll bool) ([]protocol.DescendantMatch, error) {
	var resp protocol.ElementDescendantsResponse
	err := g.roundTrip(ctx, protocol.OpElementDescendants,
		protocol.ElementDescendantsRequest{ElementHandle: element, Filter: filter, FindAll: findAll}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

// Click simulates a pointer click on an element.
func (g *Gateway) Click(ctx context.Context, element protocol.Handle, button protocol.MouseButton, double bool) error {
	return g.roundTrip(ctx, protocol.OpElementClick,
		protocol.ElementClickRequest{ElementHandle: element, Button: button, Double: double}, nil)
}

// InvokeAction invokes an accessibility action on an element.
func (g *Gateway) InvokeAction(ctx context.Context, element protocol.Handle, action protocol.AccessibilityAction) error {
	return g.roundTrip(ctx, protocol.OpInvokeAction,
		protocol.InvokeActionRequest{ElementHandle: element, Action: action}, nil)
}

// SetValue sets the accessible value of an element (text content, slider
// position).
func (g *Gateway) SetValue(ctx context.Context, element protocol.Handle, value string) error {
	return g.roundTrip(ctx, protocol.OpSetValue,
		protocol.SetValueRequest{ElementHandle: element, Value: value}, nil)
}

// DispatchKey delivers one key press or release to a window.
func (g *Gateway) DispatchKey(ctx context.Context, window protocol.Handle, key string, modifiers []string, down bool) error {
	return g.roundTrip(ctx, protocol.OpDispatchKey,
		protocol.DispatchKeyRequest{WindowHandle: window, Key: key, Modifiers: modifiers, Down: down}, nil)
}

// Screenshot returns the encoded image contents of a window.
func (g *Gateway) Screenshot(ctx context.Context, window protocol.Handle) ([]byte, error) {
	var resp protocol.ScreenshotResponse
	err := g.roundTrip(ctx, protocol.OpScreenshot,
		protocol.ScreenshotRequest{WindowHandle: window}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Image, nil
}
