package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"

	"github.com/mj1618/uibridge/internal/protocol"
)

// fakeTransport returns canned responses without a socket.
type fakeTransport struct {
	resp    []byte
	err     error
	dropped []string
}

func (f *fakeTransport) Call(_ context.Context, _ []byte) ([]byte, error) {
	return f.resp, f.err
}

func (f *fakeTransport) Drop(reason string) {
	f.dropped = append(f.dropped, reason)
}

func mustEncodeResponse(t *testing.T, op string, body any) []byte {
	t.Helper()
	data, err := protocol.EncodeResponse(op, body)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestGatewayClassifiesWireErrors(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{protocol.CodeInvalidHandle, ErrInvalidHandle},
		{protocol.CodeStaleHandle, ErrInvalidHandle},
		{protocol.CodeUnsupported, ErrUnsupported},
		{protocol.CodeMalformed, ErrProtocol},
		{"some_future_code", ErrProtocol},
	}
	for _, tt := range tests {
		resp, err := protocol.EncodeErrorResponse(protocol.OpElementProperties, tt.code, "nope")
		if err != nil {
			t.Fatal(err)
		}
		gw := NewGateway(&fakeTransport{resp: resp})
		_, err = gw.ElementProperties(context.Background(), protocol.Handle{})
		if !errors.Is(err, tt.want) {
			t.Errorf("code %q: error = %v, want %v", tt.code, err, tt.want)
		}
	}
}

func TestGatewayPropagatesConnectionLost(t *testing.T) {
	gw := NewGateway(&fakeTransport{err: ErrConnectionLost})
	_, err := gw.ListWindows(context.Background())
	if !errors.Is(err, ErrConnectionLost) {
		t.Fatalf("error = %v, want ErrConnectionLost", err)
	}
}

func TestGatewayDropsOnOpMismatch(t *testing.T) {
	tr := &fakeTransport{resp: mustEncodeResponse(t, protocol.OpScreenshot, nil)}
	gw := NewGateway(tr)
	_, err := gw.ListWindows(context.Background())
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("error = %v, want ErrProtocol", err)
	}
	if len(tr.dropped) != 1 {
		t.Errorf("expected one drop, got %v", tr.dropped)
	}
}

func TestGatewayDropsOnGarbageResponse(t *testing.T) {
	tr := &fakeTransport{resp: []byte("definitely not an envelope")}
	gw := NewGateway(tr)
	_, err := gw.ListWindows(context.Background())
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("error = %v, want ErrProtocol", err)
	}
	if len(tr.dropped) != 1 {
		t.Errorf("expected one drop, got %v", tr.dropped)
	}
}

// protocolPeer serves the remote side of the wire contract for tests.
func protocolPeer(conn net.Conn, handle func(op string, body json.RawMessage) []byte) {
	go func() {
		for {
			raw, err := readFrame(conn, DefaultMaxFrameBytes)
			if err != nil {
				return
			}
			op, body, err := protocol.DecodeRequest(raw)
			if err != nil {
				return
			}
			if err := writeFrame(conn, handle(op, body)); err != nil {
				return
			}
		}
	}()
}

func TestGatewayOverTCP(t *testing.T) {
	m := startManager(t, ManagerConfig{})
	peer := attachPeer(t, m)
	protocolPeer(peer, func(op string, body json.RawMessage) []byte {
		switch op {
		case protocol.OpWindowList:
			resp, _ := protocol.EncodeResponse(op, protocol.WindowListResponse{
				WindowHandles: []protocol.Handle{{Index: 0, Generation: 0}},
			})
			return resp
		case protocol.OpSetValue:
			resp, _ := protocol.EncodeResponse(op, nil)
			return resp
		default:
			resp, _ := protocol.EncodeErrorResponse(op, protocol.CodeUnsupported, "not in this test")
			return resp
		}
	})
	gw := NewGateway(m)

	windows, err := gw.ListWindows(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(windows) != 1 || windows[0] != (protocol.Handle{Index: 0, Generation: 0}) {
		t.Fatalf("windows = %+v", windows)
	}

	if err := gw.SetValue(context.Background(), windows[0], "42"); err != nil {
		t.Fatal(err)
	}

	_, err = gw.Screenshot(context.Background(), windows[0])
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("error = %v, want ErrUnsupported", err)
	}
}

// TestStaleGenerationRejectedEverywhere simulates a peer that bumped an
// element's generation: every call made with the old handle must fail
// with ErrInvalidHandle, never act on the replacement object.
func TestStaleGenerationRejectedEverywhere(t *testing.T) {
	const liveGeneration = 2

	m := startManager(t, ManagerConfig{})
	peer := attachPeer(t, m)
	protocolPeer(peer, func(op string, body json.RawMessage) []byte {
		var req struct {
			ElementHandle protocol.Handle `json:"element_handle"`
		}
		_ = json.Unmarshal(body, &req)
		if req.ElementHandle.Generation != liveGeneration {
			resp, _ := protocol.EncodeErrorResponse(op, protocol.CodeStaleHandle, "object replaced")
			return resp
		}
		resp, _ := protocol.EncodeResponse(op, protocol.ElementProperties{AccessibleRole: "button"})
		return resp
	})
	gw := NewGateway(m)

	stale := protocol.Handle{Index: 4, Generation: 1}
	if _, err := gw.ElementProperties(context.Background(), stale); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("ElementProperties(stale) error = %v, want ErrInvalidHandle", err)
	}
	if err := gw.Click(context.Background(), stale, protocol.MouseLeft, false); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Click(stale) error = %v, want ErrInvalidHandle", err)
	}

	live := protocol.Handle{Index: 4, Generation: liveGeneration}
	props, err := gw.ElementProperties(context.Background(), live)
	if err != nil {
		t.Fatal(err)
	}
	if props.AccessibleRole != "button" {
		t.Errorf("role = %q", props.AccessibleRole)
	}
}
