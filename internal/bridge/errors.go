// Package bridge connects MCP tool invocations to a remote application's
// introspection protocol over a single persistent TCP connection. It owns
// the connection lifecycle (Manager), the typed primitives (Gateway), and
// the multi-round-trip compositions built on them (tree fetch, screenshot).
package bridge

import (
	"errors"
	"fmt"

	"github.com/mj1618/uibridge/internal/protocol"
)

// Sentinel errors of the bridge. Tool handlers match these with errors.Is
// to shape their replies; nothing below this taxonomy crosses into the
// dispatcher.
var (
	// ErrConnectionLost covers every transport-level failure: no peer
	// attached, peer closed mid-call, I/O error, or round-trip timeout.
	// Recoverable; calls may succeed again once a peer reattaches.
	ErrConnectionLost = errors.New("connection lost")

	// ErrInvalidHandle means the peer rejected a stale or unknown
	// index/generation pair.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrUnsupported means the peer understood the request but cannot
	// perform it on the target element.
	ErrUnsupported = errors.New("unsupported operation")

	// ErrProtocol means the peer sent something unexpected or malformed.
	// The gateway treats this as grounds to drop the connection.
	ErrProtocol = errors.New("protocol error")
)

// classifyWireError maps a peer-reported error code to the bridge taxonomy.
// Unknown codes are protocol errors: a peer speaking a newer contract
// revision is indistinguishable from a confused one.
func classifyWireError(we *protocol.WireError) error {
	switch we.Code {
	case protocol.CodeInvalidHandle, protocol.CodeStaleHandle:
		return fmt.Errorf("%w: %s", ErrInvalidHandle, we.Error())
	case protocol.CodeUnsupported:
		return fmt.Errorf("%w: %s", ErrUnsupported, we.Error())
	case protocol.CodeMalformed:
		return fmt.Errorf("%w: peer rejected request as %s", ErrProtocol, we.Error())
	default:
		return fmt.Errorf("%w: unknown error code %q", ErrProtocol, we.Code)
	}
}
