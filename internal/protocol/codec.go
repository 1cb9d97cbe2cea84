package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// Wire error codes reported by the peer inside a response envelope.
const (
	CodeInvalidHandle = "invalid_handle"
	CodeStaleHandle   = "stale_handle"
	CodeUnsupported   = "unsupported"
	CodeMalformed     = "malformed"
)

// WireError is a peer-reported failure for a single request.
type WireError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func (e *WireError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type requestEnvelope struct {
	Op   string          `json:"op"`
	Body json.RawMessage `json:"body,omitempty"`
}

type responseEnvelope struct {
	Op    string          `json:"op"`
	Error *WireError      `json:"error,omitempty"`
	Body  json.RawMessage `json:"body,omitempty"`
}

// EncodeRequest wraps a typed request body in an envelope for the given
// operation. A nil body encodes an empty-bodied request (window_list).
func EncodeRequest(op string, body any) ([]byte, error) {
	env := requestEnvelope{Op: op}
	if body != nil {
		raw, err := sonic.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request body: %w", op, err)
		}
		env.Body = raw
	}
	return sonic.Marshal(env)
}

// DecodeRequest splits an incoming request into its operation name and raw
// body. Used by peers (and test peers) serving the protocol.
func DecodeRequest(data []byte) (string, json.RawMessage, error) {
	var env requestEnvelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("decode request envelope: %w", err)
	}
	if env.Op == "" {
		return "", nil, fmt.Errorf("request envelope missing op")
	}
	return env.Op, env.Body, nil
}

// EncodeResponse wraps a typed success body in a response envelope.
func EncodeResponse(op string, body any) ([]byte, error) {
	env := responseEnvelope{Op: op}
	if body != nil {
		raw, err := sonic.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s response body: %w", op, err)
		}
		env.Body = raw
	}
	return sonic.Marshal(env)
}

// EncodeErrorResponse wraps a wire error in a response envelope.
func EncodeErrorResponse(op, code, message string) ([]byte, error) {
	return sonic.Marshal(responseEnvelope{
		Op:    op,
		Error: &WireError{Code: code, Message: message},
	})
}

// DecodeResponse splits a response into its operation name, peer-reported
// error (nil on success), and raw body.
func DecodeResponse(data []byte) (string, *WireError, json.RawMessage, error) {
	var env responseEnvelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return "", nil, nil, fmt.Errorf("decode response envelope: %w", err)
	}
	if env.Op == "" {
		return "", nil, nil, fmt.Errorf("response envelope missing op")
	}
	return env.Op, env.Error, env.Body, nil
}

// DecodeBody unmarshals a raw envelope body into a typed response struct.
func DecodeBody(op string, body json.RawMessage, out any) error {
	if len(body) == 0 {
		return fmt.Errorf("%s response has no body", op)
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response body: %w", op, err)
	}
	return nil
}
