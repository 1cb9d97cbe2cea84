package server

import (
	"errors"
	"fmt"
	"math"

	"github.com/mj1618/uibridge/internal/protocol"
)

// ErrInvalidArguments marks a malformed tool argument payload. It is
// produced before any remote call is attempted.
var ErrInvalidArguments = errors.New("invalid arguments")

func invalidArgs(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArguments, fmt.Sprintf(format, a...))
}

// handleArg extracts a required {index, generation} handle argument.
// Both fields must be non-negative integers within uint32 range; validity
// of the pair itself is the remote peer's verdict, never guessed locally.
func handleArg(args map[string]any, key string) (protocol.Handle, error) {
	raw, ok := args[key]
	if !ok {
		return protocol.Handle{}, invalidArgs("missing %s", key)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return protocol.Handle{}, invalidArgs("%s must be an object with index and generation", key)
	}
	index, err := handleField(obj, key, "index")
	if err != nil {
		return protocol.Handle{}, err
	}
	generation, err := handleField(obj, key, "generation")
	if err != nil {
		return protocol.Handle{}, err
	}
	return protocol.Handle{Index: index, Generation: generation}, nil
}

func handleField(obj map[string]any, key, field string) (uint32, error) {
	raw, ok := obj[field]
	if !ok {
		return 0, invalidArgs("%s missing %s", key, field)
	}
	f, ok := raw.(float64)
	if !ok || f != math.Trunc(f) || f < 0 || f > math.MaxUint32 {
		return 0, invalidArgs("%s.%s must be a non-negative integer", key, field)
	}
	return uint32(f), nil
}

// stringArg extracts a required string argument.
func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", invalidArgs("missing %s", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", invalidArgs("%s must be a string", key)
	}
	return s, nil
}

// optStringArg extracts an optional string argument, returning def when
// absent. A present value of the wrong type is still an error.
func optStringArg(args map[string]any, key, def string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return def, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", invalidArgs("%s must be a string", key)
	}
	return s, nil
}

// optBoolArg extracts an optional boolean argument.
func optBoolArg(args map[string]any, key string, def bool) (bool, error) {
	raw, ok := args[key]
	if !ok {
		return def, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, invalidArgs("%s must be a boolean", key)
	}
	return b, nil
}

// optNumberArg extracts an optional numeric argument.
func optNumberArg(args map[string]any, key string, def float64) (float64, error) {
	raw, ok := args[key]
	if !ok {
		return def, nil
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, invalidArgs("%s must be a number", key)
	}
	return f, nil
}

// optIntArg extracts an optional integer argument.
func optIntArg(args map[string]any, key string, def int) (int, error) {
	f, err := optNumberArg(args, key, float64(def))
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, invalidArgs("%s must be an integer", key)
	}
	return int(f), nil
}

// optStringSliceArg extracts an optional array-of-strings argument.
func optStringSliceArg(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok {
		return nil, nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, invalidArgs("%s must be an array of strings", key)
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		s, ok := v.(string)
		if !ok {
			return nil, invalidArgs("%s must be an array of strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}
