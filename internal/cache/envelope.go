package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The server wraps some responses as {success, data} and some as
// {success, data: {data}}; other entries hold the bare resource. Cached
// entries keep whichever shape they arrived in, and every write must
// preserve it: an enveloped value is never flattened to a raw one or vice
// versa. Unwrap is the single place allowed to branch on shape; everything
// else operates on the unwrapped resource.

// RewrapFunc restores the original envelope shape around a replacement
// resource payload.
type RewrapFunc func(inner []byte) ([]byte, error)

// Unwrap returns the resource payload inside raw plus a RewrapFunc for
// writing a new payload back in the same shape.
func Unwrap(raw []byte) (json.RawMessage, RewrapFunc, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil, fmt.Errorf("empty cache entry")
	}
	if trimmed[0] != '{' {
		// Arrays and scalars are always bare resources.
		return trimmed, identityRewrap, nil
	}

	var outer map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &outer); err != nil {
		return nil, nil, fmt.Errorf("malformed cache entry: %w", err)
	}

	data, hasData := outer["data"]
	if _, hasSuccess := outer["success"]; !hasSuccess || !hasData {
		return trimmed, identityRewrap, nil
	}

	// Enveloped. Check for the doubly-nested {success, data: {data}} shape:
	// the inner object carries a "data" key and no resource id of its own.
	var innerObj map[string]json.RawMessage
	if err := json.Unmarshal(data, &innerObj); err == nil {
		nested, hasNested := innerObj["data"]
		if _, hasID := innerObj["id"]; hasNested && !hasID {
			return nested, func(inner []byte) ([]byte, error) {
				innerObj["data"] = inner
				rewrapped, err := json.Marshal(innerObj)
				if err != nil {
					return nil, err
				}
				outer["data"] = rewrapped
				return json.Marshal(outer)
			}, nil
		}
	}

	return data, func(inner []byte) ([]byte, error) {
		outer["data"] = inner
		return json.Marshal(outer)
	}, nil
}

func identityRewrap(inner []byte) ([]byte, error) {
	return inner, nil
}

// DecodeResource unwraps raw and unmarshals the resource payload into T.
func DecodeResource[T any](raw json.RawMessage) (T, error) {
	var v T
	inner, _, err := Unwrap(raw)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(inner, &v); err != nil {
		return v, fmt.Errorf("failed to decode resource: %w", err)
	}
	return v, nil
}
