package presenter

import (
	"encoding/json"
	"fmt"
)

// Structured converts an entity to its generic map form. The entity's
// own JSON marshalling is authoritative, so reference fields keep
// whichever shape the API originally returned.
func Structured(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode entity map: %w", err)
	}
	return m, nil
}

// StructuredSlice converts a slice of entities to the []any form the
// pagination envelope carries.
func StructuredSlice[T any](items []T) ([]any, error) {
	out := make([]any, 0, len(items))
	for i := range items {
		m, err := Structured(&items[i])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// JSON serializes a structured payload with two-space indentation,
// the form every structured response uses before truncation.
func JSON(v any) (string, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode response: %w", err)
	}
	return string(raw), nil
}
