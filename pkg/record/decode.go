package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnexpectedShape is returned when a response body is neither an object nor
// an array of objects.
var ErrUnexpectedShape = errors.New("unexpected response shape")

func decodeNumber(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// DecodeItems decodes a JSON array of objects, preserving numbers as
// json.Number.
func DecodeItems(data []byte) ([]map[string]any, error) {
	var items []map[string]any
	if err := decodeNumber(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	return items, nil
}

// NormalizeAll decodes and normalizes every item against fields.
func NormalizeAll(fields []string, items []map[string]any) []Record {
	out := make([]Record, 0, len(items))
	for _, item := range items {
		out = append(out, Normalize(fields, item))
	}
	return out
}
