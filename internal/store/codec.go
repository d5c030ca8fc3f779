package store

import (
	"encoding/json"
	"fmt"
)

// EncodeFields serializes a field set for backends that store the record as
// a single value.
func EncodeFields(fields map[string]string) ([]byte, error) {
	if fields == nil {
		fields = map[string]string{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return data, nil
}

// DecodeFields is the inverse of EncodeFields. An empty value is an empty
// field set.
func DecodeFields(data []byte) (map[string]string, error) {
	fields := make(map[string]string)
	if len(data) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return fields, nil
}
