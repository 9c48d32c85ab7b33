package httpx

import (
	"bytes"
	"encoding/json"
)

// NullFields reports which of keys appear in the JSON object data with an
// explicit null value. Absent keys are not reported.
func NullFields(data []byte, keys ...string) (map[string]bool, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	nulls := make(map[string]bool, len(keys))
	for _, k := range keys {
		if v, ok := raw[k]; ok && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			nulls[k] = true
		}
	}
	return nulls, nil
}
