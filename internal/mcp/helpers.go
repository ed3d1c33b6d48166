package mcpserver

import "encoding/json"

// parseJSON parses a JSON string argument into the target type.
func parseJSON(data string, target any) error {
	return json.Unmarshal([]byte(data), target)
}

// marshalIndentJSON serializes a value for tool and resource payloads.
func marshalIndentJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
