package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gridbase/schema"
)

// ── JSON ingest ─────────────────────────────────────────────

// ReadJSON parses the file at path into push-ready rows. The root may
// be an array of objects or a single object; dataPath walks into a
// nested document first ("data.items"). Nested objects inside a row
// are serialized to JSON strings; arrays pass through so select and
// link values survive.
func ReadJSON(path, dataPath string) ([]schema.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	if dataPath != "" {
		raw, err = navigatePath(raw, dataPath)
		if err != nil {
			return nil, err
		}
	}

	switch v := raw.(type) {
	case []any:
		rows := make([]schema.Row, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d is not an object", i)
			}
			rows = append(rows, toRow(m))
		}
		return rows, nil
	case map[string]any:
		// Single object → single row.
		return []schema.Row{toRow(v)}, nil
	default:
		return nil, fmt.Errorf("json root is not an array or object")
	}
}

// navigatePath walks a dot-separated path into nested objects.
func navigatePath(raw any, dataPath string) (any, error) {
	current := raw
	for _, part := range strings.Split(dataPath, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid data path: %q not found", part)
		}
		current, ok = m[part]
		if !ok {
			return nil, fmt.Errorf("invalid data path: %q not found", part)
		}
	}
	return current, nil
}

// toRow keeps scalars and arrays; nested objects become JSON strings.
func toRow(m map[string]any) schema.Row {
	row := make(schema.Row, len(m))
	for k, v := range m {
		switch v.(type) {
		case map[string]any:
			b, _ := json.Marshal(v)
			row[k] = string(b)
		default:
			row[k] = v
		}
	}
	return row
}
