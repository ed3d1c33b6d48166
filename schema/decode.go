package schema

import (
	"encoding/json"
	"fmt"
)

// ── Decoder ─────────────────────────────────────────────────
// Raw backend rows carry identifier keys and option ids. Decode
// rewrites them into display names and option labels. It is a pure
// function over its inputs: nothing it meets is fatal, anything it
// cannot resolve passes through unchanged and comes back as a Warning
// for the caller to log.

// Decode translates one raw backend row into a name-keyed Row. The
// reserved "id" key is preserved as int64; "order" is a backend
// ordering artifact and is dropped.
func Decode(raw map[string]any, fm *FieldMap) (Row, []Warning) {
	row := make(Row, len(raw))
	var warnings []Warning

	rowID := toInt64(raw["id"])
	if _, ok := raw["id"]; ok {
		row["id"] = rowID
	}

	for key, value := range raw {
		if key == "id" || key == "order" {
			continue
		}
		id, ok := parseWireKey(key)
		if !ok {
			row[key] = value
			warnings = append(warnings, Warning{RowID: rowID, Field: key, Reason: "unrecognized row key"})
			continue
		}
		f, ok := fm.ByID(id)
		if !ok {
			row[key] = value
			warnings = append(warnings, Warning{RowID: rowID, Field: key, Reason: fmt.Sprintf("no field with id %d", id)})
			continue
		}
		decoded, ws := decodeValue(f, rowID, value)
		row[f.Name] = decoded
		warnings = append(warnings, ws...)
	}
	return row, warnings
}

func decodeValue(f *Field, rowID int64, value any) (any, []Warning) {
	switch f.Kind {
	case KindSingleSelect:
		return decodeOption(f, rowID, value)
	case KindMultipleSelect:
		list, ok := value.([]any)
		if !ok {
			if value == nil {
				return nil, nil
			}
			return value, []Warning{{RowID: rowID, Field: f.Name, Reason: "multiple select value is not a list"}}
		}
		out := make([]any, 0, len(list))
		var warnings []Warning
		for _, item := range list {
			decoded, ws := decodeOption(f, rowID, item)
			out = append(out, decoded)
			warnings = append(warnings, ws...)
		}
		return out, warnings
	case KindLinkRow:
		return decodeLinks(f, rowID, value)
	default:
		return value, nil
	}
}

// decodeOption resolves one select value to its label. The wire sends
// either a bare option id or an {id, value} object; null stays null.
func decodeOption(f *Field, rowID int64, value any) (any, []Warning) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		if label, ok := v["value"].(string); ok {
			return label, nil
		}
		return value, []Warning{{RowID: rowID, Field: f.Name, Reason: "select object without a value"}}
	default:
		id, ok := toOptionID(value)
		if !ok {
			return value, []Warning{{RowID: rowID, Field: f.Name, Reason: fmt.Sprintf("unexpected select value %v", value)}}
		}
		label, ok := f.OptionLabel(id)
		if !ok {
			return value, []Warning{{RowID: rowID, Field: f.Name, Reason: fmt.Sprintf("unknown option id %d", id)}}
		}
		return label, nil
	}
}

// decodeLinks reduces a link row list to the linked row ids, the same
// shape the encoder sends back out.
func decodeLinks(f *Field, rowID int64, value any) (any, []Warning) {
	list, ok := value.([]any)
	if !ok {
		if value == nil {
			return nil, nil
		}
		return value, []Warning{{RowID: rowID, Field: f.Name, Reason: "link row value is not a list"}}
	}
	ids := make([]int64, 0, len(list))
	var warnings []Warning
	for _, item := range list {
		switch v := item.(type) {
		case map[string]any:
			ids = append(ids, toInt64(v["id"]))
		default:
			id, ok := toOptionID(item)
			if !ok {
				warnings = append(warnings, Warning{RowID: rowID, Field: f.Name, Reason: fmt.Sprintf("unexpected link value %v", item)})
				continue
			}
			ids = append(ids, id)
		}
	}
	return ids, warnings
}

func toOptionID(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}
