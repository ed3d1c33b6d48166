package schema

import "fmt"

// ── Encoder ─────────────────────────────────────────────────
// Mirror image of the decoder: display names back to identifier keys,
// option labels back to option ids. Field names that resolve to
// nothing are hard failures so typos surface before a write goes out.
// Labels the map does not know pass through untouched; whether to take
// them is the backend's call.

// Encode translates a name-keyed Row into the identifier-keyed payload
// the backend expects. The reserved "id" entry is copied through
// unchanged.
func Encode(row Row, fm *FieldMap) (map[string]any, error) {
	payload := make(map[string]any, len(row))
	for name, value := range row {
		if name == "id" {
			payload["id"] = value
			continue
		}
		f, ok := fm.ByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q in table %d", ErrUnknownField, name, fm.TableID)
		}
		payload[wireKey(f.ID)] = encodeValue(f, value)
	}
	return payload, nil
}

func encodeValue(f *Field, value any) any {
	if f.ReadOnly {
		// The backend rejects read-only writes itself; no translation.
		return value
	}
	switch f.Kind {
	case KindSingleSelect:
		return encodeOption(f, value)
	case KindMultipleSelect:
		list, ok := anyList(value)
		if !ok {
			return value
		}
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = encodeOption(f, item)
		}
		return out
	default:
		// Link rows already travel as id lists; plain values go as-is.
		return value
	}
}

// encodeOption maps a label to its option id. Anything that is not a
// known label, numeric ids included, passes through unchanged.
func encodeOption(f *Field, value any) any {
	if label, ok := value.(string); ok {
		if id, ok := f.OptionID(label); ok {
			return id
		}
	}
	return value
}

func anyList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
