package schema

import "encoding/json"

// ── Row ─────────────────────────────────────────────────────

// Row is one table row keyed by display names. The backend row id,
// when known, lives under the reserved "id" key.
type Row map[string]any

// ID returns the backend row id, or 0 when the row has none yet.
func (r Row) ID() int64 {
	return toInt64(r["id"])
}

// Warning flags a value the decoder passed through unresolved rather
// than failing the whole row. Callers decide whether to log it.
type Warning struct {
	RowID  int64
	Field  string
	Reason string
}

// toInt64 coerces the numeric shapes a row id shows up in. JSON
// decoding hands back float64, callers tend to write int or int64.
func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	default:
		return 0
	}
}
