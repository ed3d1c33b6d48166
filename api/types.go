package api

// ── Wire types ──────────────────────────────────────────────
// Raw shapes exchanged with the grid backend REST API. Rows travel as
// identifier-keyed maps ("field_42": ...); name resolution lives in
// the schema package.

// Field describes one column of a table as reported by the backend.
type Field struct {
	ID            int64          `json:"id"`
	TableID       int64          `json:"table_id"`
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	Primary       bool           `json:"primary"`
	ReadOnly      bool           `json:"read_only"`
	SelectOptions []SelectOption `json:"select_options,omitempty"`
}

// SelectOption is one admissible choice of a single or multiple select
// field.
type SelectOption struct {
	ID    int64  `json:"id"`
	Value string `json:"value"`
	Color string `json:"color,omitempty"`
}

// rowsPage is one page of a row listing. Next links to the following
// page and is null on the last one. Results is a pointer so a body
// missing the key entirely is distinguishable from an empty page.
type rowsPage struct {
	Count    int               `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  *[]map[string]any `json:"results"`
}

// batchItems wraps row payloads for the batch endpoints.
type batchItems struct {
	Items []map[string]any `json:"items"`
}
