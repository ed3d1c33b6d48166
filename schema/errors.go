package schema

import "errors"

// ── Errors ──────────────────────────────────────────────────

var (
	// ErrUnknownField marks a row key that resolves to no field of the
	// table. Typos fail loudly instead of writing somewhere unintended.
	ErrUnknownField = errors.New("unknown field")

	// ErrAmbiguousFieldName marks a table whose fields cannot be
	// resolved by name because a display name appears more than once.
	ErrAmbiguousFieldName = errors.New("ambiguous field name")
)
