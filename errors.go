package gridbase

import "errors"

// ── Errors ──────────────────────────────────────────────────

// ErrPartialBatchFailure marks a batch where one group of writes
// failed while the other was applied. The wrapped error names the
// group that failed.
var ErrPartialBatchFailure = errors.New("batch partially applied")
