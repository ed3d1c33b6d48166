package mirror

import (
	"gridbase/internal/domain"

	_ "modernc.org/sqlite"
)

// buildSQLiteDSN constructs a DSN for a local SQLite file target.
// The Host field carries the file path. Opens in WAL mode with busy
// timeout so a reader can look at the mirror while a sync runs.
func buildSQLiteDSN(target *domain.MirrorTarget) string {
	return target.Host + "?_journal_mode=WAL&_busy_timeout=5000"
}
