package mirror

import (
	"context"
	"fmt"

	"gridbase/internal/domain"
	"gridbase/schema"
)

// ── Destination ────────────────────────────────────────────
// A Destination writes grid rows into an external database so the
// table can be queried with plain SQL (or mongo) tooling.

// Destination writes rows into a target table or collection.
type Destination interface {
	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Write stores rows under the given table name. Replace mode drops
	// whatever is there first; append mode only adds. Returns the number
	// of rows written, which may be short of len(rows) on error.
	Write(ctx context.Context, table string, fm *schema.FieldMap, rows []schema.Row, mode domain.SyncMode) (int, error)

	// Close releases the underlying connection.
	Close() error
}

// New creates a Destination for the given mirror target.
// The password must be provided separately (from the secret store).
func New(target *domain.MirrorTarget, password string) (Destination, error) {
	switch target.Driver {
	case domain.DriverSQLite:
		return newSQLWriter("sqlite", buildSQLiteDSN(target))
	case domain.DriverMySQL:
		return newSQLWriter("mysql", buildMySQLDSN(target, password))
	case domain.DriverPostgres:
		return newSQLWriter("postgres", buildPostgresDSN(target, password))
	case domain.DriverMongoDB:
		return newMongoWriter(target, password)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", target.Driver)
	}
}
