package mirror

import (
	"fmt"

	"gridbase/internal/domain"

	_ "github.com/lib/pq"
)

// buildPostgresDSN constructs a Postgres connection string from a MirrorTarget.
func buildPostgresDSN(target *domain.MirrorTarget, password string) string {
	port := target.Port
	if port == 0 {
		port = 5432
	}
	sslMode := target.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		target.Host, port, target.Username, password, target.Database, sslMode,
	)
}
