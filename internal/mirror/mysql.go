package mirror

import (
	"fmt"

	"gridbase/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

// buildMySQLDSN constructs a MySQL DSN from a MirrorTarget.
func buildMySQLDSN(target *domain.MirrorTarget, password string) string {
	port := target.Port
	if port == 0 {
		port = 3306
	}
	// Format: user:password@tcp(host:port)/dbname?parseTime=true
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		target.Username, password, target.Host, port, target.Database,
	)
	if target.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}
