package domain

import "time"

// Driver identifies a mirror destination engine.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
	DriverMongoDB  Driver = "mongodb"
)

// MirrorTarget holds the metadata for connecting to a mirror
// destination. The password is stored separately in the secret store.
type MirrorTarget struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Driver    Driver    `json:"driver"`
	Host      string    `json:"host"`     // hostname or file path (sqlite)
	Port      int       `json:"port"`     // 0 for sqlite
	Database  string    `json:"database"` // db name, empty for sqlite
	Username  string    `json:"username"`
	SSLMode   string    `json:"sslMode"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TargetStore manages persistence for mirror targets.
type TargetStore interface {
	CreateTarget(tgt *MirrorTarget) error
	GetTarget(id string) (*MirrorTarget, error)
	ListTargets() ([]MirrorTarget, error)
	UpdateTarget(tgt *MirrorTarget) error
	DeleteTarget(id string) error
}
