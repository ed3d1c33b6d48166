package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gridbase/internal/domain"
)

// TargetStore manages mirror target records in SQLite.
type TargetStore struct {
	db *DB
}

// NewTargetStore creates a new TargetStore.
func NewTargetStore(db *DB) *TargetStore {
	return &TargetStore{db: db}
}

func (s *TargetStore) CreateTarget(tgt *domain.MirrorTarget) error {
	now := time.Now()
	tgt.ID = uuid.New().String()
	tgt.CreatedAt = now
	tgt.UpdatedAt = now

	_, err := s.db.conn.Exec(
		`INSERT INTO mirror_targets (id, name, driver, host, port, database_name, username, ssl_mode, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tgt.ID, tgt.Name, tgt.Driver, tgt.Host, tgt.Port, tgt.Database, tgt.Username, tgt.SSLMode, tgt.CreatedAt, tgt.UpdatedAt,
	)
	return err
}

func (s *TargetStore) GetTarget(id string) (*domain.MirrorTarget, error) {
	row := s.db.conn.QueryRow(
		`SELECT id, name, driver, host, port, database_name, username, ssl_mode, created_at, updated_at
		 FROM mirror_targets WHERE id = ?`, id,
	)

	tgt := &domain.MirrorTarget{}
	err := row.Scan(&tgt.ID, &tgt.Name, &tgt.Driver, &tgt.Host, &tgt.Port, &tgt.Database, &tgt.Username, &tgt.SSLMode, &tgt.CreatedAt, &tgt.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mirror target not found: %s", id)
	}
	return tgt, err
}

func (s *TargetStore) ListTargets() ([]domain.MirrorTarget, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, name, driver, host, port, database_name, username, ssl_mode, created_at, updated_at
		 FROM mirror_targets ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []domain.MirrorTarget
	for rows.Next() {
		var tgt domain.MirrorTarget
		if err := rows.Scan(&tgt.ID, &tgt.Name, &tgt.Driver, &tgt.Host, &tgt.Port, &tgt.Database, &tgt.Username, &tgt.SSLMode, &tgt.CreatedAt, &tgt.UpdatedAt); err != nil {
			return nil, err
		}
		targets = append(targets, tgt)
	}
	return targets, rows.Err()
}

func (s *TargetStore) UpdateTarget(tgt *domain.MirrorTarget) error {
	tgt.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE mirror_targets SET name=?, driver=?, host=?, port=?, database_name=?, username=?, ssl_mode=?, updated_at=?
		 WHERE id=?`,
		tgt.Name, tgt.Driver, tgt.Host, tgt.Port, tgt.Database, tgt.Username, tgt.SSLMode, tgt.UpdatedAt, tgt.ID,
	)
	return err
}

func (s *TargetStore) DeleteTarget(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM mirror_targets WHERE id = ?`, id)
	return err
}
