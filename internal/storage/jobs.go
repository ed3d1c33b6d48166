package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gridbase/internal/domain"
)

// JobStore implements persistence for sync jobs and run logs.
type JobStore struct {
	db *DB
}

// NewJobStore creates a new JobStore.
func NewJobStore(db *DB) *JobStore {
	return &JobStore{db: db}
}

const jobColumns = `id, name, kind, table_id, target_id, target_table, sync_mode,
	source_path, source_format, trigger_type, trigger_config, enabled,
	last_run_at, last_status, last_error, created_at, updated_at`

// ── SyncJob CRUD ───────────────────────────────────────────

func (s *JobStore) CreateJob(job *domain.SyncJob) error {
	now := time.Now()
	job.ID = uuid.New().String()
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := s.db.conn.Exec(
		`INSERT INTO sync_jobs (id, name, kind, table_id, target_id, target_table, sync_mode,
		 source_path, source_format, trigger_type, trigger_config, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Name, job.Kind, job.TableID, job.TargetID, job.TargetTable, job.SyncMode,
		job.SourcePath, job.SourceFormat, job.TriggerType, job.TriggerConfig, job.Enabled,
		job.CreatedAt, job.UpdatedAt,
	)
	return err
}

func (s *JobStore) GetJob(id string) (*domain.SyncJob, error) {
	row := s.db.conn.QueryRow(`SELECT `+jobColumns+` FROM sync_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sync job not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobStore) UpdateJob(job *domain.SyncJob) error {
	job.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE sync_jobs SET name=?, kind=?, table_id=?, target_id=?, target_table=?,
		 sync_mode=?, source_path=?, source_format=?, trigger_type=?, trigger_config=?,
		 enabled=?, updated_at=? WHERE id=?`,
		job.Name, job.Kind, job.TableID, job.TargetID, job.TargetTable,
		job.SyncMode, job.SourcePath, job.SourceFormat, job.TriggerType, job.TriggerConfig,
		job.Enabled, job.UpdatedAt, job.ID,
	)
	return err
}

func (s *JobStore) UpdateJobStatus(id, status, errMsg string) error {
	_, err := s.db.conn.Exec(
		`UPDATE sync_jobs SET last_run_at=?, last_status=?, last_error=?, updated_at=? WHERE id=?`,
		time.Now(), status, errMsg, time.Now(), id,
	)
	return err
}

func (s *JobStore) DeleteJob(id string) error {
	// Delete run logs first.
	if _, err := s.db.conn.Exec(`DELETE FROM run_logs WHERE job_id = ?`, id); err != nil {
		return err
	}
	_, err := s.db.conn.Exec(`DELETE FROM sync_jobs WHERE id = ?`, id)
	return err
}

func (s *JobStore) ListJobs() ([]domain.SyncJob, error) {
	return s.queryJobs(`SELECT ` + jobColumns + ` FROM sync_jobs ORDER BY created_at ASC`)
}

// ListTriggeredJobs returns enabled jobs with a schedule or file-watch
// trigger.
func (s *JobStore) ListTriggeredJobs() ([]domain.SyncJob, error) {
	return s.queryJobs(`SELECT ` + jobColumns + ` FROM sync_jobs
		WHERE enabled = 1 AND trigger_type IN ('schedule', 'file_watch')
		ORDER BY created_at ASC`)
}

func (s *JobStore) queryJobs(query string, args ...any) ([]domain.SyncJob, error) {
	rows, err := s.db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.SyncJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (*domain.SyncJob, error) {
	job := &domain.SyncJob{}
	err := r.Scan(
		&job.ID, &job.Name, &job.Kind, &job.TableID, &job.TargetID, &job.TargetTable,
		&job.SyncMode, &job.SourcePath, &job.SourceFormat, &job.TriggerType,
		&job.TriggerConfig, &job.Enabled, &job.LastRunAt, &job.LastStatus,
		&job.LastError, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ── Run logs ───────────────────────────────────────────────

func (s *JobStore) CreateRunLog(l *domain.RunLog) error {
	l.ID = uuid.New().String()
	_, err := s.db.conn.Exec(
		`INSERT INTO run_logs (id, job_id, started_at, finished_at, status, rows_read, rows_written, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.JobID, l.StartedAt, l.FinishedAt, l.Status, l.RowsRead, l.RowsWritten, l.Error,
	)
	return err
}

func (s *JobStore) ListRunLogs(jobID string, limit int) ([]domain.RunLog, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, job_id, started_at, finished_at, status, rows_read, rows_written, error
		 FROM run_logs WHERE job_id = ? ORDER BY started_at DESC LIMIT ?`,
		jobID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.RunLog
	for rows.Next() {
		var l domain.RunLog
		if err := rows.Scan(&l.ID, &l.JobID, &l.StartedAt, &l.FinishedAt, &l.Status, &l.RowsRead, &l.RowsWritten, &l.Error); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
