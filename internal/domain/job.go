package domain

import "time"

// ── Sync jobs ───────────────────────────────────────────────

// JobKind says which direction a sync job moves data.
type JobKind string

const (
	// JobKindMirror copies a backend table into a local destination.
	JobKindMirror JobKind = "mirror"
	// JobKindPush loads a local file into a backend table.
	JobKindPush JobKind = "push"
)

// Trigger types for sync jobs.
const (
	TriggerManual    = "manual"
	TriggerSchedule  = "schedule"
	TriggerFileWatch = "file_watch"
)

// SyncMode says how a mirror destination treats existing data.
type SyncMode string

const (
	// SyncModeReplace drops the destination table before writing.
	SyncModeReplace SyncMode = "replace"
	// SyncModeAppend keeps existing rows and only adds.
	SyncModeAppend SyncMode = "append"
)

// SyncJob configures one manual or recurring data movement between a
// backend table and the local side.
type SyncJob struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Kind    JobKind `json:"kind"`
	TableID int64   `json:"tableId"`

	// Mirror jobs write into the target identified by TargetID, using
	// TargetTable as table or collection name.
	TargetID    string   `json:"targetId,omitempty"`
	TargetTable string   `json:"targetTable,omitempty"`
	SyncMode    SyncMode `json:"syncMode,omitempty"` // "replace" | "append"

	// Push jobs read SourcePath in SourceFormat ("csv" | "json").
	SourcePath   string `json:"sourcePath,omitempty"`
	SourceFormat string `json:"sourceFormat,omitempty"`

	TriggerType   string `json:"triggerType"`   // "manual" | "schedule" | "file_watch"
	TriggerConfig string `json:"triggerConfig"` // cron expression or watch path
	Enabled       bool   `json:"enabled"`

	LastRunAt  time.Time `json:"lastRunAt"`
	LastStatus string    `json:"lastStatus"` // "success" | "error" | "running" | ""
	LastError  string    `json:"lastError"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// JobStore manages persistence for sync jobs.
type JobStore interface {
	CreateJob(job *SyncJob) error
	GetJob(id string) (*SyncJob, error)
	ListJobs() ([]SyncJob, error)
	// ListTriggeredJobs returns enabled jobs with a schedule or
	// file-watch trigger.
	ListTriggeredJobs() ([]SyncJob, error)
	UpdateJob(job *SyncJob) error
	UpdateJobStatus(id, status, errMsg string) error
	DeleteJob(id string) error
}

// RunLog is the historical record of one job execution.
type RunLog struct {
	ID          string    `json:"id"`
	JobID       string    `json:"jobId"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	Status      string    `json:"status"` // "success" | "error"
	RowsRead    int       `json:"rowsRead"`
	RowsWritten int       `json:"rowsWritten"`
	Error       string    `json:"error,omitempty"`
}

// RunLogStore manages persistence for run history.
type RunLogStore interface {
	CreateRunLog(l *RunLog) error
	ListRunLogs(jobID string, limit int) ([]RunLog, error)
}
