package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"gridbase"
	"gridbase/internal/domain"
	"gridbase/internal/ingest"
	"gridbase/internal/mirror"
	"gridbase/internal/secret"
	"gridbase/internal/storage"
	"gridbase/logger"
	"gridbase/schema"
)

// ─────────────────────────────────────────────────────────────
// SyncService — business logic for sync jobs
// ─────────────────────────────────────────────────────────────

// GridClient is the slice of the grid client the sync service needs.
// *gridbase.Client satisfies it; tests substitute a fake.
type GridClient interface {
	FieldMap(ctx context.Context, tableID int64) (*schema.FieldMap, error)
	GetData(ctx context.Context, tableID int64) (map[int64]schema.Row, error)
	AddDataBatch(ctx context.Context, tableID int64, rows []schema.Row) (*gridbase.BatchResult, error)
}

// SyncService manages sync jobs, mirror targets, scheduling, and
// file watching.
type SyncService struct {
	jobs        *storage.JobStore
	targets     *storage.TargetStore
	secrets     secret.Store
	grid        GridClient
	emitter     EventEmitter
	log         logger.Interface
	runningJobs runningJobsGuard

	// watcher / cron lifecycle
	watchCancel context.CancelFunc
	watcher     *fsnotify.Watcher
	cronSched   *cron.Cron
}

// NewSyncService creates a SyncService ready for use.
func NewSyncService(
	jobs *storage.JobStore,
	targets *storage.TargetStore,
	secrets secret.Store,
	grid GridClient,
	emitter EventEmitter,
	log logger.Interface,
) *SyncService {
	if log == nil {
		log = logger.Nop
	}
	return &SyncService{
		jobs:    jobs,
		targets: targets,
		secrets: secrets,
		grid:    grid,
		emitter: emitter,
		log:     log,
	}
}

// ── Job CRUD ───────────────────────────────────────────────

func (s *SyncService) CreateJob(ctx context.Context, job *domain.SyncJob) error {
	if job.SyncMode == "" {
		job.SyncMode = domain.SyncModeReplace
	}
	if job.TriggerType == "" {
		job.TriggerType = domain.TriggerManual
	}
	if err := validateJob(job); err != nil {
		return err
	}

	if err := s.jobs.CreateJob(job); err != nil {
		return fmt.Errorf("create sync job: %w", err)
	}
	s.RestartWatchers(ctx)
	return nil
}

func (s *SyncService) GetJob(id string) (*domain.SyncJob, error) {
	return s.jobs.GetJob(id)
}

func (s *SyncService) ListJobs() ([]domain.SyncJob, error) {
	return s.jobs.ListJobs()
}

func (s *SyncService) UpdateJob(ctx context.Context, job *domain.SyncJob) error {
	if err := validateJob(job); err != nil {
		return err
	}
	if err := s.jobs.UpdateJob(job); err != nil {
		return err
	}
	s.RestartWatchers(ctx)
	return nil
}

func (s *SyncService) DeleteJob(ctx context.Context, id string) error {
	err := s.jobs.DeleteJob(id)
	if err == nil {
		s.RestartWatchers(ctx)
	}
	return err
}

// ListRunLogs returns the last 50 run logs for a job.
func (s *SyncService) ListRunLogs(jobID string) ([]domain.RunLog, error) {
	return s.jobs.ListRunLogs(jobID, 50)
}

// RunningJobs returns the ids of jobs currently executing.
func (s *SyncService) RunningJobs() []string {
	return s.runningJobs.Running()
}

func validateJob(job *domain.SyncJob) error {
	switch job.Kind {
	case domain.JobKindMirror:
		if job.TargetID == "" {
			return fmt.Errorf("mirror job needs a target")
		}
	case domain.JobKindPush:
		if job.SourcePath == "" {
			return fmt.Errorf("push job needs a source path")
		}
	default:
		return fmt.Errorf("unknown job kind: %s", job.Kind)
	}
	if job.TableID == 0 {
		return fmt.Errorf("job needs a table id")
	}
	switch job.TriggerType {
	case domain.TriggerManual:
	case domain.TriggerSchedule, domain.TriggerFileWatch:
		if job.TriggerConfig == "" {
			return fmt.Errorf("%s trigger needs a config value", job.TriggerType)
		}
	default:
		return fmt.Errorf("unknown trigger type: %s", job.TriggerType)
	}
	return nil
}

// ── Target CRUD ────────────────────────────────────────────

// CreateTarget stores a mirror target; the password goes to the
// secret store, never to SQLite.
func (s *SyncService) CreateTarget(target *domain.MirrorTarget, password string) error {
	if err := s.targets.CreateTarget(target); err != nil {
		return fmt.Errorf("create mirror target: %w", err)
	}
	if password != "" {
		if err := s.secrets.Set(target.ID, []byte(password)); err != nil {
			s.targets.DeleteTarget(target.ID)
			return fmt.Errorf("store target password: %w", err)
		}
	}
	return nil
}

func (s *SyncService) GetTarget(id string) (*domain.MirrorTarget, error) {
	return s.targets.GetTarget(id)
}

func (s *SyncService) ListTargets() ([]domain.MirrorTarget, error) {
	return s.targets.ListTargets()
}

func (s *SyncService) DeleteTarget(id string) error {
	if err := s.secrets.Delete(id); err != nil {
		s.log.Warn("sync: target password not removed", "target", id, "error", err)
	}
	return s.targets.DeleteTarget(id)
}

// TestTarget verifies connectivity to a mirror target.
func (s *SyncService) TestTarget(ctx context.Context, id string) error {
	dest, err := s.openDestination(id)
	if err != nil {
		return err
	}
	defer dest.Close()
	return dest.Ping(ctx)
}

// ── Run ────────────────────────────────────────────────────

// RunJob executes a single sync job synchronously, records a run log,
// and emits an event on success.
func (s *SyncService) RunJob(ctx context.Context, id string) (*domain.RunLog, error) {
	// The service can be built store-only for job management; runs
	// need the backend.
	if s.grid == nil {
		return nil, fmt.Errorf("no backend client configured")
	}
	// Prevent concurrent execution of the same job.
	if !s.runningJobs.TryLock(id) {
		return nil, fmt.Errorf("job %s is already running", id)
	}
	defer s.runningJobs.Unlock(id)

	job, err := s.jobs.GetJob(id)
	if err != nil {
		return nil, err
	}

	s.jobs.UpdateJobStatus(id, "running", "")

	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	start := time.Now()
	read, written, runErr := s.execute(runCtx, job)

	runLog := &domain.RunLog{
		JobID:       id,
		StartedAt:   start,
		FinishedAt:  time.Now(),
		Status:      "success",
		RowsRead:    read,
		RowsWritten: written,
	}
	if runErr != nil {
		runLog.Status = "error"
		runLog.Error = runErr.Error()
	}
	if err := s.jobs.CreateRunLog(runLog); err != nil {
		s.log.Warn("sync: run log not persisted", "job", id, "error", err)
	}
	s.jobs.UpdateJobStatus(id, runLog.Status, runLog.Error)

	if runErr == nil {
		s.emitter.Emit(ctx, "sync:updated", map[string]string{
			"jobId": id,
			"kind":  string(job.Kind),
		})
	}
	return runLog, runErr
}

func (s *SyncService) execute(ctx context.Context, job *domain.SyncJob) (read, written int, err error) {
	switch job.Kind {
	case domain.JobKindMirror:
		return s.runMirror(ctx, job)
	case domain.JobKindPush:
		return s.runPush(ctx, job)
	default:
		return 0, 0, fmt.Errorf("unknown job kind: %s", job.Kind)
	}
}

func (s *SyncService) runMirror(ctx context.Context, job *domain.SyncJob) (int, int, error) {
	table := job.TargetTable
	if table == "" {
		table = fmt.Sprintf("table_%d", job.TableID)
	}
	return s.MirrorTable(ctx, job.TableID, job.TargetID, table, job.SyncMode)
}

// MirrorTable pulls the whole table and writes it into the target. It
// is the body of a mirror job run, also usable for one-shot copies
// outside any persisted job. Returns rows read and rows written.
func (s *SyncService) MirrorTable(ctx context.Context, tableID int64, targetID, table string, mode domain.SyncMode) (int, int, error) {
	if mode == "" {
		mode = domain.SyncModeReplace
	}
	fm, err := s.grid.FieldMap(ctx, tableID)
	if err != nil {
		return 0, 0, err
	}
	data, err := s.grid.GetData(ctx, tableID)
	if err != nil {
		return 0, 0, err
	}

	rows := make([]schema.Row, 0, len(data))
	for _, row := range data {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID() < rows[j].ID() })

	dest, err := s.openDestination(targetID)
	if err != nil {
		return len(rows), 0, err
	}
	defer dest.Close()

	written, err := dest.Write(ctx, table, fm, rows, mode)
	if err != nil {
		return len(rows), written, fmt.Errorf("mirror write: %w", err)
	}
	return len(rows), written, nil
}

// runPush reads the source file and batches it into the table.
func (s *SyncService) runPush(ctx context.Context, job *domain.SyncJob) (int, int, error) {
	rows, err := readSource(job)
	if err != nil {
		return 0, 0, err
	}

	res, err := s.grid.AddDataBatch(ctx, job.TableID, rows)
	written := 0
	if res != nil {
		written = len(res.CreatedIDs) + len(res.UpdatedIDs)
	}
	if err != nil {
		return len(rows), written, err
	}
	return len(rows), written, nil
}

func (s *SyncService) openDestination(targetID string) (mirror.Destination, error) {
	target, err := s.targets.GetTarget(targetID)
	if err != nil {
		return nil, err
	}
	password, err := s.secrets.Get(target.ID)
	if err != nil {
		return nil, fmt.Errorf("target password: %w", err)
	}
	return mirror.New(target, string(password))
}

// readSource loads push rows from the job's file. An empty format
// falls back to the file extension, defaulting to CSV.
func readSource(job *domain.SyncJob) ([]schema.Row, error) {
	format := job.SourceFormat
	if format == "" {
		if strings.EqualFold(filepath.Ext(job.SourcePath), ".json") {
			format = "json"
		} else {
			format = "csv"
		}
	}
	switch format {
	case "csv":
		return ingest.ReadCSV(job.SourcePath, 0, true)
	case "json":
		return ingest.ReadJSON(job.SourcePath, "")
	default:
		return nil, fmt.Errorf("unknown source format: %s", format)
	}
}

// ── Watchers (cron + file_watch) ──────────────────────────

// RestartWatchers tears down the current watcher/cron and rebuilds
// them from the enabled triggered jobs.
func (s *SyncService) RestartWatchers(ctx context.Context) {
	s.stopWatchers()

	jobs, err := s.jobs.ListTriggeredJobs()
	if err != nil {
		s.log.Error("sync watcher: list jobs", "error", err)
		return
	}

	// ── Cron jobs ──
	var cronCount int
	var c *cron.Cron
	for _, j := range jobs {
		if j.TriggerType != domain.TriggerSchedule || j.TriggerConfig == "" {
			continue
		}
		if c == nil {
			c = cron.New()
		}
		jid := j.ID
		_, err := c.AddFunc(j.TriggerConfig, func() {
			s.log.Info("sync cron: running job", "job", jid)
			if _, err := s.RunJob(ctx, jid); err != nil {
				s.log.Error("sync cron: job failed", "job", jid, "error", err)
			}
			s.emitter.Emit(ctx, "sync:job-completed", jid)
		})
		if err != nil {
			s.log.Warn("sync cron: invalid expression", "job", j.ID, "expr", j.TriggerConfig, "error", err)
			continue
		}
		cronCount++
	}
	if c != nil {
		c.Start()
		s.cronSched = c
		s.log.Info("sync cron: scheduled jobs", "count", cronCount)
	}

	// ── File watchers ──
	type watchEntry struct {
		jobID string
		path  string
	}
	var entries []watchEntry
	for _, j := range jobs {
		if j.TriggerType == domain.TriggerFileWatch && j.TriggerConfig != "" {
			entries = append(entries, watchEntry{jobID: j.ID, path: j.TriggerConfig})
		}
	}

	if len(entries) == 0 {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.log.Error("sync watcher: create watcher", "error", err)
		return
	}
	s.watcher = watcher

	pathToJob := make(map[string]string)
	watchedDirs := make(map[string]bool)
	for _, e := range entries {
		absPath, err := filepath.Abs(e.path)
		if err != nil {
			s.log.Warn("sync watcher: bad path", "path", e.path, "error", err)
			continue
		}
		pathToJob[absPath] = e.jobID

		// Watch the parent dir: editors often replace files instead of
		// writing them in place.
		dir := filepath.Dir(absPath)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				s.log.Warn("sync watcher: watch dir", "dir", dir, "error", err)
			} else {
				watchedDirs[dir] = true
			}
		}
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	s.watchCancel = cancel

	go func() {
		timers := make(map[string]*time.Timer)
		for {
			select {
			case <-watchCtx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				absPath, _ := filepath.Abs(event.Name)
				jobID, ok := pathToJob[absPath]
				if !ok {
					continue
				}
				// Debounce: a save can produce several events in a burst.
				if t, exists := timers[jobID]; exists {
					t.Stop()
				}
				jid := jobID
				timers[jobID] = time.AfterFunc(500*time.Millisecond, func() {
					s.log.Info("sync watcher: file changed", "path", absPath, "job", jid)
					if _, err := s.RunJob(ctx, jid); err != nil {
						s.log.Error("sync watcher: run failed", "job", jid, "error", err)
					}
					s.emitter.Emit(ctx, "sync:job-completed", jid)
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn("sync watcher: error", "error", err)
			}
		}
	}()

	s.log.Info("sync watcher: watching files", "count", len(pathToJob))
}

// WaitRunning blocks until all running jobs finish or ctx is cancelled.
// Used for graceful shutdown.
func (s *SyncService) WaitRunning(ctx context.Context) {
	s.runningJobs.WaitAll(ctx)
}

// Stop tears down all watchers and schedulers.
func (s *SyncService) Stop() {
	s.stopWatchers()
}

func (s *SyncService) stopWatchers() {
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}
