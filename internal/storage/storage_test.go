package storage_test

import (
	"path/filepath"
	"testing"
	"time"

	"gridbase/internal/domain"
	"gridbase/internal/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "gridbase.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ─────────────────────────────────────────────────────────────
// JobStore tests
// ─────────────────────────────────────────────────────────────

func TestJobStore_CRUD(t *testing.T) {
	store := storage.NewJobStore(openTestDB(t))

	job := &domain.SyncJob{
		Name:        "nightly mirror",
		Kind:        domain.JobKindMirror,
		TableID:     42,
		TargetID:    "tgt-1",
		TargetTable: "projects",
		SyncMode:    domain.SyncModeReplace,
		TriggerType: domain.TriggerSchedule,
		Enabled:     true,
	}
	if err := store.CreateJob(job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	if job.ID == "" {
		t.Fatal("expected CreateJob to assign an id")
	}

	got, err := store.GetJob(job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Name != "nightly mirror" || got.TableID != 42 || got.Kind != domain.JobKindMirror {
		t.Errorf("unexpected job back: %+v", got)
	}

	got.Name = "renamed"
	got.Enabled = false
	if err := store.UpdateJob(got); err != nil {
		t.Fatalf("update job: %v", err)
	}

	updated, err := store.GetJob(job.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if updated.Name != "renamed" || updated.Enabled {
		t.Errorf("update not applied: %+v", updated)
	}

	if err := store.DeleteJob(job.ID); err != nil {
		t.Fatalf("delete job: %v", err)
	}
	if _, err := store.GetJob(job.ID); err == nil {
		t.Fatal("expected error for deleted job")
	}
}

func TestJobStore_UpdateJobStatus(t *testing.T) {
	store := storage.NewJobStore(openTestDB(t))

	job := &domain.SyncJob{Name: "j", Kind: domain.JobKindPush, TriggerType: domain.TriggerManual}
	if err := store.CreateJob(job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	if err := store.UpdateJobStatus(job.ID, "error", "boom"); err != nil {
		t.Fatalf("update status: %v", err)
	}

	got, err := store.GetJob(job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.LastStatus != "error" || got.LastError != "boom" {
		t.Errorf("status not recorded: %+v", got)
	}
}

func TestJobStore_ListTriggeredJobs(t *testing.T) {
	store := storage.NewJobStore(openTestDB(t))

	jobs := []*domain.SyncJob{
		{Name: "manual", Kind: domain.JobKindPush, TriggerType: domain.TriggerManual, Enabled: true},
		{Name: "cron", Kind: domain.JobKindMirror, TriggerType: domain.TriggerSchedule, TriggerConfig: "0 3 * * *", Enabled: true},
		{Name: "watch", Kind: domain.JobKindPush, TriggerType: domain.TriggerFileWatch, TriggerConfig: "/tmp/in.csv", Enabled: true},
		{Name: "disabled cron", Kind: domain.JobKindMirror, TriggerType: domain.TriggerSchedule, Enabled: false},
	}
	for _, j := range jobs {
		if err := store.CreateJob(j); err != nil {
			t.Fatalf("create %s: %v", j.Name, err)
		}
	}

	triggered, err := store.ListTriggeredJobs()
	if err != nil {
		t.Fatalf("list triggered: %v", err)
	}
	if len(triggered) != 2 {
		t.Fatalf("expected 2 triggered jobs, got %d", len(triggered))
	}
	if triggered[0].Name != "cron" || triggered[1].Name != "watch" {
		t.Errorf("unexpected triggered set: %q, %q", triggered[0].Name, triggered[1].Name)
	}
}

func TestJobStore_RunLogs(t *testing.T) {
	store := storage.NewJobStore(openTestDB(t))

	job := &domain.SyncJob{Name: "j", Kind: domain.JobKindMirror, TriggerType: domain.TriggerManual}
	if err := store.CreateJob(job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	start := time.Now().Add(-time.Minute)
	for i := 0; i < 3; i++ {
		l := &domain.RunLog{
			JobID:       job.ID,
			StartedAt:   start.Add(time.Duration(i) * time.Second),
			FinishedAt:  start.Add(time.Duration(i)*time.Second + 500*time.Millisecond),
			Status:      "success",
			RowsRead:    10 + i,
			RowsWritten: 10 + i,
		}
		if err := store.CreateRunLog(l); err != nil {
			t.Fatalf("create run log: %v", err)
		}
	}

	logs, err := store.ListRunLogs(job.ID, 2)
	if err != nil {
		t.Fatalf("list run logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected limit of 2 logs, got %d", len(logs))
	}
	if logs[0].RowsRead != 12 {
		t.Errorf("expected newest log first, got rows_read=%d", logs[0].RowsRead)
	}
}

// ─────────────────────────────────────────────────────────────
// TargetStore tests
// ─────────────────────────────────────────────────────────────

func TestTargetStore_CRUD(t *testing.T) {
	store := storage.NewTargetStore(openTestDB(t))

	tgt := &domain.MirrorTarget{
		Name:     "local analytics",
		Driver:   domain.DriverSQLite,
		Host:     "/tmp/analytics.db",
		Username: "",
	}
	if err := store.CreateTarget(tgt); err != nil {
		t.Fatalf("create target: %v", err)
	}
	if tgt.ID == "" {
		t.Fatal("expected CreateTarget to assign an id")
	}

	got, err := store.GetTarget(tgt.ID)
	if err != nil {
		t.Fatalf("get target: %v", err)
	}
	if got.Driver != domain.DriverSQLite || got.Host != "/tmp/analytics.db" {
		t.Errorf("unexpected target back: %+v", got)
	}

	got.Name = "renamed"
	got.Port = 5433
	if err := store.UpdateTarget(got); err != nil {
		t.Fatalf("update target: %v", err)
	}

	list, err := store.ListTargets()
	if err != nil {
		t.Fatalf("list targets: %v", err)
	}
	if len(list) != 1 || list[0].Name != "renamed" || list[0].Port != 5433 {
		t.Errorf("unexpected list: %+v", list)
	}

	if err := store.DeleteTarget(tgt.ID); err != nil {
		t.Fatalf("delete target: %v", err)
	}
	if _, err := store.GetTarget(tgt.ID); err == nil {
		t.Fatal("expected error for deleted target")
	}
}
