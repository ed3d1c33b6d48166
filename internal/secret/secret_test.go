package secret_test

import (
	"os"
	"path/filepath"
	"testing"

	"gridbase/internal/secret"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store := secret.NewFileStore(filepath.Join(t.TempDir(), "secrets"))

	if err := store.Set("tgt-1", []byte("p4ss")); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get("tgt-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "p4ss" {
		t.Errorf("expected p4ss, got %q", got)
	}

	if err := store.Delete("tgt-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = store.Get("tgt-1")
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got %q", got)
	}
}

func TestFileStore_MissingKey(t *testing.T) {
	store := secret.NewFileStore(filepath.Join(t.TempDir(), "secrets"))

	got, err := store.Get("never-set")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing key, got %q", got)
	}

	// Deleting a missing key is fine too.
	if err := store.Delete("never-set"); err != nil {
		t.Errorf("delete missing: %v", err)
	}
}

func TestFileStore_FilePermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "secrets")
	store := secret.NewFileStore(dir)

	if err := store.Set("tgt-1", []byte("p4ss")); err != nil {
		t.Fatalf("set: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "tgt-1"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected 0600 perms, got %o", perm)
	}
}

func TestEnvStore_Get(t *testing.T) {
	t.Setenv("GRIDBASE_SECRET_TGT_1", "envp4ss")

	store := secret.NewEnvStore()
	got, err := store.Get("tgt-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "envp4ss" {
		t.Errorf("expected envp4ss, got %q", got)
	}

	got, err = store.Get("other")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unset var, got %q", got)
	}
}

func TestEnvStore_ReadOnly(t *testing.T) {
	store := secret.NewEnvStore()
	if err := store.Set("k", []byte("v")); err == nil {
		t.Error("expected Set to fail on env store")
	}
	if err := store.Delete("k"); err == nil {
		t.Error("expected Delete to fail on env store")
	}
}
