package store

import (
	"testing"
	"time"

	"github.com/dukerupert/mathom/internal/database"
	"github.com/dukerupert/mathom/internal/model"
)

func setupBackupTestDB(t *testing.T) *BackupStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBackupStore(db)
}

func TestBackupCreate(t *testing.T) {
	bs := setupBackupTestDB(t)

	b, err := bs.Create("backup-2026.db.enc", "backups/2026-08-29T00:00:00Z.db.enc")
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if b.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if b.Filename != "backup-2026.db.enc" {
		t.Errorf("filename = %q, want %q", b.Filename, "backup-2026.db.enc")
	}
	if b.Status != model.BackupStatusPending {
		t.Errorf("status = %q, want %q", b.Status, model.BackupStatusPending)
	}
}

func TestBackupUpdateStatus(t *testing.T) {
	bs := setupBackupTestDB(t)

	b, err := bs.Create("test.db.enc", "backups/test.db.enc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := bs.UpdateStatus(b.ID, model.BackupStatusUploading, ""); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got, err := bs.GetByID(b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.BackupStatusUploading {
		t.Errorf("status = %q, want %q", got.Status, model.BackupStatusUploading)
	}

	if err := bs.UpdateStatus(b.ID, model.BackupStatusFailed, "upload failed"); err != nil {
		t.Fatalf("update status with error: %v", err)
	}
	got, err = bs.GetByID(b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.BackupStatusFailed {
		t.Errorf("status = %q, want %q", got.Status, model.BackupStatusFailed)
	}
	if got.ErrorMessage != "upload failed" {
		t.Errorf("error_message = %q, want %q", got.ErrorMessage, "upload failed")
	}
}

func TestBackupUpdateCompleted(t *testing.T) {
	bs := setupBackupTestDB(t)

	b, err := bs.Create("test.db.enc", "backups/test.db.enc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := bs.UpdateCompleted(b.ID, 1024*1024); err != nil {
		t.Fatalf("update completed: %v", err)
	}

	got, err := bs.GetByID(b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want %q", got.Status, model.BackupStatusCompleted)
	}
	if got.SizeBytes != 1024*1024 {
		t.Errorf("size_bytes = %d, want %d", got.SizeBytes, 1024*1024)
	}
	if got.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
}

func TestBackupListOrderAndLimit(t *testing.T) {
	bs := setupBackupTestDB(t)

	for _, name := range []string{"first.db.enc", "second.db.enc", "third.db.enc"} {
		if _, err := bs.Create(name, "backups/"+name); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	all, err := bs.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].Filename != "third.db.enc" {
		t.Errorf("first entry = %q, want %q (newest first)", all[0].Filename, "third.db.enc")
	}

	limited, err := bs.List(2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("len = %d, want 2", len(limited))
	}
}

func TestBackupDeleteOlderThan(t *testing.T) {
	bs := setupBackupTestDB(t)

	if _, err := bs.Create("old.db.enc", "backups/old.db.enc"); err != nil {
		t.Fatalf("create: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	cutoff := time.Now().UTC()
	time.Sleep(20 * time.Millisecond)
	if _, err := bs.Create("new.db.enc", "backups/new.db.enc"); err != nil {
		t.Fatalf("create: %v", err)
	}

	keys, err := bs.DeleteOlderThan(cutoff)
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if len(keys) != 1 || keys[0] != "backups/old.db.enc" {
		t.Fatalf("deleted keys = %v, want [backups/old.db.enc]", keys)
	}

	remaining, err := bs.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Filename != "new.db.enc" {
		t.Errorf("remaining = %v, want just new.db.enc", remaining)
	}
}

func TestBackupLatestCompleted(t *testing.T) {
	bs := setupBackupTestDB(t)

	b1, err := bs.Create("first.db.enc", "backups/first.db.enc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := bs.UpdateCompleted(b1.ID, 100); err != nil {
		t.Fatalf("complete: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	b2, err := bs.Create("second.db.enc", "backups/second.db.enc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := bs.UpdateCompleted(b2.ID, 200); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// A failed backup must not win.
	b3, err := bs.Create("failed.db.enc", "backups/failed.db.enc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := bs.UpdateStatus(b3.ID, model.BackupStatusFailed, "error"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	latest, err := bs.LatestCompleted()
	if err != nil {
		t.Fatalf("latest completed: %v", err)
	}
	if latest == nil {
		t.Fatal("expected latest, got nil")
	}
	if latest.Filename != "second.db.enc" {
		t.Errorf("filename = %q, want %q", latest.Filename, "second.db.enc")
	}
}

func TestBackupTotalSize(t *testing.T) {
	bs := setupBackupTestDB(t)

	b1, err := bs.Create("a.db.enc", "backups/a.db.enc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := bs.UpdateCompleted(b1.ID, 1000); err != nil {
		t.Fatalf("complete: %v", err)
	}
	b2, err := bs.Create("b.db.enc", "backups/b.db.enc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := bs.UpdateCompleted(b2.ID, 2500); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Pending backups do not count.
	if _, err := bs.Create("c.db.enc", "backups/c.db.enc"); err != nil {
		t.Fatalf("create: %v", err)
	}

	total, err := bs.TotalSize()
	if err != nil {
		t.Fatalf("total size: %v", err)
	}
	if total != 3500 {
		t.Errorf("total = %d, want 3500", total)
	}
}
