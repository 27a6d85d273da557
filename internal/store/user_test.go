package store

import (
	"testing"

	"github.com/dukerupert/mathom/internal/database"
)

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db)
}

func strPtr(s string) *string { return &s }

func TestUserCreate(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create("alice", strPtr("alice@example.com"), "hash1")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Username != "alice" {
		t.Errorf("username = %q, want %q", u.Username, "alice")
	}
	if u.Email == nil || *u.Email != "alice@example.com" {
		t.Errorf("email = %v, want alice@example.com", u.Email)
	}
	if u.PasswordHash != "hash1" {
		t.Errorf("password hash = %q, want %q", u.PasswordHash, "hash1")
	}
	if u.RefreshTokenHash != nil {
		t.Error("expected no refresh token hash on a fresh user")
	}
	if u.ID == 0 {
		t.Error("expected non-zero ID")
	}
}

func TestUserCreateWithoutEmail(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create("alice", nil, "hash1")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != nil {
		t.Errorf("email = %v, want nil", u.Email)
	}
}

func TestUserCreateAlsoCreatesPreferences(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create("alice", nil, "hash1")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	var n int
	if err := us.db.QueryRow(`SELECT COUNT(*) FROM preferences WHERE user_id = ?`, u.ID).Scan(&n); err != nil {
		t.Fatalf("count preferences: %v", err)
	}
	if n != 1 {
		t.Errorf("preferences rows = %d, want 1", n)
	}
}

func TestUserCreateDuplicateUsername(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.Create("alice", nil, "hash1"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := us.Create("alice", nil, "hash2"); err == nil {
		t.Fatal("expected error for duplicate username, got nil")
	}
}

func TestUserGetByIDNotFound(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.GetByID(999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if u != nil {
		t.Error("expected nil for nonexistent user")
	}
}

func TestUserGetByUsername(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.Create("alice", nil, "hash1"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	u, err := us.GetByUsername("alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if u == nil {
		t.Fatal("expected user, got nil")
	}
	if u.PasswordHash != "hash1" {
		t.Errorf("password hash = %q, want %q", u.PasswordHash, "hash1")
	}
}

func TestUserGetByUsernameNotFound(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.GetByUsername("nobody")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if u != nil {
		t.Error("expected nil for nonexistent username")
	}
}

func TestUsernameExists(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.Create("alice", nil, "hash1"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	exists, err := us.UsernameExists("alice")
	if err != nil {
		t.Fatalf("check username: %v", err)
	}
	if !exists {
		t.Error("expected alice to exist")
	}

	exists, err = us.UsernameExists("bob")
	if err != nil {
		t.Fatalf("check username: %v", err)
	}
	if exists {
		t.Error("expected bob to not exist")
	}
}

func TestUserUpdateProfile(t *testing.T) {
	us := setupUserTestDB(t)

	created, err := us.Create("alice", nil, "hash1")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	updated, err := us.UpdateProfile(created.ID, "alice2", strPtr("alice2@example.com"))
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Username != "alice2" {
		t.Errorf("username = %q, want %q", updated.Username, "alice2")
	}
	if updated.Email == nil || *updated.Email != "alice2@example.com" {
		t.Errorf("email = %v, want alice2@example.com", updated.Email)
	}
	if updated.PasswordHash != "hash1" {
		t.Error("profile update must not touch the password hash")
	}
}

func TestRefreshTokenHashLifecycle(t *testing.T) {
	us := setupUserTestDB(t)

	created, err := us.Create("alice", nil, "hash1")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := us.SetRefreshTokenHash(created.ID, "rt-hash-1"); err != nil {
		t.Fatalf("set refresh token hash: %v", err)
	}
	u, err := us.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.RefreshTokenHash == nil || *u.RefreshTokenHash != "rt-hash-1" {
		t.Fatalf("refresh token hash = %v, want rt-hash-1", u.RefreshTokenHash)
	}
	if !u.Authenticated() {
		t.Error("expected user to be authenticated")
	}

	if err := us.ClearRefreshTokenHash(created.ID); err != nil {
		t.Fatalf("clear refresh token hash: %v", err)
	}
	u, err = us.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.RefreshTokenHash != nil {
		t.Error("expected refresh token hash to be cleared")
	}

	// Clearing twice must be a no-op, not an error.
	if err := us.ClearRefreshTokenHash(created.ID); err != nil {
		t.Fatalf("clear refresh token hash again: %v", err)
	}
}

func TestRotateRefreshTokenHash(t *testing.T) {
	us := setupUserTestDB(t)

	created, err := us.Create("alice", nil, "hash1")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := us.SetRefreshTokenHash(created.ID, "rt-hash-1"); err != nil {
		t.Fatalf("set refresh token hash: %v", err)
	}

	ok, err := us.RotateRefreshTokenHash(created.ID, "rt-hash-1", "rt-hash-2")
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if !ok {
		t.Fatal("expected rotation to succeed")
	}

	// The old value no longer matches, so a second rotation loses.
	ok, err = us.RotateRefreshTokenHash(created.ID, "rt-hash-1", "rt-hash-3")
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if ok {
		t.Fatal("expected stale rotation to fail")
	}

	u, err := us.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.RefreshTokenHash == nil || *u.RefreshTokenHash != "rt-hash-2" {
		t.Errorf("refresh token hash = %v, want rt-hash-2", u.RefreshTokenHash)
	}
}
