package handler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dukerupert/mathom/internal/database"
	"github.com/dukerupert/mathom/internal/store"
)

func TestIsUniqueViolation(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	us := store.NewUserStore(db)
	if _, err := us.Create("alice", nil, "hash1"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	_, dup := us.Create("alice", nil, "hash2")
	if dup == nil {
		t.Fatal("expected a unique violation")
	}

	if !isUniqueViolation(dup) {
		t.Errorf("driver unique violation not detected: %v", dup)
	}
	if !isUniqueViolation(fmt.Errorf("signup: %w", dup)) {
		t.Error("wrapped unique violation not detected")
	}

	if isUniqueViolation(nil) {
		t.Error("nil is not a violation")
	}
	// Message text alone must not match; only the driver's result code counts.
	if isUniqueViolation(errors.New("UNIQUE constraint failed: users.username")) {
		t.Error("plain error text must not be treated as a violation")
	}
}
