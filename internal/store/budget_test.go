package store

import (
	"testing"

	"github.com/dukerupert/mathom/internal/database"
	"github.com/dukerupert/mathom/internal/model"
)

func setupBudgetTestDB(t *testing.T) (*BudgetStore, *model.User, *model.Category) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	u, err := NewUserStore(db).Create("alice", nil, "hash1")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	c, err := NewCategoryStore(db).Create(u.ID, "Groceries", 40000)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return NewBudgetStore(db), u, c
}

func TestBudgetUpsert(t *testing.T) {
	bs, u, c := setupBudgetTestDB(t)

	b, err := bs.Upsert(u.ID, c.ID, "2026-08", 40000)
	if err != nil {
		t.Fatalf("upsert budget: %v", err)
	}
	if b.AmountCents != 40000 {
		t.Errorf("amount = %d, want 40000", b.AmountCents)
	}

	// Second upsert for the same month updates in place.
	b2, err := bs.Upsert(u.ID, c.ID, "2026-08", 42000)
	if err != nil {
		t.Fatalf("upsert budget again: %v", err)
	}
	if b2.ID != b.ID {
		t.Errorf("expected same row, got id %d then %d", b.ID, b2.ID)
	}
	if b2.AmountCents != 42000 {
		t.Errorf("amount = %d, want 42000", b2.AmountCents)
	}
}

func TestBudgetListByMonth(t *testing.T) {
	bs, u, c := setupBudgetTestDB(t)

	if _, err := bs.Upsert(u.ID, c.ID, "2026-08", 40000); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := bs.Upsert(u.ID, c.ID, "2026-09", 41000); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	budgets, err := bs.ListByMonth(u.ID, "2026-08")
	if err != nil {
		t.Fatalf("list budgets: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("got %d budgets, want 1", len(budgets))
	}
	if budgets[0].Month != "2026-08" {
		t.Errorf("month = %q, want 2026-08", budgets[0].Month)
	}
}

func TestBudgetDelete(t *testing.T) {
	bs, u, c := setupBudgetTestDB(t)

	b, err := bs.Upsert(u.ID, c.ID, "2026-08", 40000)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := bs.Delete(u.ID, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := bs.GetByID(u.ID, b.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestBudgetDeletedWithCategory(t *testing.T) {
	bs, u, c := setupBudgetTestDB(t)

	b, err := bs.Upsert(u.ID, c.ID, "2026-08", 40000)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Deleting the category cascades to its budgets.
	if _, err := bs.db.Exec(`DELETE FROM categories WHERE id = ?`, c.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	got, err := bs.GetByID(u.ID, b.ID)
	if err != nil {
		t.Fatalf("get budget: %v", err)
	}
	if got != nil {
		t.Error("expected budget to cascade-delete with its category")
	}
}
