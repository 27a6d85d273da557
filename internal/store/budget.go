package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/mathom/internal/model"
)

type BudgetStore struct {
	db *sql.DB
}

func NewBudgetStore(db *sql.DB) *BudgetStore {
	return &BudgetStore{db: db}
}

func scanBudget(scanner interface{ Scan(...any) error }) (*model.Budget, error) {
	var b model.Budget
	err := scanner.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Month, &b.AmountCents, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

const budgetCols = `id, user_id, category_id, month, amount_cents, created_at, updated_at`

// Upsert sets the budget for one category and month, creating the row on
// first write. Month is "YYYY-MM".
func (s *BudgetStore) Upsert(userID, categoryID int64, month string, amountCents int64) (*model.Budget, error) {
	_, err := s.db.Exec(
		`INSERT INTO budgets (user_id, category_id, month, amount_cents) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, category_id, month) DO UPDATE SET amount_cents = excluded.amount_cents, updated_at = ?`,
		userID, categoryID, month, amountCents, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert budget: %w", err)
	}
	return s.GetByCategoryAndMonth(userID, categoryID, month)
}

func (s *BudgetStore) GetByID(userID, id int64) (*model.Budget, error) {
	row := s.db.QueryRow(`SELECT `+budgetCols+` FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	b, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (s *BudgetStore) GetByCategoryAndMonth(userID, categoryID int64, month string) (*model.Budget, error) {
	row := s.db.QueryRow(
		`SELECT `+budgetCols+` FROM budgets WHERE user_id = ? AND category_id = ? AND month = ?`,
		userID, categoryID, month,
	)
	b, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget by month: %w", err)
	}
	return b, nil
}

func (s *BudgetStore) ListByMonth(userID int64, month string) ([]model.Budget, error) {
	rows, err := s.db.Query(
		`SELECT `+budgetCols+` FROM budgets WHERE user_id = ? AND month = ? ORDER BY category_id ASC`,
		userID, month,
	)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []model.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func (s *BudgetStore) Delete(userID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}
