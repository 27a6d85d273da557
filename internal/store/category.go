package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/mathom/internal/model"
)

type CategoryStore struct {
	db *sql.DB
}

func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func scanCategory(scanner interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	err := scanner.Scan(&c.ID, &c.UserID, &c.Name, &c.MonthlyLimitCents, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const categoryCols = `id, user_id, name, monthly_limit_cents, created_at, updated_at`

func (s *CategoryStore) Create(userID int64, name string, monthlyLimitCents int64) (*model.Category, error) {
	result, err := s.db.Exec(
		`INSERT INTO categories (user_id, name, monthly_limit_cents) VALUES (?, ?, ?)`,
		userID, name, monthlyLimitCents,
	)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(userID, id)
}

func (s *CategoryStore) GetByID(userID, id int64) (*model.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryCols+` FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *CategoryStore) ListByUser(userID int64) ([]model.Category, error) {
	rows, err := s.db.Query(`SELECT `+categoryCols+` FROM categories WHERE user_id = ? ORDER BY name ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (s *CategoryStore) Update(userID, id int64, name string, monthlyLimitCents int64) (*model.Category, error) {
	_, err := s.db.Exec(
		`UPDATE categories SET name = ?, monthly_limit_cents = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		name, monthlyLimitCents, time.Now().UTC(), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return s.GetByID(userID, id)
}

func (s *CategoryStore) Delete(userID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
