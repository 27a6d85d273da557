package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/mathom/internal/model"
)

type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func scanAccount(scanner interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	err := scanner.Scan(&a.ID, &a.UserID, &a.Name, &a.Kind, &a.OpeningBalanceCents, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const accountCols = `id, user_id, name, kind, opening_balance_cents, created_at, updated_at`

func (s *AccountStore) Create(userID int64, name, kind string, openingBalanceCents int64) (*model.Account, error) {
	result, err := s.db.Exec(
		`INSERT INTO accounts (user_id, name, kind, opening_balance_cents) VALUES (?, ?, ?, ?)`,
		userID, name, kind, openingBalanceCents,
	)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(userID, id)
}

// GetByID is scoped to the owner, so one user can never read another's
// accounts by guessing IDs.
func (s *AccountStore) GetByID(userID, id int64) (*model.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountCols+` FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (s *AccountStore) ListByUser(userID int64) ([]model.Account, error) {
	rows, err := s.db.Query(`SELECT `+accountCols+` FROM accounts WHERE user_id = ? ORDER BY name ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func (s *AccountStore) Update(userID, id int64, name, kind string, openingBalanceCents int64) (*model.Account, error) {
	_, err := s.db.Exec(
		`UPDATE accounts SET name = ?, kind = ?, opening_balance_cents = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		name, kind, openingBalanceCents, time.Now().UTC(), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return s.GetByID(userID, id)
}

func (s *AccountStore) Delete(userID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}
