package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/mathom/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.RefreshTokenHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, username, email, password_hash, refresh_token_hash, created_at, updated_at`

// Create inserts a user together with an empty preferences row in one
// transaction, so no user ever exists without preferences.
func (s *UserStore) Create(username string, email *string, passwordHash string) (*model.User, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)`,
		username, email, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO preferences (user_id) VALUES (?)`, id); err != nil {
		return nil, fmt.Errorf("insert preferences: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByUsername(username string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

func (s *UserStore) UsernameExists(username string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return n > 0, nil
}

func (s *UserStore) EmailExists(email string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return n > 0, nil
}

// UpdateProfile changes username and email only. Password and token hashes
// have their own dedicated methods and are never touched here.
func (s *UserStore) UpdateProfile(id int64, username string, email *string) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET username = ?, email = ?, updated_at = ? WHERE id = ?`,
		username, email, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetByID(id)
}

// SetRefreshTokenHash unconditionally stores a new refresh token
// fingerprint, replacing whatever session existed before.
func (s *UserStore) SetRefreshTokenHash(id int64, hash string) error {
	_, err := s.db.Exec(
		`UPDATE users SET refresh_token_hash = ?, updated_at = ? WHERE id = ?`,
		hash, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set refresh token hash: %w", err)
	}
	return nil
}

// RotateRefreshTokenHash swaps oldHash for newHash only if oldHash is still
// the stored value. Returns false when the stored hash changed underneath
// us, which means a concurrent refresh already won.
func (s *UserStore) RotateRefreshTokenHash(id int64, oldHash, newHash string) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE users SET refresh_token_hash = ?, updated_at = ? WHERE id = ? AND refresh_token_hash = ?`,
		newHash, time.Now().UTC(), id, oldHash,
	)
	if err != nil {
		return false, fmt.Errorf("rotate refresh token hash: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// ClearRefreshTokenHash ends the user's session. Clearing an already-empty
// hash is not an error.
func (s *UserStore) ClearRefreshTokenHash(id int64) error {
	_, err := s.db.Exec(
		`UPDATE users SET refresh_token_hash = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("clear refresh token hash: %w", err)
	}
	return nil
}
