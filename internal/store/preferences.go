package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/mathom/internal/model"
)

type PreferencesStore struct {
	db *sql.DB
}

func NewPreferencesStore(db *sql.DB) *PreferencesStore {
	return &PreferencesStore{db: db}
}

func scanPreferences(scanner interface{ Scan(...any) error }) (*model.Preferences, error) {
	var (
		p                 model.Preferences
		frontend, backend string
	)
	if err := scanner.Scan(&p.ID, &p.UserID, &frontend, &backend, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(frontend), &p.Frontend); err != nil {
		return nil, fmt.Errorf("decode frontend prefs: %w", err)
	}
	if err := json.Unmarshal([]byte(backend), &p.Backend); err != nil {
		return nil, fmt.Errorf("decode backend prefs: %w", err)
	}
	return &p, nil
}

const preferencesCols = `id, user_id, frontend, backend, updated_at`

func (s *PreferencesStore) GetByUserID(userID int64) (*model.Preferences, error) {
	row := s.db.QueryRow(`SELECT `+preferencesCols+` FROM preferences WHERE user_id = ?`, userID)
	p, err := scanPreferences(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return p, nil
}

// Merge overlays the given keys onto the stored namespaces. Only keys
// present in the input change; a nil map leaves that namespace alone. The
// merge is shallow, values replace wholesale.
func (s *PreferencesStore) Merge(userID int64, frontend, backend map[string]any) (*model.Preferences, error) {
	current, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		// Lazily create the row; the foreign key rejects unknown users.
		if _, err := s.db.Exec(`INSERT INTO preferences (user_id) VALUES (?)`, userID); err != nil {
			return nil, fmt.Errorf("create preferences: %w", err)
		}
		current, err = s.GetByUserID(userID)
		if err != nil {
			return nil, err
		}
	}

	for k, v := range frontend {
		current.Frontend[k] = v
	}
	for k, v := range backend {
		current.Backend[k] = v
	}

	fe, err := json.Marshal(current.Frontend)
	if err != nil {
		return nil, fmt.Errorf("encode frontend prefs: %w", err)
	}
	be, err := json.Marshal(current.Backend)
	if err != nil {
		return nil, fmt.Errorf("encode backend prefs: %w", err)
	}

	_, err = s.db.Exec(
		`UPDATE preferences SET frontend = ?, backend = ?, updated_at = ? WHERE user_id = ?`,
		string(fe), string(be), time.Now().UTC(), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update preferences: %w", err)
	}
	return s.GetByUserID(userID)
}
