package model

import "time"

// Preferences holds two independent free-form key/value namespaces, one for
// frontend state (theme, layout) and one for backend state. Created empty
// alongside the user; mutated only via shallow merge, never full replace.
type Preferences struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	Frontend  map[string]any `json:"frontend"`
	Backend   map[string]any `json:"backend"`
	UpdatedAt time.Time      `json:"updated_at"`
}
