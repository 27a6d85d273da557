package model

import "time"

type User struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`

	// Secret material — never serialized.
	PasswordHash     string  `json:"-"`
	RefreshTokenHash *string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Authenticated reports whether the user currently has an active session,
// i.e. a stored refresh-token fingerprint.
func (u *User) Authenticated() bool {
	return u.RefreshTokenHash != nil && *u.RefreshTokenHash != ""
}
