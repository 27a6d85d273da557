package service

import "errors"

// Error messages are deliberately generic. Signin and refresh failures all
// collapse into ErrUnauthorized so responses never reveal whether a username
// exists or which credential was wrong.
var (
	ErrConflict     = errors.New("username or email already in use")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrNotFound     = errors.New("not found")
)
