// Package service implements the credential and session lifecycle: signup,
// signin, refresh rotation, logout, and profile management. Handlers stay
// thin; every rule about hashes and tokens lives here.
package service

import (
	"fmt"
	"time"

	"github.com/dukerupert/mathom/internal/hash"
	"github.com/dukerupert/mathom/internal/model"
	"github.com/dukerupert/mathom/internal/store"
	"github.com/dukerupert/mathom/internal/token"
)

type SessionService struct {
	users      *store.UserStore
	prefs      *store.PreferencesStore
	hasher     *hash.Hasher
	issuer     *token.Issuer
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewSessionService(users *store.UserStore, prefs *store.PreferencesStore, hasher *hash.Hasher, issuer *token.Issuer, accessTTL, refreshTTL time.Duration) *SessionService {
	return &SessionService{
		users:      users,
		prefs:      prefs,
		hasher:     hasher,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Signup registers a new account. It hands out no tokens; the caller signs
// in separately, so a fresh account has no session to revoke.
func (s *SessionService) Signup(username string, email *string, password string) (*model.User, error) {
	exists, err := s.users.UsernameExists(username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict
	}
	if email != nil {
		exists, err := s.users.EmailExists(*email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrConflict
		}
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(username, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Signin verifies the password and starts a fresh session, replacing any
// existing one. All failure modes return ErrUnauthorized.
func (s *SessionService) Signin(username, password string) (*model.User, model.TokenPair, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, model.TokenPair{}, err
	}
	if user == nil {
		return nil, model.TokenPair{}, ErrUnauthorized
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, model.TokenPair{}, ErrUnauthorized
	}

	pair, err := s.startSession(user)
	if err != nil {
		return nil, model.TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new pair and rotates the
// stored fingerprint. A token that fails verification, does not match the
// stored fingerprint, or loses the rotation race is rejected uniformly.
func (s *SessionService) Refresh(refreshToken string) (*model.User, model.TokenPair, error) {
	identity, err := s.issuer.Verify(refreshToken)
	if err != nil {
		return nil, model.TokenPair{}, ErrUnauthorized
	}

	user, err := s.users.GetByID(identity.UserID)
	if err != nil {
		return nil, model.TokenPair{}, err
	}
	if user == nil || !user.Authenticated() {
		return nil, model.TokenPair{}, ErrUnauthorized
	}

	storedHash := *user.RefreshTokenHash
	if !s.hasher.Verify(refreshToken, storedHash) {
		return nil, model.TokenPair{}, ErrUnauthorized
	}

	pair, newHash, err := s.mintPair(user)
	if err != nil {
		return nil, model.TokenPair{}, err
	}

	rotated, err := s.users.RotateRefreshTokenHash(user.ID, storedHash, newHash)
	if err != nil {
		return nil, model.TokenPair{}, err
	}
	if !rotated {
		// A concurrent refresh rotated first; this pair is never handed out.
		return nil, model.TokenPair{}, ErrUnauthorized
	}
	return user, pair, nil
}

// Logout ends the session. Logging out an existing account with no active
// session succeeds; a deleted account gets ErrUnauthorized.
func (s *SessionService) Logout(userID int64) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUnauthorized
	}
	return s.users.ClearRefreshTokenHash(userID)
}

func (s *SessionService) GetProfile(userID int64) (*model.User, *model.Preferences, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrNotFound
	}
	prefs, err := s.prefs.GetByUserID(userID)
	if err != nil {
		return nil, nil, err
	}
	if prefs == nil {
		// No row yet; the profile still reads as empty preferences.
		prefs = &model.Preferences{UserID: userID, Frontend: map[string]any{}, Backend: map[string]any{}}
	}
	return user, prefs, nil
}

// UpdateProfile merges the provided fields into the profile; a nil pointer
// leaves that field alone, and an empty email clears the stored address.
// Credentials and session state are untouched.
func (s *SessionService) UpdateProfile(userID int64, username, email *string) (*model.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	newUsername := user.Username
	if username != nil && *username != user.Username {
		exists, err := s.users.UsernameExists(*username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrConflict
		}
		newUsername = *username
	}

	newEmail := user.Email
	if email != nil {
		if *email == "" {
			newEmail = nil
		} else {
			if user.Email == nil || *email != *user.Email {
				exists, err := s.users.EmailExists(*email)
				if err != nil {
					return nil, err
				}
				if exists {
					return nil, ErrConflict
				}
			}
			newEmail = email
		}
	}

	return s.users.UpdateProfile(userID, newUsername, newEmail)
}

func (s *SessionService) UpdatePreferences(userID int64, frontend, backend map[string]any) (*model.Preferences, error) {
	prefs, err := s.prefs.Merge(userID, frontend, backend)
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

// startSession mints a pair and stores the refresh fingerprint
// unconditionally, displacing any previous session.
func (s *SessionService) startSession(user *model.User) (model.TokenPair, error) {
	pair, refreshHash, err := s.mintPair(user)
	if err != nil {
		return model.TokenPair{}, err
	}
	if err := s.users.SetRefreshTokenHash(user.ID, refreshHash); err != nil {
		return model.TokenPair{}, err
	}
	return pair, nil
}

func (s *SessionService) mintPair(user *model.User) (model.TokenPair, string, error) {
	access, err := s.issuer.Issue(user.ID, user.Username, s.accessTTL)
	if err != nil {
		return model.TokenPair{}, "", err
	}
	refresh, err := s.issuer.Issue(user.ID, user.Username, s.refreshTTL)
	if err != nil {
		return model.TokenPair{}, "", err
	}
	refreshHash, err := s.hasher.Hash(refresh)
	if err != nil {
		return model.TokenPair{}, "", err
	}
	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, refreshHash, nil
}
