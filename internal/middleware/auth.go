package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/mathom/internal/auth"
	"github.com/dukerupert/mathom/internal/token"
)

const accessCookieName = "access_token"

// RequireAuth verifies the access token and populates AuthContext. The token
// is read from the access_token cookie, or from an Authorization bearer
// header for non-browser clients. Expired and invalid tokens get the same
// response.
func RequireAuth(issuer *token.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := accessTokenFrom(r)
			if raw == "" {
				unauthorized(w)
				return
			}

			identity, err := issuer.Verify(raw)
			if err != nil {
				unauthorized(w)
				return
			}

			ac := auth.AuthContext{
				UserID:   identity.UserID,
				Username: identity.Username,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accessTokenFrom(r *http.Request) string {
	if cookie, err := r.Cookie(accessCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
