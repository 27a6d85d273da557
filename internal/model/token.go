package model

// TokenPair bundles a short-lived access token with the longer-lived refresh
// token minted alongside it. Neither is ever persisted raw; only the refresh
// token's hash reaches storage.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
