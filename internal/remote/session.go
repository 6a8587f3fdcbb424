package remote

import "time"

// Session is an authenticated backend session. The access token authorizes
// API and realtime requests; the refresh token mints a new access token when
// the current one expires.
type Session struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Valid reports whether the session's access token is still usable, with a
// small safety margin so a token is not used right at its expiry edge.
func (s *Session) Valid() bool {
	if s == nil || s.AccessToken == "" {
		return false
	}
	return time.Now().Add(30 * time.Second).Before(s.ExpiresAt)
}
