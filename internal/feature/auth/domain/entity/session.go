package entity

import "time"

// Session is a server-side sign-in bound to an opaque cookie value.
// It caches the identity and profile so screens do not hit the backend on every request.
type Session struct {
	ID              string     `json:"id"`      // Opaque 64-character hex value sent to the browser
	UserID          string     `json:"user_id"` // Identity ID
	Identity        Identity   `json:"identity"`
	Profile         *Profile   `json:"profile,omitempty"` // nil until the profile has been resolved
	AccessToken     string     `json:"access_token"`
	RefreshToken    string     `json:"refresh_token"`
	AccessExpiresAt time.Time  `json:"access_expires_at"`
	UserAgent       string     `json:"user_agent"`
	IPAddress       string     `json:"ip_address"`
	CreatedAt       time.Time  `json:"created_at"`
	ExpiresAt       time.Time  `json:"expires_at"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
}

// IsExpired returns true if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsRevoked returns true if the session has been revoked.
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsValid returns true if the session is neither expired nor revoked.
func (s *Session) IsValid() bool {
	return !s.IsExpired() && !s.IsRevoked()
}

// AccessTokenExpired reports whether the backend access token needs a refresh.
// A small skew avoids handing out a token that dies in flight.
func (s *Session) AccessTokenExpired() bool {
	return !s.AccessExpiresAt.IsZero() && time.Now().Add(30*time.Second).After(s.AccessExpiresAt)
}

// Role returns the cached profile role, or "" when the profile is unresolved.
func (s *Session) Role() Role {
	if s.Profile == nil {
		return ""
	}
	return s.Profile.Role
}
