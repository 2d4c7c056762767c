package usecase

import (
	"context"
	"time"

	"market_backend/internal/feature/auth/domain/entity"
)

// AuthEventType names an auth-state change.
type AuthEventType string

const (
	AuthEventSignedIn       AuthEventType = "SIGNED_IN"
	AuthEventSignedOut      AuthEventType = "SIGNED_OUT"
	AuthEventTokenRefreshed AuthEventType = "TOKEN_REFRESHED"
	AuthEventUserUpdated    AuthEventType = "USER_UPDATED"
)

// AuthEvent is delivered to OnAuthStateChange subscribers.
type AuthEvent struct {
	Type     AuthEventType
	UserID   string
	Identity *entity.Identity // set for SIGNED_IN, TOKEN_REFRESHED and USER_UPDATED
}

// AuthSession is a token pair issued by the auth service.
type AuthSession struct {
	Identity     entity.Identity
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// UserUpdate is a partial identity update sent to the auth service.
type UserUpdate struct {
	Email    *string
	Metadata *entity.Metadata
}

// AuthService is the hosted authentication boundary.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (platform/supabase).
type AuthService interface {
	// SignInWithPassword verifies credentials and issues tokens.
	SignInWithPassword(ctx context.Context, email, password string) (*AuthSession, error)
	// SignUp creates an account, embedding metadata in the identity.
	SignUp(ctx context.Context, email, password string, metadata entity.Metadata) (*entity.Identity, error)
	// SignOut invalidates the refresh tokens behind accessToken.
	SignOut(ctx context.Context, accessToken string) error
	// GetUser returns the identity behind accessToken.
	GetUser(ctx context.Context, accessToken string) (*entity.Identity, error)
	// RefreshSession exchanges a refresh token for a new token pair.
	RefreshSession(ctx context.Context, refreshToken string) (*AuthSession, error)
	// UpdateUser changes identity attributes.
	UpdateUser(ctx context.Context, accessToken string, update UserUpdate) (*entity.Identity, error)
	// OnAuthStateChange registers fn for auth-state notifications and returns an unsubscribe func.
	OnAuthStateChange(fn func(AuthEvent)) (unsubscribe func())
}
