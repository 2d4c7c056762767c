package usecase

import (
	"context"

	"market_backend/internal/feature/auth/domain/entity"
)

// SessionRepository abstracts the persistence layer for session entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SessionRepository interface {
	// Create persists a new session to the storage.
	Create(ctx context.Context, session *entity.Session) error

	// FindByID retrieves a session by its opaque ID.
	FindByID(ctx context.Context, id string) (*entity.Session, error)

	// FindByUserID retrieves all active sessions for a given user.
	FindByUserID(ctx context.Context, userID string) ([]*entity.Session, error)

	// Update overwrites the cached identity, profile and tokens of an existing session.
	Update(ctx context.Context, session *entity.Session) error

	// Revoke marks a session as revoked by setting RevokedAt.
	Revoke(ctx context.Context, id string) error

	// RevokeAllByUserID revokes all sessions for a given user.
	RevokeAllByUserID(ctx context.Context, userID string) error

	// DeleteExpired removes expired and revoked sessions from storage.
	// Returns the number of deleted sessions.
	DeleteExpired(ctx context.Context) (int64, error)

	// CountByUserID returns the number of active sessions for a user.
	CountByUserID(ctx context.Context, userID string) (int64, error)

	// DeleteOldestByUserID deletes the oldest session for a user.
	DeleteOldestByUserID(ctx context.Context, userID string) error
}

// ProfileRepository abstracts the profiles table.
type ProfileRepository interface {
	// FindByID returns ErrProfileNotFound when no row exists.
	FindByID(ctx context.Context, id string) (*entity.Profile, error)

	// CreateIfAbsent inserts p unless a row with the same ID exists.
	// created is false when another writer got there first.
	CreateIfAbsent(ctx context.Context, p *entity.Profile) (created bool, err error)

	// Update applies a partial update and returns the stored row.
	Update(ctx context.Context, id string, patch entity.ProfilePatch) (*entity.Profile, error)
}
