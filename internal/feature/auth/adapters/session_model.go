package adapters

import (
	"time"

	"market_backend/internal/feature/auth/domain/entity"
)

// SessionModel is the GORM model for the sessions table.
// Identity and the resolved profile are cached as JSON columns.
type SessionModel struct {
	ID              string          `gorm:"primaryKey;size:64"`
	UserID          string          `gorm:"index;size:36;not null"`
	Identity        entity.Identity `gorm:"serializer:json"`
	Profile         *entity.Profile `gorm:"serializer:json"`
	AccessToken     string          `gorm:"type:text"`
	RefreshToken    string          `gorm:"size:255"`
	AccessExpiresAt time.Time
	UserAgent       string     `gorm:"size:512"`
	IPAddress       string     `gorm:"size:45"` // IPv6 max length
	CreatedAt       time.Time  `gorm:"not null"`
	ExpiresAt       time.Time  `gorm:"index;not null"`
	RevokedAt       *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}

// ToEntity converts the GORM model to a domain entity.
func (m *SessionModel) ToEntity() *entity.Session {
	return &entity.Session{
		ID:              m.ID,
		UserID:          m.UserID,
		Identity:        m.Identity,
		Profile:         m.Profile,
		AccessToken:     m.AccessToken,
		RefreshToken:    m.RefreshToken,
		AccessExpiresAt: m.AccessExpiresAt,
		UserAgent:       m.UserAgent,
		IPAddress:       m.IPAddress,
		CreatedAt:       m.CreatedAt,
		ExpiresAt:       m.ExpiresAt,
		RevokedAt:       m.RevokedAt,
	}
}

// SessionModelFromEntity converts a domain entity to a GORM model.
func SessionModelFromEntity(s *entity.Session) *SessionModel {
	return &SessionModel{
		ID:              s.ID,
		UserID:          s.UserID,
		Identity:        s.Identity,
		Profile:         s.Profile,
		AccessToken:     s.AccessToken,
		RefreshToken:    s.RefreshToken,
		AccessExpiresAt: s.AccessExpiresAt,
		UserAgent:       s.UserAgent,
		IPAddress:       s.IPAddress,
		CreatedAt:       s.CreatedAt,
		ExpiresAt:       s.ExpiresAt,
		RevokedAt:       s.RevokedAt,
	}
}
