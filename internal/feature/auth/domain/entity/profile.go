package entity

import "time"

// Profile is the application-level record of a user's display name and role.
// There is at most one Profile per Identity; its ID is the Identity ID.
type Profile struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255" json:"email"`
	Role      Role      `gorm:"size:20;not null;index" json:"role"`
	AvatarURL *string   `gorm:"size:1024" json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Profile) TableName() string {
	return "profiles"
}

// ProfilePatch is a partial profile update. Nil fields are left untouched.
type ProfilePatch struct {
	Name      *string
	Email     *string
	AvatarURL *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ProfilePatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.AvatarURL == nil
}
