package dto

import (
	"time"

	"market_backend/internal/feature/auth/domain/entity"
)

// ProfilePatchReq is the body of PATCH /profile. Omitted fields are left unchanged.
type ProfilePatchReq struct {
	Name      *string `json:"name"`
	Email     *string `json:"email" binding:"omitempty,email"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,url"`
}

// ToPatch converts the request to a domain patch.
func (r ProfilePatchReq) ToPatch() entity.ProfilePatch {
	return entity.ProfilePatch{Name: r.Name, Email: r.Email, AvatarURL: r.AvatarURL}
}

// ProfileRes is the profile as shown on the profile screen.
type ProfileRes struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProfileRes converts a domain profile; nil yields nil.
func NewProfileRes(p *entity.Profile) *ProfileRes {
	if p == nil {
		return nil
	}
	return &ProfileRes{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Role:      string(p.Role),
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
