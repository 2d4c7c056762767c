package entity

import (
	"strings"
	"time"
)

// Metadata is the user metadata embedded in an identity at sign-up.
type Metadata struct {
	Role string `json:"role,omitempty"`
	Name string `json:"name,omitempty"`
}

// Identity is the authenticated account record issued by the hosted auth service.
// The application only ever holds a read-only copy.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Metadata  Metadata  `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

// MetadataRole returns the role embedded at sign-up, defaulting to customer
// when it is missing or unknown.
func (i Identity) MetadataRole() Role {
	r, err := ParseRole(i.Metadata.Role)
	if err != nil {
		return RoleCustomer
	}
	return r
}

// DisplayName returns the metadata name, or the local part of the email.
func (i Identity) DisplayName() string {
	if n := strings.TrimSpace(i.Metadata.Name); n != "" {
		return n
	}
	local, _, _ := strings.Cut(i.Email, "@")
	return local
}
