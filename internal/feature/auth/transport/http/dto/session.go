package dto

import (
	"market_backend/internal/feature/auth/domain/entity"
	"market_backend/internal/feature/auth/usecase"
)

// UserRes is the public part of an identity.
type UserRes struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SessionRes describes the caller's session state.
// Redirect is the role's default screen once signed in.
type SessionRes struct {
	Status   string      `json:"status"`
	User     *UserRes    `json:"user,omitempty"`
	Profile  *ProfileRes `json:"profile,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

// NewSessionRes converts a session state.
func NewSessionRes(st usecase.State) SessionRes {
	res := SessionRes{Status: st.Status.String()}
	if st.Session == nil {
		return res
	}
	res.User = &UserRes{ID: st.Session.Identity.ID, Email: st.Session.Identity.Email}
	res.Profile = NewProfileRes(st.Session.Profile)
	if st.Status == usecase.StatusSignedIn {
		res.Redirect = st.Session.Role().DefaultRoute()
	}
	return res
}

// SignupRes is returned after a successful sign-up.
type SignupRes struct {
	Message string  `json:"message"`
	User    UserRes `json:"user"`
}

// NewSignupRes converts the created identity.
func NewSignupRes(identity *entity.Identity) SignupRes {
	return SignupRes{
		Message: "account created, please sign in",
		User:    UserRes{ID: identity.ID, Email: identity.Email},
	}
}
