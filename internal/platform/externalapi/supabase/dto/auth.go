// Package dto はホスト型バックエンドAPIのリクエスト・レスポンス形式を定義します。
package dto

import "time"

// UserMetadata is the free-form metadata stored on the auth user.
type UserMetadata struct {
	Role string `json:"role,omitempty"`
	Name string `json:"name,omitempty"`
}

// User is the auth user object.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	NewEmail     string       `json:"new_email,omitempty"` // pending address awaiting confirmation
	UserMetadata UserMetadata `json:"user_metadata"`
	CreatedAt    time.Time    `json:"created_at"`
}

// SignUpRequest is the body of POST /auth/v1/signup.
type SignUpRequest struct {
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Data     UserMetadata `json:"data"`
}

// SignUpResponse covers both shapes the endpoint returns:
// a session (auto-confirm enabled) or a bare user (confirmation email sent).
type SignUpResponse struct {
	TokenResponse
	User
}

// PasswordGrantRequest is the body of POST /auth/v1/token?grant_type=password.
type PasswordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshGrantRequest is the body of POST /auth/v1/token?grant_type=refresh_token.
type RefreshGrantRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is a session issued by the token endpoint.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	SessionUser  *User  `json:"user,omitempty"`
}

// UpdateUserRequest is the body of PUT /auth/v1/user.
type UpdateUserRequest struct {
	Email string        `json:"email,omitempty"`
	Data  *UserMetadata `json:"data,omitempty"`
}

// ErrorResponse collects the error fields used across API versions.
type ErrorResponse struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
