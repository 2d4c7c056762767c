// Package usecase implements the business logic for the auth feature.
package usecase

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAlreadyRegistered is returned when signing up with an email that already has an account.
	// The caller should suggest signing in instead.
	ErrAlreadyRegistered = errors.New("this email is already registered, please sign in instead")

	// ErrInvalidCredentials classifies an auth rejection caused by a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrWeakPassword is returned when a password does not meet the minimum length.
	ErrWeakPassword = errors.New("password too short")

	// ErrInvalidProfile is returned when profile input fails validation.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrProfileNotFound is returned when no profile exists for an identity.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrProfileCreateFailed is returned when a profile row could not be inserted.
	ErrProfileCreateFailed = errors.New("failed to create profile")

	// ErrProfileUnavailable is returned when the resolver exhausts its retry budget.
	ErrProfileUnavailable = errors.New("failed to fetch or create profile")

	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionRevoked is returned when attempting to use a revoked session.
	ErrSessionRevoked = errors.New("session has been revoked")

	// ErrSessionExpired is returned when attempting to use an expired session.
	ErrSessionExpired = errors.New("session has expired")
)

// AuthRejectedError carries the auth service's rejection reason unchanged.
type AuthRejectedError struct {
	Status  int    // HTTP status returned by the auth service
	Code    string // Machine-readable error code, when the service provides one
	Message string // Human-readable reason
}

func (e *AuthRejectedError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth rejected (%d %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("auth rejected (%d): %s", e.Status, e.Message)
}

// IsAlreadyRegistered reports whether the rejection means the email is taken.
func (e *AuthRejectedError) IsAlreadyRegistered() bool {
	switch e.Code {
	case "user_already_exists", "email_exists":
		return true
	}
	return strings.EqualFold(e.Message, "User already registered")
}

// IsInvalidCredentials reports whether the rejection means a wrong email or password.
func (e *AuthRejectedError) IsInvalidCredentials() bool {
	return e.Code == "invalid_credentials" || e.Code == "invalid_grant" ||
		strings.EqualFold(e.Message, "Invalid login credentials")
}

// Is lets errors.Is match the classification sentinels.
func (e *AuthRejectedError) Is(target error) bool {
	switch target {
	case ErrAlreadyRegistered:
		return e.IsAlreadyRegistered()
	case ErrInvalidCredentials:
		return e.IsInvalidCredentials()
	}
	return false
}
