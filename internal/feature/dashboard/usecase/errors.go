package usecase

import "errors"

var (
	// ErrProfileRequired is returned when the caller has no resolved profile.
	ErrProfileRequired = errors.New("profile is required")
	// ErrSectionUnavailable wraps the first failing dashboard section.
	ErrSectionUnavailable = errors.New("dashboard section unavailable")
)
