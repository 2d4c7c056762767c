package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"market_backend/internal/feature/auth/domain/entity"
)

// RetryPolicy bounds the sign-in profile lookup.
type RetryPolicy struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryPolicy returns 3 attempts starting at 250ms and doubling up to 2s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:     3,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2,
	}
}

// ProfileResolver guarantees a Profile exists for a signed-in Identity.
// Creation races with a backend-side trigger are absorbed by an insert that
// does nothing on conflict followed by a re-read.
type ProfileResolver struct {
	profiles ProfileRepository
	policy   RetryPolicy
}

// NewProfileResolver creates a ProfileResolver.
func NewProfileResolver(profiles ProfileRepository, policy RetryPolicy) *ProfileResolver {
	if policy.Attempts <= 0 {
		policy.Attempts = 1
	}
	if policy.Multiplier < 1 {
		policy.Multiplier = 2
	}
	return &ProfileResolver{profiles: profiles, policy: policy}
}

// Resolve fetches the profile for identity, creating it from the identity's
// metadata when missing. Calling it repeatedly yields the same row.
func (r *ProfileResolver) Resolve(ctx context.Context, identity entity.Identity) (*entity.Profile, error) {
	if identity.ID == "" {
		return nil, fmt.Errorf("%w: identity has no id", ErrProfileNotFound)
	}

	p, err := r.profiles.FindByID(ctx, identity.ID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	candidate := &entity.Profile{
		ID:    identity.ID,
		Name:  identity.DisplayName(),
		Email: identity.Email,
		Role:  identity.MetadataRole(),
	}
	created, err := r.profiles.CreateIfAbsent(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileCreateFailed, err)
	}
	if created {
		slog.Info("profile created from identity metadata", "user_id", identity.ID, "role", candidate.Role)
	}

	return r.profiles.FindByID(ctx, identity.ID)
}

// ResolveWithRetry runs Resolve under the bounded exponential backoff policy.
// It is used on the sign-in path, where the profile row may still be in flight.
func (r *ProfileResolver) ResolveWithRetry(ctx context.Context, identity entity.Identity) (*entity.Profile, error) {
	var (
		profile *entity.Profile
		attempt int
	)
	op := func() error {
		attempt++
		p, err := r.Resolve(ctx, identity)
		if err != nil {
			slog.Warn("profile resolution failed", "user_id", identity.ID, "attempt", attempt, "error", err)
			return err
		}
		profile = p
		return nil
	}

	if err := backoff.Retry(op, r.backOff(ctx)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w after %d attempts: %w", ErrProfileUnavailable, attempt, err)
	}
	return profile, nil
}

func (r *ProfileResolver) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.InitialDelay
	b.MaxInterval = r.policy.MaxDelay
	b.Multiplier = r.policy.Multiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.policy.Attempts-1)), ctx)
}
