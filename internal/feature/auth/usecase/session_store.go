package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"market_backend/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8
	// eventTimeout bounds the work done for a single auth-state notification.
	eventTimeout = 5 * time.Second
)

// Status is the resolution state of a caller's session.
type Status int

const (
	// StatusSignedOut means no valid identity is attached to the caller.
	StatusSignedOut Status = iota
	// StatusUnresolved means the identity is known but its profile is not loaded yet.
	StatusUnresolved
	// StatusSignedIn means identity and profile are both available.
	StatusSignedIn
)

func (s Status) String() string {
	switch s {
	case StatusSignedOut:
		return "signed_out"
	case StatusUnresolved:
		return "unresolved"
	case StatusSignedIn:
		return "signed_in"
	default:
		return "unknown"
	}
}

// State is what screens and the route guard observe.
type State struct {
	Status  Status
	Session *entity.Session
}

// ChangeKind names a committed session change.
type ChangeKind string

const (
	ChangeSignedIn        ChangeKind = "signed_in"
	ChangeSignedOut       ChangeKind = "signed_out"
	ChangeIdentityUpdated ChangeKind = "identity_updated"
	ChangeProfileUpdated  ChangeKind = "profile_updated"
)

// Change is delivered to SessionStore observers after each write.
type Change struct {
	Kind      ChangeKind
	SessionID string
	UserID    string
	Session   *entity.Session // nil for ChangeSignedOut
}

// ClientInfo describes the client a session is issued to.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// ProfileEnsurer resolves profiles for identities.
type ProfileEnsurer interface {
	Resolve(ctx context.Context, identity entity.Identity) (*entity.Profile, error)
	ResolveWithRetry(ctx context.Context, identity entity.Identity) (*entity.Profile, error)
}

// StoreOption customises a SessionStore.
type StoreOption func(*SessionStore)

// WithSessionTTL sets how long a session lives.
func WithSessionTTL(ttl time.Duration) StoreOption {
	return func(s *SessionStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxSessionsPerUser caps concurrent sessions per user; 0 disables the cap.
func WithMaxSessionsPerUser(n int) StoreOption {
	return func(s *SessionStore) { s.maxPerUser = n }
}

// WithIDGenerator replaces the session ID generator.
func WithIDGenerator(gen func() (string, error)) StoreOption {
	return func(s *SessionStore) { s.newID = gen }
}

// SessionStore is the single source of truth for who is signed in and what they may do.
// It is the only writer of session records and notifies observers after each write.
// It is safe for concurrent use.
type SessionStore struct {
	auth     AuthService
	resolver ProfileEnsurer
	profiles ProfileRepository
	sessions SessionRepository

	ttl        time.Duration
	maxPerUser int
	newID      func() (string, error)

	mu        sync.RWMutex
	observers map[int]func(Change)
	nextObs   int
}

// NewSessionStore creates a SessionStore.
func NewSessionStore(auth AuthService, resolver ProfileEnsurer, profiles ProfileRepository,
	sessions SessionRepository, opts ...StoreOption) *SessionStore {
	s := &SessionStore{
		auth:       auth,
		resolver:   resolver,
		profiles:   profiles,
		sessions:   sessions,
		ttl:        7 * 24 * time.Hour,
		maxPerUser: 5,
		newID:      newSessionID,
		observers:  make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for change notifications and returns a func that removes it.
func (s *SessionStore) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *SessionStore) notify(c Change) {
	s.mu.RLock()
	fns := make([]func(Change), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}

// Initialize registers the standing subscription to auth-state changes.
// Call it once at application start; the returned func stops the subscription.
func (s *SessionStore) Initialize(ctx context.Context) (stop func()) {
	return s.auth.OnAuthStateChange(func(ev AuthEvent) {
		ectx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventTimeout)
		defer cancel()
		s.handleAuthEvent(ectx, ev)
	})
}

func (s *SessionStore) handleAuthEvent(ctx context.Context, ev AuthEvent) {
	switch ev.Type {
	case AuthEventSignedOut:
		if ev.UserID == "" {
			return
		}
		active, err := s.sessions.FindByUserID(ctx, ev.UserID)
		if err != nil {
			slog.Error("failed to load sessions for sign-out", "user_id", ev.UserID, "error", err)
			return
		}
		if err := s.sessions.RevokeAllByUserID(ctx, ev.UserID); err != nil {
			slog.Error("failed to revoke sessions", "user_id", ev.UserID, "error", err)
			return
		}
		for _, sess := range active {
			s.notify(Change{Kind: ChangeSignedOut, SessionID: sess.ID, UserID: ev.UserID})
		}

	case AuthEventUserUpdated:
		if ev.Identity == nil {
			return
		}
		active, err := s.sessions.FindByUserID(ctx, ev.Identity.ID)
		if err != nil {
			slog.Error("failed to load sessions for identity update", "user_id", ev.Identity.ID, "error", err)
			return
		}
		for _, sess := range active {
			sess.Identity = *ev.Identity
			if p, err := s.resolver.Resolve(ctx, sess.Identity); err == nil {
				sess.Profile = p
			} else {
				slog.Warn("profile refresh after identity update failed", "user_id", sess.UserID, "error", err)
			}
			if err := s.sessions.Update(ctx, sess); err != nil {
				slog.Error("failed to update session identity", "user_id", sess.UserID, "error", err)
				continue
			}
			s.notify(Change{Kind: ChangeIdentityUpdated, SessionID: sess.ID, UserID: sess.UserID, Session: sess})
		}

	case AuthEventSignedIn, AuthEventTokenRefreshed:
		slog.Debug("auth state change", "event", ev.Type, "user_id", ev.UserID)
	}
}

// Restore loads the caller's existing session, if any.
// An expired access token is refreshed; a rejected refresh signs the session out.
// When the profile cannot be loaded the state is Unresolved rather than an error.
func (s *SessionStore) Restore(ctx context.Context, sessionID string) (State, error) {
	signedOut := State{Status: StatusSignedOut}
	if sessionID == "" {
		return signedOut, nil
	}

	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return signedOut, nil
		}
		return State{}, err
	}
	if !sess.IsValid() {
		return signedOut, nil
	}

	if sess.AccessTokenExpired() {
		if err := s.refresh(ctx, sess); err != nil {
			var rejected *AuthRejectedError
			if errors.As(err, &rejected) {
				slog.Info("refresh rejected, signing session out", "user_id", sess.UserID, "reason", rejected.Message)
				if rerr := s.sessions.Revoke(ctx, sess.ID); rerr != nil && !errors.Is(rerr, ErrSessionNotFound) {
					return State{}, rerr
				}
				s.notify(Change{Kind: ChangeSignedOut, SessionID: sess.ID, UserID: sess.UserID})
				return signedOut, nil
			}
			return State{}, err
		}
	}

	if sess.Profile == nil {
		p, err := s.resolver.Resolve(ctx, sess.Identity)
		if err != nil {
			slog.Warn("profile not resolved yet", "user_id", sess.UserID, "error", err)
			return State{Status: StatusUnresolved, Session: sess}, nil
		}
		sess.Profile = p
		if err := s.sessions.Update(ctx, sess); err != nil {
			slog.Warn("failed to cache resolved profile", "user_id", sess.UserID, "error", err)
		}
	}

	return State{Status: StatusSignedIn, Session: sess}, nil
}

func (s *SessionStore) refresh(ctx context.Context, sess *entity.Session) error {
	as, err := s.auth.RefreshSession(ctx, sess.RefreshToken)
	if err != nil {
		return err
	}
	if err := s.completeIdentity(ctx, as); err != nil {
		return err
	}
	sess.Identity = as.Identity
	sess.AccessToken = as.AccessToken
	sess.RefreshToken = as.RefreshToken
	sess.AccessExpiresAt = as.ExpiresAt
	if err := s.sessions.Update(ctx, sess); err != nil {
		return fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}
	return nil
}

// completeIdentity re-reads the identity from the auth service when a token
// response carried no user and the access token could not be decoded.
func (s *SessionStore) completeIdentity(ctx context.Context, as *AuthSession) error {
	if as.Identity.ID != "" {
		return nil
	}
	identity, err := s.auth.GetUser(ctx, as.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to load identity: %w", err)
	}
	as.Identity = *identity
	return nil
}

// SignIn verifies credentials with the auth service, resolves the profile with
// bounded retries and opens a new session. Auth rejections are returned unchanged.
func (s *SessionStore) SignIn(ctx context.Context, email, password string, client ClientInfo) (*entity.Session, error) {
	as, err := s.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.completeIdentity(ctx, as); err != nil {
		return nil, err
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}
	now := time.Now()
	sess := &entity.Session{
		ID:              id,
		UserID:          as.Identity.ID,
		Identity:        as.Identity,
		AccessToken:     as.AccessToken,
		RefreshToken:    as.RefreshToken,
		AccessExpiresAt: as.ExpiresAt,
		UserAgent:       client.UserAgent,
		IPAddress:       client.IPAddress,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.ttl),
	}

	profile, err := s.resolver.ResolveWithRetry(ctx, as.Identity)
	if err != nil {
		return nil, err
	}
	sess.Profile = profile

	s.enforceSessionCap(ctx, sess.UserID)

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	s.notify(Change{Kind: ChangeSignedIn, SessionID: sess.ID, UserID: sess.UserID, Session: sess})
	return sess, nil
}

// enforceSessionCap drops the oldest session once the user reaches the cap.
func (s *SessionStore) enforceSessionCap(ctx context.Context, userID string) {
	if s.maxPerUser <= 0 {
		return
	}
	count, err := s.sessions.CountByUserID(ctx, userID)
	if err != nil {
		slog.Warn("failed to count sessions", "user_id", userID, "error", err)
		return
	}
	for ; count >= int64(s.maxPerUser); count-- {
		if err := s.sessions.DeleteOldestByUserID(ctx, userID); err != nil {
			slog.Warn("failed to delete oldest session", "user_id", userID, "error", err)
			return
		}
	}
}

// SignUp creates an account with role and name embedded as metadata and then
// inserts the matching profile. A half-created account is not rolled back;
// the resolver heals a missing profile at the next sign-in.
func (s *SessionStore) SignUp(ctx context.Context, email, password string, role entity.Role, name string) (*entity.Identity, error) {
	if _, err := entity.ParseRole(string(role)); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: must be at least %d characters long", ErrWeakPassword, minPasswordLength)
	}

	identity, err := s.auth.SignUp(ctx, email, password, entity.Metadata{Role: string(role), Name: name})
	if err != nil {
		var rejected *AuthRejectedError
		if errors.As(err, &rejected) && rejected.IsAlreadyRegistered() {
			return nil, fmt.Errorf("%w: %w", ErrAlreadyRegistered, err)
		}
		return nil, err
	}

	profile := &entity.Profile{ID: identity.ID, Name: name, Email: email, Role: role}
	if _, err := s.profiles.CreateIfAbsent(ctx, profile); err != nil {
		return identity, fmt.Errorf("%w: %w", ErrProfileCreateFailed, err)
	}
	return identity, nil
}

// SignOut ends the session locally, then asks the auth service to revoke its tokens.
// A backend failure is logged; the local session is gone either way.
func (s *SessionStore) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}

	if err := s.sessions.Revoke(ctx, sess.ID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	s.notify(Change{Kind: ChangeSignedOut, SessionID: sess.ID, UserID: sess.UserID})

	if err := s.auth.SignOut(ctx, sess.AccessToken); err != nil {
		slog.Warn("backend sign-out failed", "user_id", sess.UserID, "error", err)
	}
	return nil
}

// UpdateProfile writes patch for the session's user and merges the result into the cached profile.
// An email change goes through the auth service first.
func (s *SessionStore) UpdateProfile(ctx context.Context, sessionID string, patch entity.ProfilePatch) (*entity.Profile, error) {
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.IsRevoked() {
		return nil, ErrSessionRevoked
	}
	if sess.IsExpired() {
		return nil, ErrSessionExpired
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidProfile)
		}
		patch.Name = &name
	}

	emailChanged := false
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email == sess.Identity.Email {
			patch.Email = nil
		} else {
			identity, err := s.auth.UpdateUser(ctx, sess.AccessToken, UserUpdate{Email: &email})
			if err != nil {
				return nil, err
			}
			sess.Identity = *identity
			emailChanged = true
			// The backend may hold the new address until it is confirmed.
			patch.Email = &identity.Email
		}
	}

	if patch.IsEmpty() {
		if sess.Profile != nil {
			return sess.Profile, nil
		}
		return s.resolver.Resolve(ctx, sess.Identity)
	}

	profile, err := s.profiles.Update(ctx, sess.UserID, patch)
	if err != nil {
		return nil, err
	}

	// Every live session of the user carries the cached profile, not only the caller's.
	targets := []*entity.Session{sess}
	others, err := s.sessions.FindByUserID(ctx, sess.UserID)
	if err != nil {
		slog.Warn("failed to load sibling sessions", "user_id", sess.UserID, "error", err)
	}
	for _, o := range others {
		if o.ID != sess.ID {
			targets = append(targets, o)
		}
	}
	for _, target := range targets {
		if emailChanged {
			target.Identity = sess.Identity
		}
		p := *profile
		target.Profile = &p
		if err := s.sessions.Update(ctx, target); err != nil {
			slog.Warn("failed to cache updated profile", "user_id", target.UserID, "session_id", target.ID, "error", err)
			continue
		}
		s.notify(Change{Kind: ChangeProfileUpdated, SessionID: target.ID, UserID: target.UserID, Session: target})
	}
	return profile, nil
}

// newSessionID returns a 64-character hex string.
func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
