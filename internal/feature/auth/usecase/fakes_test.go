package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"market_backend/internal/feature/auth/domain/entity"
)

// mockAuthService is a mock implementation of the AuthService interface.
// Unset funcs fall back to benign defaults. Subscribers registered through
// OnAuthStateChange can be triggered with emit.
type mockAuthService struct {
	SignInWithPasswordFunc func(ctx context.Context, email, password string) (*AuthSession, error)
	SignUpFunc             func(ctx context.Context, email, password string, metadata entity.Metadata) (*entity.Identity, error)
	SignOutFunc            func(ctx context.Context, accessToken string) error
	GetUserFunc            func(ctx context.Context, accessToken string) (*entity.Identity, error)
	RefreshSessionFunc     func(ctx context.Context, refreshToken string) (*AuthSession, error)
	UpdateUserFunc         func(ctx context.Context, accessToken string, update UserUpdate) (*entity.Identity, error)

	mu          sync.Mutex
	subscribers []func(AuthEvent)
}

func (m *mockAuthService) SignInWithPassword(ctx context.Context, email, password string) (*AuthSession, error) {
	if m.SignInWithPasswordFunc != nil {
		return m.SignInWithPasswordFunc(ctx, email, password)
	}
	return nil, &AuthRejectedError{Status: 400, Code: "invalid_credentials", Message: "Invalid login credentials"}
}

func (m *mockAuthService) SignUp(ctx context.Context, email, password string, metadata entity.Metadata) (*entity.Identity, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, email, password, metadata)
	}
	return &entity.Identity{ID: "new-user", Email: email, Metadata: metadata}, nil
}

func (m *mockAuthService) SignOut(ctx context.Context, accessToken string) error {
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, accessToken)
	}
	return nil
}

func (m *mockAuthService) GetUser(ctx context.Context, accessToken string) (*entity.Identity, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, accessToken)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) RefreshSession(ctx context.Context, refreshToken string) (*AuthSession, error) {
	if m.RefreshSessionFunc != nil {
		return m.RefreshSessionFunc(ctx, refreshToken)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) UpdateUser(ctx context.Context, accessToken string, update UserUpdate) (*entity.Identity, error) {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, accessToken, update)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) OnAuthStateChange(fn func(AuthEvent)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := len(m.subscribers)
	m.subscribers = append(m.subscribers, fn)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.subscribers[idx] = nil
	}
}

func (m *mockAuthService) emit(ev AuthEvent) {
	m.mu.Lock()
	subs := append([]func(AuthEvent){}, m.subscribers...)
	m.mu.Unlock()
	for _, fn := range subs {
		if fn != nil {
			fn(ev)
		}
	}
}

// memoryProfiles is an in-memory ProfileRepository.
type memoryProfiles struct {
	mu         sync.Mutex
	rows       map[string]entity.Profile
	findErrs   []error // consumed one per FindByID call before touching rows
	createErr  error
	findCalls  int
	createHits int
}

func newMemoryProfiles() *memoryProfiles {
	return &memoryProfiles{rows: make(map[string]entity.Profile)}
}

func (m *memoryProfiles) FindByID(_ context.Context, id string) (*entity.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	if len(m.findErrs) > 0 {
		err := m.findErrs[0]
		m.findErrs = m.findErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	p, ok := m.rows[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &p, nil
}

func (m *memoryProfiles) CreateIfAbsent(_ context.Context, p *entity.Profile) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createHits++
	if m.createErr != nil {
		return false, m.createErr
	}
	if _, ok := m.rows[p.ID]; ok {
		return false, nil
	}
	m.rows[p.ID] = *p
	return true, nil
}

func (m *memoryProfiles) Update(_ context.Context, id string, patch entity.ProfilePatch) (*entity.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.AvatarURL != nil {
		p.AvatarURL = patch.AvatarURL
	}
	m.rows[id] = p
	return &p, nil
}

// memorySessions is an in-memory SessionRepository.
type memorySessions struct {
	mu   sync.Mutex
	rows map[string]entity.Session

	revokeAllCalls int
}

func newMemorySessions() *memorySessions {
	return &memorySessions{rows: make(map[string]entity.Session)}
}

func (m *memorySessions) Create(_ context.Context, s *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.ID] = *s
	return nil
}

func (m *memorySessions) FindByID(_ context.Context, id string) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (m *memorySessions) FindByUserID(_ context.Context, userID string) ([]*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Session
	for _, s := range m.rows {
		if s.UserID == userID && s.IsValid() {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memorySessions) Update(_ context.Context, s *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[s.ID]; !ok {
		return ErrSessionNotFound
	}
	m.rows[s.ID] = *s
	return nil
}

func (m *memorySessions) Revoke(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return ErrSessionNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	m.rows[id] = s
	return nil
}

func (m *memorySessions) RevokeAllByUserID(ctx context.Context, userID string) error {
	m.mu.Lock()
	m.revokeAllCalls++
	m.mu.Unlock()
	sessions, _ := m.FindByUserID(ctx, userID)
	for _, s := range sessions {
		_ = m.Revoke(ctx, s.ID)
	}
	return nil
}

func (m *memorySessions) DeleteExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.rows {
		if s.IsExpired() {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

func (m *memorySessions) CountByUserID(ctx context.Context, userID string) (int64, error) {
	sessions, _ := m.FindByUserID(ctx, userID)
	return int64(len(sessions)), nil
}

func (m *memorySessions) DeleteOldestByUserID(ctx context.Context, userID string) error {
	sessions, _ := m.FindByUserID(ctx, userID)
	if len(sessions) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, sessions[0].ID)
	return nil
}

// fastPolicy keeps retry tests quick.
func fastPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, InitialDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond, Multiplier: 2}
}
