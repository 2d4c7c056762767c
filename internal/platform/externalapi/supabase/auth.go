package supabase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"market_backend/internal/feature/auth/domain/entity"
	"market_backend/internal/feature/auth/usecase"
	"market_backend/internal/platform/externalapi/supabase/dto"
	"market_backend/internal/platform/token"
)

// AuthClient は認証APIのusecase.AuthService実装です。
// 自身の呼び出しが成功するたびに認証状態の変更イベントを購読者へ通知します。
type AuthClient struct {
	client *Client
	tokens *token.Parser

	mu     sync.RWMutex
	subs   map[int]func(usecase.AuthEvent)
	nextID int
}

// AuthClientがAuthServiceを実装していることをコンパイル時に検証します。
var _ usecase.AuthService = (*AuthClient)(nil)

// NewAuthClient creates an AuthClient.
func NewAuthClient(client *Client) *AuthClient {
	return &AuthClient{
		client: client,
		tokens: token.NewParser(client.cfg.JWTSecret),
		subs:   make(map[int]func(usecase.AuthEvent)),
	}
}

// OnAuthStateChange registers fn and returns a func that removes it.
func (a *AuthClient) OnAuthStateChange(fn func(usecase.AuthEvent)) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.subs[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.subs, id)
		a.mu.Unlock()
	}
}

func (a *AuthClient) emit(ev usecase.AuthEvent) {
	a.mu.RLock()
	fns := make([]func(usecase.AuthEvent), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// SignInWithPassword exchanges credentials for a session.
func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*usecase.AuthSession, error) {
	req, err := newJSONRequest(http.MethodPost, "/auth/v1/token", dto.PasswordGrantRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	req.query = url.Values{"grant_type": {"password"}}

	var res dto.TokenResponse
	if err := a.client.do(ctx, req, &res); err != nil {
		return nil, authError(err)
	}
	as, err := a.toAuthSession(res)
	if err != nil {
		return nil, err
	}

	a.emit(usecase.AuthEvent{Type: usecase.AuthEventSignedIn, UserID: as.Identity.ID, Identity: &as.Identity})
	return as, nil
}

// SignUp creates an account with metadata embedded in the identity.
func (a *AuthClient) SignUp(ctx context.Context, email, password string, metadata entity.Metadata) (*entity.Identity, error) {
	req, err := newJSONRequest(http.MethodPost, "/auth/v1/signup", dto.SignUpRequest{
		Email:    email,
		Password: password,
		Data:     dto.UserMetadata{Role: metadata.Role, Name: metadata.Name},
	})
	if err != nil {
		return nil, err
	}

	var res dto.SignUpResponse
	if err := a.client.do(ctx, req, &res); err != nil {
		return nil, authError(err)
	}

	user := res.User
	if res.SessionUser != nil {
		user = *res.SessionUser
	}
	if user.ID == "" {
		return nil, errors.New("sign-up response carried no user")
	}
	identity := toIdentity(user)
	return &identity, nil
}

// SignOut revokes the refresh tokens behind accessToken on the backend.
// An already invalid token counts as signed out.
func (a *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	userID := ""
	if claims, err := a.tokens.Parse(accessToken); err == nil {
		userID = claims.Subject
	}

	req, _ := newJSONRequest(http.MethodPost, "/auth/v1/logout", nil)
	req.bearer = accessToken
	err := a.client.do(ctx, req, nil)

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			slog.Debug("sign-out with stale token", "status", apiErr.Status)
			err = nil
		}
	}
	if err != nil {
		return authError(err)
	}

	if userID != "" {
		a.emit(usecase.AuthEvent{Type: usecase.AuthEventSignedOut, UserID: userID})
	}
	return nil
}

// GetUser returns the identity behind accessToken.
func (a *AuthClient) GetUser(ctx context.Context, accessToken string) (*entity.Identity, error) {
	req, _ := newJSONRequest(http.MethodGet, "/auth/v1/user", nil)
	req.bearer = accessToken

	var user dto.User
	if err := a.client.do(ctx, req, &user); err != nil {
		return nil, authError(err)
	}
	identity := toIdentity(user)
	return &identity, nil
}

// RefreshSession exchanges a refresh token for a new session.
func (a *AuthClient) RefreshSession(ctx context.Context, refreshToken string) (*usecase.AuthSession, error) {
	req, err := newJSONRequest(http.MethodPost, "/auth/v1/token", dto.RefreshGrantRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}
	req.query = url.Values{"grant_type": {"refresh_token"}}

	var res dto.TokenResponse
	if err := a.client.do(ctx, req, &res); err != nil {
		return nil, authError(err)
	}
	as, err := a.toAuthSession(res)
	if err != nil {
		return nil, err
	}

	a.emit(usecase.AuthEvent{Type: usecase.AuthEventTokenRefreshed, UserID: as.Identity.ID, Identity: &as.Identity})
	return as, nil
}

// UpdateUser changes the email and/or metadata of the identity behind accessToken.
func (a *AuthClient) UpdateUser(ctx context.Context, accessToken string, update usecase.UserUpdate) (*entity.Identity, error) {
	body := dto.UpdateUserRequest{}
	if update.Email != nil {
		body.Email = *update.Email
	}
	if update.Metadata != nil {
		body.Data = &dto.UserMetadata{Role: update.Metadata.Role, Name: update.Metadata.Name}
	}
	req, err := newJSONRequest(http.MethodPut, "/auth/v1/user", body)
	if err != nil {
		return nil, err
	}
	req.bearer = accessToken

	var user dto.User
	if err := a.client.do(ctx, req, &user); err != nil {
		return nil, authError(err)
	}
	identity := toIdentity(user)
	// 確認待ちの新しいアドレスをプロフィールへ反映する
	if user.NewEmail != "" {
		identity.Email = user.NewEmail
	}

	a.emit(usecase.AuthEvent{Type: usecase.AuthEventUserUpdated, UserID: identity.ID, Identity: &identity})
	return &identity, nil
}

func (a *AuthClient) toAuthSession(res dto.TokenResponse) (*usecase.AuthSession, error) {
	if res.AccessToken == "" {
		return nil, errors.New("token response carried no access token")
	}

	var identity entity.Identity
	if res.SessionUser != nil {
		identity = toIdentity(*res.SessionUser)
	} else {
		// Opaque or unverifiable tokens leave the identity empty; the session
		// store then reads it back with GetUser.
		if claims, err := a.tokens.Parse(res.AccessToken); err == nil {
			identity = entity.Identity{
				ID:       claims.Subject,
				Email:    claims.Email,
				Metadata: entity.Metadata{Role: claims.UserMetadata.Role, Name: claims.UserMetadata.Name},
			}
		}
	}

	return &usecase.AuthSession{
		Identity:     identity,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    a.expiry(res),
	}, nil
}

// expiry prefers expires_at, then expires_in, then the token's exp claim.
func (a *AuthClient) expiry(res dto.TokenResponse) time.Time {
	switch {
	case res.ExpiresAt > 0:
		return time.Unix(res.ExpiresAt, 0)
	case res.ExpiresIn > 0:
		return time.Now().Add(time.Duration(res.ExpiresIn) * time.Second)
	}
	if claims, err := a.tokens.Parse(res.AccessToken); err == nil {
		return claims.ExpiresAtTime()
	}
	return time.Time{}
}

func toIdentity(u dto.User) entity.Identity {
	return entity.Identity{
		ID:        u.ID,
		Email:     u.Email,
		Metadata:  entity.Metadata{Role: u.UserMetadata.Role, Name: u.UserMetadata.Name},
		CreatedAt: u.CreatedAt,
	}
}

// authError converts backend rejections (4xx) to *usecase.AuthRejectedError.
// Transport failures and 5xx are returned as is.
func authError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return &usecase.AuthRejectedError{Status: apiErr.Status, Code: apiErr.Code, Message: apiErr.Message}
	}
	return err
}
