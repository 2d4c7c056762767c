package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market_backend/internal/feature/auth/domain/entity"
	"market_backend/internal/feature/auth/transport/guard"
	"market_backend/internal/feature/auth/usecase"
)

// mockSessionUsecase is a mock implementation of the SessionUsecase interface.
type mockSessionUsecase struct {
	SignUpFunc        func(ctx context.Context, email, password string, role entity.Role, name string) (*entity.Identity, error)
	SignInFunc        func(ctx context.Context, email, password string, client usecase.ClientInfo) (*entity.Session, error)
	SignOutFunc       func(ctx context.Context, sessionID string) error
	UpdateProfileFunc func(ctx context.Context, sessionID string, patch entity.ProfilePatch) (*entity.Profile, error)
}

func (m *mockSessionUsecase) SignUp(ctx context.Context, email, password string, role entity.Role, name string) (*entity.Identity, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, email, password, role, name)
	}
	return &entity.Identity{ID: "new-user", Email: email}, nil
}

func (m *mockSessionUsecase) SignIn(ctx context.Context, email, password string, client usecase.ClientInfo) (*entity.Session, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password, client)
	}
	return nil, errors.New("login failed") // Default: failure
}

func (m *mockSessionUsecase) SignOut(ctx context.Context, sessionID string) error {
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, sessionID)
	}
	return nil
}

func (m *mockSessionUsecase) UpdateProfile(ctx context.Context, sessionID string, patch entity.ProfilePatch) (*entity.Profile, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, sessionID, patch)
	}
	return nil, errors.New("not implemented")
}

// stubRestorer returns a fixed state for any session id.
type stubRestorer struct {
	state usecase.State
}

func (s stubRestorer) Restore(context.Context, string) (usecase.State, error) {
	return s.state, nil
}

var testCookie = guard.CookieConfig{Name: "market_session", TTL: time.Hour}

func newTestRouter(uc SessionUsecase, state usecase.State) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(uc, testCookie)
	r := gin.New()
	r.Use(guard.LoadSession(stubRestorer{state: state}, testCookie))
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	r.GET("/session", h.Session)
	r.GET("/profile", guard.Require(entity.AllRoles...), h.GetProfile)
	r.PATCH("/profile", guard.Require(entity.AllRoles...), h.UpdateProfile)
	return r
}

func signedInState(role entity.Role) usecase.State {
	return usecase.State{
		Status: usecase.StatusSignedIn,
		Session: &entity.Session{
			ID:       "sid-1",
			UserID:   "u1",
			Identity: entity.Identity{ID: "u1", Email: "alice@example.com"},
			Profile:  &entity.Profile{ID: "u1", Name: "Alice", Email: "alice@example.com", Role: role},
		},
	}
}

func doJSON(r *gin.Engine, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthHandler_Signup(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    gin.H
		mockSignUpFunc func(ctx context.Context, email, password string, role entity.Role, name string) (*entity.Identity, error)
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "success: artisan registration",
			requestBody:    gin.H{"email": "bob@example.com", "password": "password123", "role": "artisan", "name": "Bob"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "failure: invalid email address",
			requestBody:    gin.H{"email": "invalid-email", "password": "password123", "role": "customer", "name": "A"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Key: 'SignupReq.Email' Error:Field validation for 'Email' failed on the 'email' tag",
		},
		{
			name:           "failure: short password",
			requestBody:    gin.H{"email": "a@example.com", "password": "short", "role": "customer", "name": "A"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Key: 'SignupReq.Password' Error:Field validation for 'Password' failed on the 'min' tag",
		},
		{
			name:           "failure: unknown role",
			requestBody:    gin.H{"email": "a@example.com", "password": "password123", "role": "admin", "name": "A"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Key: 'SignupReq.Role' Error:Field validation for 'Role' failed on the 'oneof' tag",
		},
		{
			name:        "failure: already registered",
			requestBody: gin.H{"email": "alice@example.com", "password": "password123", "role": "customer", "name": "Alice"},
			mockSignUpFunc: func(ctx context.Context, email, password string, role entity.Role, name string) (*entity.Identity, error) {
				return nil, &usecase.AuthRejectedError{Status: 422, Code: "user_already_exists", Message: "User already registered"}
			},
			expectedStatus: http.StatusConflict,
			expectedError:  usecase.ErrAlreadyRegistered.Error(),
		},
		{
			name:        "failure: profile insert failed",
			requestBody: gin.H{"email": "c@example.com", "password": "password123", "role": "farmer", "name": "C"},
			mockSignUpFunc: func(ctx context.Context, email, password string, role entity.Role, name string) (*entity.Identity, error) {
				return nil, usecase.ErrProfileCreateFailed
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  usecase.ErrProfileCreateFailed.Error(),
		},
		{
			name:        "failure: rate limited by auth service",
			requestBody: gin.H{"email": "d@example.com", "password": "password123", "role": "customer", "name": "D"},
			mockSignUpFunc: func(ctx context.Context, email, password string, role entity.Role, name string) (*entity.Identity, error) {
				return nil, &usecase.AuthRejectedError{Status: 429, Code: "over_email_send_rate_limit", Message: "email rate limit exceeded"}
			},
			expectedStatus: http.StatusTooManyRequests,
			expectedError:  "email rate limit exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			uc := &mockSessionUsecase{SignUpFunc: func(ctx context.Context, email, password string, role entity.Role, name string) (*entity.Identity, error) {
				called = true
				if tt.mockSignUpFunc != nil {
					return tt.mockSignUpFunc(ctx, email, password, role, name)
				}
				return &entity.Identity{ID: "new-user", Email: email}, nil
			}}
			r := newTestRouter(uc, usecase.State{})

			w := doJSON(r, http.MethodPost, "/signup", tt.requestBody, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeBody(t, w)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
			} else {
				assert.Equal(t, "new-user", body["user"].(map[string]any)["id"])
			}
			if w.Code == http.StatusBadRequest {
				assert.False(t, called, "usecase must not be called on invalid input")
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success sets cookie and role redirect", func(t *testing.T) {
		var gotClient usecase.ClientInfo
		uc := &mockSessionUsecase{SignInFunc: func(ctx context.Context, email, password string, client usecase.ClientInfo) (*entity.Session, error) {
			gotClient = client
			return signedInState(entity.RoleFarmer).Session, nil
		}}
		r := newTestRouter(uc, usecase.State{})

		w := doJSON(r, http.MethodPost, "/login", gin.H{"email": "alice@example.com", "password": "password123"}, nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "/dashboard/business", body["redirect"])
		assert.Equal(t, "signed_in", body["status"])
		assert.NotEmpty(t, gotClient.IPAddress)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "market_session", cookies[0].Name)
		assert.Equal(t, "sid-1", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("invalid credentials return the service message", func(t *testing.T) {
		uc := &mockSessionUsecase{SignInFunc: func(ctx context.Context, email, password string, client usecase.ClientInfo) (*entity.Session, error) {
			return nil, &usecase.AuthRejectedError{Status: 400, Code: "invalid_credentials", Message: "Invalid login credentials"}
		}}
		r := newTestRouter(uc, usecase.State{})

		w := doJSON(r, http.MethodPost, "/login", gin.H{"email": "alice@example.com", "password": "wrong"}, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid login credentials", decodeBody(t, w)["error"])
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("profile unavailable", func(t *testing.T) {
		uc := &mockSessionUsecase{SignInFunc: func(ctx context.Context, email, password string, client usecase.ClientInfo) (*entity.Session, error) {
			return nil, usecase.ErrProfileUnavailable
		}}
		r := newTestRouter(uc, usecase.State{})

		w := doJSON(r, http.MethodPost, "/login", gin.H{"email": "alice@example.com", "password": "password123"}, nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, usecase.ErrProfileUnavailable.Error(), decodeBody(t, w)["error"])
	})

	t.Run("malformed body", func(t *testing.T) {
		r := newTestRouter(&mockSessionUsecase{}, usecase.State{})

		w := doJSON(r, http.MethodPost, "/login", gin.H{"email": "not-an-email"}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unexpected error", func(t *testing.T) {
		r := newTestRouter(&mockSessionUsecase{}, usecase.State{})

		w := doJSON(r, http.MethodPost, "/login", gin.H{"email": "alice@example.com", "password": "password123"}, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "login failed", decodeBody(t, w)["error"])
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("revokes session from cookie and clears it", func(t *testing.T) {
		var revoked string
		uc := &mockSessionUsecase{SignOutFunc: func(ctx context.Context, sessionID string) error {
			revoked = sessionID
			return nil
		}}
		r := newTestRouter(uc, signedInState(entity.RoleCustomer))

		w := doJSON(r, http.MethodPost, "/logout", nil, &http.Cookie{Name: "market_session", Value: "sid-1"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "sid-1", revoked)
		cookies := w.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, "", cookies[len(cookies)-1].Value)
		assert.Equal(t, "/", decodeBody(t, w)["redirect"])
	})

	t.Run("backend failure", func(t *testing.T) {
		uc := &mockSessionUsecase{SignOutFunc: func(ctx context.Context, sessionID string) error {
			return errors.New("db down")
		}}
		r := newTestRouter(uc, signedInState(entity.RoleCustomer))

		w := doJSON(r, http.MethodPost, "/logout", nil, &http.Cookie{Name: "market_session", Value: "sid-1"})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestAuthHandler_Session(t *testing.T) {
	t.Run("signed out", func(t *testing.T) {
		r := newTestRouter(&mockSessionUsecase{}, usecase.State{Status: usecase.StatusSignedOut})

		w := doJSON(r, http.MethodGet, "/session", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "signed_out", body["status"])
		assert.NotContains(t, body, "user")
	})

	t.Run("signed in customer", func(t *testing.T) {
		r := newTestRouter(&mockSessionUsecase{}, signedInState(entity.RoleCustomer))

		w := doJSON(r, http.MethodGet, "/session", nil, nil)

		body := decodeBody(t, w)
		assert.Equal(t, "signed_in", body["status"])
		assert.Equal(t, "/dashboard/customer", body["redirect"])
		assert.Equal(t, "Alice", body["profile"].(map[string]any)["name"])
	})
}

func TestAuthHandler_Profile(t *testing.T) {
	t.Run("get requires sign in", func(t *testing.T) {
		r := newTestRouter(&mockSessionUsecase{}, usecase.State{Status: usecase.StatusSignedOut})

		w := doJSON(r, http.MethodGet, "/profile", nil, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("get returns cached profile", func(t *testing.T) {
		r := newTestRouter(&mockSessionUsecase{}, signedInState(entity.RoleArtisan))

		w := doJSON(r, http.MethodGet, "/profile", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "artisan", body["role"])
		assert.Equal(t, "alice@example.com", body["email"])
	})

	tests := []struct {
		name           string
		requestBody    gin.H
		err            error
		expectedStatus int
	}{
		{"success", gin.H{"name": "Alicia"}, nil, http.StatusOK},
		{"invalid email", gin.H{"email": "nope"}, nil, http.StatusBadRequest},
		{"blank name", gin.H{"name": " "}, usecase.ErrInvalidProfile, http.StatusBadRequest},
		{"profile missing", gin.H{"name": "A"}, usecase.ErrProfileNotFound, http.StatusNotFound},
		{"session revoked", gin.H{"name": "A"}, usecase.ErrSessionRevoked, http.StatusUnauthorized},
		{"email taken", gin.H{"email": "bob@example.com"}, &usecase.AuthRejectedError{Status: 422, Code: "email_exists", Message: "email already in use"}, http.StatusConflict},
		{"unexpected", gin.H{"name": "A"}, errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run("patch "+tt.name, func(t *testing.T) {
			var gotPatch entity.ProfilePatch
			uc := &mockSessionUsecase{UpdateProfileFunc: func(ctx context.Context, sessionID string, patch entity.ProfilePatch) (*entity.Profile, error) {
				gotPatch = patch
				if tt.err != nil {
					return nil, tt.err
				}
				return &entity.Profile{ID: "u1", Name: *patch.Name, Role: entity.RoleCustomer}, nil
			}}
			r := newTestRouter(uc, signedInState(entity.RoleCustomer))

			w := doJSON(r, http.MethodPatch, "/profile", tt.requestBody, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "Alicia", decodeBody(t, w)["name"])
				require.NotNil(t, gotPatch.Name)
				assert.Nil(t, gotPatch.Email)
			}
		})
	}
}
