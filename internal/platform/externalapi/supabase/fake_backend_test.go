package supabase

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"market_backend/internal/platform/externalapi/supabase/dto"
	"market_backend/internal/platform/token"
)

const (
	testAPIKey    = "anon-key"
	testJWTSecret = "jwt-secret"
)

// fakeBackend is an in-process stand-in for the hosted auth and storage APIs.
type fakeBackend struct {
	t      *testing.T
	server *httptest.Server

	mu        sync.Mutex
	users     map[string]fakeUser // by email
	refresh   map[string]string   // refresh token -> email
	objects   map[string][]byte   // bucket/path -> data
	requests  []*http.Request
	logoutErr int
}

type fakeUser struct {
	id       string
	password string
	meta     dto.UserMetadata
	email    string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	f := &fakeBackend{
		t:       t,
		users:   map[string]fakeUser{},
		refresh: map[string]string{},
		objects: map[string][]byte{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/v1/signup", f.signup)
	mux.HandleFunc("POST /auth/v1/token", f.token)
	mux.HandleFunc("POST /auth/v1/logout", f.logout)
	mux.HandleFunc("GET /auth/v1/user", f.getUser)
	mux.HandleFunc("PUT /auth/v1/user", f.updateUser)
	mux.HandleFunc("POST /storage/v1/object/{bucket}/{path...}", f.upload)
	mux.HandleFunc("GET /storage/v1/bucket", f.buckets)

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Clone(r.Context()))
		f.mu.Unlock()
		if r.Header.Get("apikey") != testAPIKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid API key"})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeBackend) client() *Client {
	return NewClient(Config{
		BaseURL:   f.server.URL,
		APIKey:    testAPIKey,
		Timeout:   5 * time.Second,
		JWTSecret: testJWTSecret,
	}, f.server.Client(), nil)
}

func (f *fakeBackend) lastRequest() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(f.t, f.requests)
	return f.requests[len(f.requests)-1]
}

func (f *fakeBackend) setLogoutErr(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutErr = status
}

func (f *fakeBackend) seedObject(key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
}

func (f *fakeBackend) object(key string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[key]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// signAccessToken issues an HS256 token shaped like the hosted backend's.
func signAccessToken(t *testing.T, u fakeUser) string {
	t.Helper()
	now := time.Now()
	claims := token.Claims{
		Email:        u.email,
		UserMetadata: token.UserMetadata{Role: u.meta.Role, Name: u.meta.Name},
		Role:         "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func (f *fakeBackend) userJSON(u fakeUser) dto.User {
	return dto.User{ID: u.id, Email: u.email, UserMetadata: u.meta}
}

func (f *fakeBackend) session(u fakeUser) dto.TokenResponse {
	at := signAccessToken(f.t, u)
	rt := "rt-" + u.id + "-" + time.Now().Format("150405.000000000")
	f.refresh[rt] = u.email
	user := f.userJSON(u)
	return dto.TokenResponse{
		AccessToken:  at,
		TokenType:    "bearer",
		ExpiresIn:    3600,
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
		RefreshToken: rt,
		SessionUser:  &user,
	}
}

func (f *fakeBackend) signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignUpRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[req.Email]; ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"code": 422, "error_code": "user_already_exists", "msg": "User already registered"})
		return
	}
	u := fakeUser{id: "user-" + req.Email, password: req.Password, meta: req.Data, email: req.Email}
	f.users[req.Email] = u
	// confirmation required: bare user object
	writeJSON(w, http.StatusOK, f.userJSON(u))
}

func (f *fakeBackend) token(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.URL.Query().Get("grant_type") {
	case "password":
		var req dto.PasswordGrantRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		u, ok := f.users[req.Email]
		if !ok || u.password != req.Password {
			writeJSON(w, http.StatusBadRequest, map[string]any{"code": 400, "error_code": "invalid_credentials", "msg": "Invalid login credentials"})
			return
		}
		writeJSON(w, http.StatusOK, f.session(u))
	case "refresh_token":
		var req dto.RefreshGrantRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		email, ok := f.refresh[req.RefreshToken]
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant", "error_description": "Invalid Refresh Token: Refresh Token Not Found"})
			return
		}
		delete(f.refresh, req.RefreshToken)
		writeJSON(w, http.StatusOK, f.session(f.users[email]))
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "unsupported grant_type"})
	}
}

func (f *fakeBackend) logout(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logoutErr != 0 {
		writeJSON(w, f.logoutErr, map[string]string{"msg": "failure"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeBackend) bearerUser(r *http.Request) (fakeUser, bool) {
	claims, err := token.NewParser(testJWTSecret).Parse(r.Header.Get("Authorization")[len("Bearer "):])
	if err != nil {
		return fakeUser{}, false
	}
	u, ok := f.users[claims.Email]
	return u, ok
}

func (f *fakeBackend) getUser(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.bearerUser(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "invalid JWT"})
		return
	}
	writeJSON(w, http.StatusOK, f.userJSON(u))
}

func (f *fakeBackend) updateUser(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.bearerUser(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "invalid JWT"})
		return
	}
	var req dto.UpdateUserRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Email != "" {
		if _, taken := f.users[req.Email]; taken {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error_code": "email_exists", "msg": "A user with this email address has already been registered"})
			return
		}
		delete(f.users, u.email)
		u.email = req.Email
	}
	if req.Data != nil {
		u.meta = *req.Data
	}
	f.users[u.email] = u
	writeJSON(w, http.StatusOK, f.userJSON(u))
}

func (f *fakeBackend) upload(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("bucket") + "/" + r.PathValue("path")
	data, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.PathValue("bucket") != "product-images" {
		writeJSON(w, http.StatusNotFound, map[string]string{"statusCode": "404", "error": "Bucket not found", "message": "Bucket not found"})
		return
	}
	if _, exists := f.objects[key]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"statusCode": "409", "error": "Duplicate", "message": "The resource already exists"})
		return
	}
	f.objects[key] = data
	writeJSON(w, http.StatusOK, dto.UploadResponse{Key: key})
}

func (f *fakeBackend) buckets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []dto.Bucket{{ID: "product-images", Name: "product-images", Public: true}})
}
