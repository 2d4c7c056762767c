package guard

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"market_backend/internal/feature/auth/domain/entity"
	"market_backend/internal/feature/auth/usecase"
)

const (
	ctxKeyState     = "session_state"
	ctxKeySessionID = "session_id"
)

// SessionRestorer loads the caller's session. *usecase.SessionStore implements it.
type SessionRestorer interface {
	Restore(ctx context.Context, sessionID string) (usecase.State, error)
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// LoadSession restores the caller's session once per request and stores the
// resulting State in the gin context. The session id is read from the cookie,
// then from an "Authorization: Bearer" header. A stale cookie is cleared.
func LoadSession(store SessionRestorer, cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, fromCookie := sessionIDFromRequest(c, cookie.Name)
		c.Set(ctxKeySessionID, sid)

		state, err := store.Restore(c.Request.Context(), sid)
		if err != nil {
			slog.Error("failed to restore session", "error", err, "path", c.FullPath())
			state = usecase.State{Status: usecase.StatusUnresolved}
		}
		if fromCookie && state.Status == usecase.StatusSignedOut {
			ClearSessionCookie(c, cookie)
		}
		c.Set(ctxKeyState, state)
		c.Next()
	}
}

// Require serves the route only to signed-in callers whose role is in allow.
// It runs on every request, so a role change takes effect immediately.
func Require(allow ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := Evaluate(StateFrom(c), allow)
		switch d.Outcome {
		case Authorized:
			c.Next()
		case Unresolved:
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session is still loading"})
		case Unauthorized:
			deny(c, http.StatusUnauthorized, "sign in required", d.Redirect)
		case Forbidden:
			slog.Info("route forbidden for role", "path", c.FullPath(), "role", SessionFrom(c).Role(), "redirect", d.Redirect)
			deny(c, http.StatusForbidden, "not allowed for your role", d.Redirect)
		}
	}
}

// deny redirects browser navigations and answers API callers with JSON.
func deny(c *gin.Context, status int, msg, redirect string) {
	if wantsHTML(c.Request) {
		c.Redirect(http.StatusFound, redirect)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "redirect": redirect})
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// StateFrom returns the State stored by LoadSession, or signed out.
func StateFrom(c *gin.Context) usecase.State {
	if v, ok := c.Get(ctxKeyState); ok {
		if st, ok := v.(usecase.State); ok {
			return st
		}
	}
	return usecase.State{Status: usecase.StatusSignedOut}
}

// SessionFrom returns the caller's session. Behind Require it is never nil.
func SessionFrom(c *gin.Context) *entity.Session {
	return StateFrom(c).Session
}

// SessionIDFrom returns the raw session id sent by the caller, if any.
func SessionIDFrom(c *gin.Context) string {
	return c.GetString(ctxKeySessionID)
}

func sessionIDFromRequest(c *gin.Context, cookieName string) (sid string, fromCookie bool) {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v, true
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")), false
	}
	return "", false
}

// SetSessionCookie issues the HttpOnly session cookie.
func SetSessionCookie(c *gin.Context, cfg CookieConfig, sessionID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.Name, sessionID, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, cfg CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.Name, "", -1, "/", "", cfg.Secure, true)
}
