// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"market_backend/internal/api"
	"market_backend/internal/feature/auth/domain/entity"
	"market_backend/internal/feature/auth/transport/guard"
	"market_backend/internal/feature/auth/transport/http/dto"
	"market_backend/internal/feature/auth/usecase"
)

// SessionUsecase はセッション操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type SessionUsecase interface {
	SignUp(ctx context.Context, email, password string, role entity.Role, name string) (*entity.Identity, error)
	SignIn(ctx context.Context, email, password string, client usecase.ClientInfo) (*entity.Session, error)
	SignOut(ctx context.Context, sessionID string) error
	UpdateProfile(ctx context.Context, sessionID string, patch entity.ProfilePatch) (*entity.Profile, error)
}

// AuthHandler は認証とプロフィール操作のHTTPリクエストを処理します。
type AuthHandler struct {
	sessions SessionUsecase
	cookie   guard.CookieConfig
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(sessions SessionUsecase, cookie guard.CookieConfig) *AuthHandler {
	return &AuthHandler{sessions: sessions, cookie: cookie}
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - 登録済みメールアドレスの場合は409を返却し、サインインを促す
// - 成功時は201を返却
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	identity, err := h.sessions.SignUp(c.Request.Context(), req.Email, req.Password, entity.Role(req.Role), req.Name)
	if err != nil {
		slog.Warn("signup failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		switch {
		case errors.Is(err, usecase.ErrAlreadyRegistered):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: usecase.ErrAlreadyRegistered.Error()})
		case errors.Is(err, usecase.ErrWeakPassword), errors.Is(err, usecase.ErrInvalidProfile), errors.Is(err, entity.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		default:
			writeAuthError(c, err, "signup failed")
		}
		return
	}

	slog.Info("user signup successful", "email", req.Email, "role", req.Role, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.NewSignupRes(identity))
}

// Login はユーザーログインAPIエンドポイントを処理します。
// 成功時はセッションCookieを発行し、ロールに応じたダッシュボードへの遷移先を返します。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	sess, err := h.sessions.SignIn(c.Request.Context(), req.Email, req.Password, usecase.ClientInfo{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		slog.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		if errors.Is(err, usecase.ErrProfileUnavailable) {
			c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: usecase.ErrProfileUnavailable.Error()})
			return
		}
		writeAuthError(c, err, "login failed")
		return
	}

	guard.SetSessionCookie(c, h.cookie, sess.ID)
	slog.Info("user login successful", "user_id", sess.UserID, "role", sess.Role(), "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.NewSessionRes(usecase.State{Status: usecase.StatusSignedIn, Session: sess}))
}

// Logout はセッションを終了し、Cookieを削除します。未ログインでも成功します。
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.SignOut(c.Request.Context(), guard.SessionIDFrom(c)); err != nil {
		slog.Error("logout failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "logout failed"})
		return
	}
	guard.ClearSessionCookie(c, h.cookie)
	c.JSON(http.StatusOK, api.RedirectResponse{Message: "signed out", Redirect: "/"})
}

// Session は現在のセッション状態を返します。
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSessionRes(guard.StateFrom(c)))
}

// GetProfile はログイン中のユーザーのプロフィールを返します。
func (h *AuthHandler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewProfileRes(guard.SessionFrom(c).Profile))
}

// UpdateProfile はプロフィールを部分更新します。メールアドレスの変更は認証サービスを経由します。
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req dto.ProfilePatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	sess := guard.SessionFrom(c)
	profile, err := h.sessions.UpdateProfile(c.Request.Context(), sess.ID, req.ToPatch())
	if err != nil {
		slog.Warn("profile update failed", "error", err, "user_id", sess.UserID)
		switch {
		case errors.Is(err, usecase.ErrInvalidProfile):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, usecase.ErrProfileNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, usecase.ErrSessionRevoked), errors.Is(err, usecase.ErrSessionExpired), errors.Is(err, usecase.ErrSessionNotFound):
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: err.Error()})
		default:
			writeAuthError(c, err, "failed to update profile")
		}
		return
	}

	c.JSON(http.StatusOK, dto.NewProfileRes(profile))
}

// writeAuthError maps auth-service rejections to 4xx with their message; anything else is a 500.
func writeAuthError(c *gin.Context, err error, fallback string) {
	var rejected *usecase.AuthRejectedError
	if errors.As(err, &rejected) {
		status := http.StatusBadRequest
		switch {
		case rejected.Status == http.StatusTooManyRequests:
			status = http.StatusTooManyRequests
		case rejected.IsAlreadyRegistered():
			status = http.StatusConflict
		case rejected.IsInvalidCredentials(), rejected.Status == http.StatusUnauthorized:
			status = http.StatusUnauthorized
		}
		c.JSON(status, api.ErrorResponse{Error: rejected.Message})
		return
	}
	if errors.Is(err, usecase.ErrProfileCreateFailed) {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: usecase.ErrProfileCreateFailed.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fallback})
}
