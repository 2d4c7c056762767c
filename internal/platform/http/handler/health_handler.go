// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check は依存先の疎通確認です。
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Health は /healthz エンドポイントのハンドラーを返します。
// すべてのチェックが成功すれば200、いずれかが失敗すれば503を返します。
// キャッシュは常に無効化します。
func Health(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		switch c.Request.Method {
		case http.MethodOptions:
			c.Status(http.StatusNoContent)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		failed := gin.H{}
		for _, chk := range checks {
			if err := chk.Ping(ctx); err != nil {
				slog.Warn("health check failed", "component", chk.Name, "error", err)
				failed[chk.Name] = err.Error()
			}
		}

		status := http.StatusOK
		body := gin.H{"status": "ok"}
		if len(failed) > 0 {
			status = http.StatusServiceUnavailable
			body = gin.H{"status": "degraded", "failed": failed}
		}

		if c.Request.Method == http.MethodHead {
			c.Status(status)
			return
		}
		c.JSON(status, body)
	}
}

// Index は / で公開ルートの一覧を返します。
func Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "market_backend",
		"routes": gin.H{
			"signup":   "/signup",
			"login":    "/login",
			"products": "/products",
			"session":  "/session",
		},
	})
}
