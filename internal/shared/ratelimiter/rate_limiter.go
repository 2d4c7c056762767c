// Package ratelimiter は外部API呼び出しの頻度を制限します。
package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	// Wait は呼び出しが許可されるまで待機します。ctxがキャンセルされるとエラーを返します。
	Wait(ctx context.Context) error
}

// RateLimiter はトークンバケット方式のレートリミッターです。
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter は1秒あたりperSecond回、バースト上限perSecondのRateLimiterを生成します。
// perSecondが0以下の場合は制限しないリミッターを返します。
func NewRateLimiter(perSecond int) RateLimiterInterface {
	if perSecond <= 0 {
		return unlimited{}
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond)}
}

// Wait はトークンが得られるまで待機します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}

type unlimited struct{}

func (unlimited) Wait(ctx context.Context) error { return ctx.Err() }
