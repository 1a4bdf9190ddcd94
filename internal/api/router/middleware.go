package router

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"resume-analyzer/internal/logger"
	"resume-analyzer/pkg/ratelimit"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
	"github.com/hertz-contrib/keyauth"
)

const (
	// HeaderRequestID 请求ID头
	HeaderRequestID = "X-Request-ID"
	// HeaderAdminKey 管理接口密钥头
	HeaderAdminKey = "X-Admin-Key"
)

var errInvalidAdminKey = errors.New("invalid admin key")

// RequestID 为每个请求分配ID，并把带 request_id 字段的日志记录器放入上下文
func RequestID() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id := string(c.GetHeader(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Response.Header.Set(HeaderRequestID, id)

		l := logger.Logger.With().Str("request_id", id).Logger()
		ctx = l.WithContext(ctx)

		start := time.Now()
		c.Next(ctx)
		l.Info().
			Str("method", string(c.Method())).
			Str("path", string(c.Path())).
			Int("status", c.Response.StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// AdminAuth 校验 X-Admin-Key，没有配置密钥时拒绝所有请求
func AdminAuth(keys []string) app.HandlerFunc {
	allowed := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			allowed = append(allowed, []byte(k))
		}
	}
	return keyauth.New(
		keyauth.WithKeyLookUp("header:"+HeaderAdminKey, ""),
		keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
			for _, k := range allowed {
				if subtle.ConstantTimeCompare(k, []byte(key)) == 1 {
					return true, nil
				}
			}
			return false, errInvalidAdminKey
		}),
		keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
			c.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"error": "未授权访问"})
		}),
	)
}

// RateLimit 令牌桶限流，令牌不足时返回 429
func RateLimit(tb *ratelimit.TokenBucket) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if !tb.Allow() {
			logger.Ctx(ctx).Warn().Str("path", string(c.Path())).Msg("请求被限流")
			c.AbortWithStatusJSON(consts.StatusTooManyRequests, utils.H{"error": "请求过于频繁，请稍后再试"})
			return
		}
		c.Next(ctx)
	}
}
