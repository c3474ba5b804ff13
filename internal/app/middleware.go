package app

import (
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"github.com/urbantwin/citytwin-backend/internal/http/middleware"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

type Middleware struct {
	Auth   *middleware.AuthMiddleware
	Global []gin.HandlerFunc
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services, rdb *goredis.Client) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, services.Auth),
		Global: []gin.HandlerFunc{
			middleware.RequestLogger(log),
			middleware.RateLimit(log, rdb, cfg.RateLimitPerMinute),
		},
	}
}
