package advance

import (
	"github.com/jamkie/appneoconcepto-sub000/internal/middleware"
	"github.com/jamkie/appneoconcepto-sub000/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	advances := r.Group("/advances")
	advances.Use(middleware.AuthMiddleware())
	advances.Use(middleware.ContextLogger(logger))
	{
		advances.GET("/installers/:installerId",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "advance", "read"),
			handler.GetInstallerCredit,
		)

		advances.POST("/apply",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "advance", "create"),
			middleware.Idempotency(rdb),
			handler.Apply,
		)
	}
}
