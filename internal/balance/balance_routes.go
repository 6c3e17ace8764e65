package balance

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
	balances := r.Group("/balances")
	balances.Use(middleware.AuthMiddleware())
	balances.Use(middleware.ContextLogger(logger))
	{
		balances.GET("/installers/:installerId",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "balance", "read"),
			handler.GetByInstaller,
		)

		balances.POST("/deductions",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "balance", "create"),
			middleware.Idempotency(rdb),
			handler.ApplyDeduction,
		)
	}
}
