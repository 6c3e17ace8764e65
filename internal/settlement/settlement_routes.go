package settlement

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
	periods := r.Group("/settlements")
	periods.Use(middleware.AuthMiddleware())
	periods.Use(middleware.ContextLogger(logger))
	{
		periods.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "settlement", "read"),
			handler.GetAll,
		)

		periods.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "settlement", "read"),
			handler.GetById,
		)

		periods.GET("/:id/summary",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "settlement", "read"),
			handler.Summary,
		)

		periods.POST("",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "settlement", "create"),
			handler.Create,
		)

		periods.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "settlement", "update"),
			handler.Rename,
		)

		periods.POST("/:id/close",
			middleware.RateLimitByUser(0.2, 1),
			middleware.RBACAuthorize(rbacService, "settlement", "close"),
			middleware.Idempotency(rdb),
			handler.Close,
		)

		periods.POST("/:id/reopen",
			middleware.RateLimitByUser(0.2, 1),
			middleware.RBACAuthorize(rbacService, "settlement", "reopen"),
			middleware.Idempotency(rdb),
			handler.Reopen,
		)

		periods.DELETE("/:id",
			middleware.RateLimitByUser(0.2, 1),
			middleware.RBACAuthorize(rbacService, "settlement", "delete"),
			handler.Delete,
		)
	}
}
