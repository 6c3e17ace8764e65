package request

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
	requests := r.Group("/requests")
	requests.Use(middleware.AuthMiddleware())
	requests.Use(middleware.ContextLogger(logger))
	{
		requests.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "request", "read"),
			handler.GetAll,
		)

		requests.GET("/unassigned",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "request", "read"),
			handler.GetUnassigned,
		)

		requests.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "request", "read"),
			handler.GetById,
		)

		requests.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "request", "create"),
			middleware.Idempotency(rdb),
			handler.Submit,
		)

		requests.POST("/:id/approve",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "request", "approve"),
			middleware.Idempotency(rdb),
			handler.Approve,
		)

		requests.POST("/:id/reject",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "request", "approve"),
			handler.Reject,
		)

		requests.POST("/:id/assign",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "request", "update"),
			handler.Assign,
		)

		requests.POST("/:id/remove",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "request", "update"),
			handler.Remove,
		)

		requests.DELETE("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "request", "delete"),
			handler.Delete,
		)
	}
}
