package project

import (
	"github.com/jamkie/appneoconcepto-sub000/internal/middleware"
	"github.com/jamkie/appneoconcepto-sub000/internal/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	logger *zap.Logger,
) {
	projects := r.Group("/projects")
	projects.Use(middleware.AuthMiddleware())
	projects.Use(middleware.ContextLogger(logger))
	{
		projects.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "project", "read"),
			handler.GetAll,
		)

		projects.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "project", "read"),
			handler.GetById,
		)

		projects.GET("/:id/budget",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "project", "read"),
			handler.GetBudget,
		)

		projects.POST("",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "project", "create"),
			handler.Create,
		)

		projects.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "project", "update"),
			handler.Update,
		)

		projects.DELETE("/:id",
			middleware.RateLimitByUser(0.2, 1),
			middleware.RBACAuthorize(rbacService, "project", "delete"),
			handler.Delete,
		)
	}
}
