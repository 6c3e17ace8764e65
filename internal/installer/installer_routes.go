package installer

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
	installers := r.Group("/installers")
	installers.Use(middleware.AuthMiddleware())
	installers.Use(middleware.ContextLogger(logger))
	{
		installers.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "installer", "read"),
			handler.GetAll,
		)

		installers.GET("/options",
			middleware.RateLimitByUser(5, 20),
			middleware.RBACAuthorize(rbacService, "installer", "read"),
			handler.GetOptions,
		)

		installers.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "installer", "read"),
			handler.GetById,
		)

		installers.POST("",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "installer", "create"),
			handler.Create,
		)

		installers.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "installer", "update"),
			handler.Update,
		)

		installers.POST("/:id/deactivate",
			middleware.RateLimitByUser(0.2, 1),
			middleware.RBACAuthorize(rbacService, "installer", "update"),
			handler.Deactivate,
		)

		installers.POST("/:id/reactivate",
			middleware.RateLimitByUser(0.2, 1),
			middleware.RBACAuthorize(rbacService, "installer", "update"),
			handler.Reactivate,
		)
	}
}
