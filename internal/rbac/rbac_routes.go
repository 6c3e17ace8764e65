package rbac

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the enforcement endpoint outside /api/v1.
// It is meant for service-to-service checks, not the public API.
func RegisterRoutes(r *gin.Engine, handler *Handler) {
	group := r.Group("/rbac")
	{
		group.POST("/enforce", handler.Enforce)
	}
}
