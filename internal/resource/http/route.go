package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers resource-related routes. Reads need a logged-in
// user; writes additionally pass adminMiddleware.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/resources", authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", adminMiddleware, h.Create)
		group.PATCH("/:id", adminMiddleware, h.Update)
		group.DELETE("/:id", adminMiddleware, h.Delete)
		group.POST("/:id/images", adminMiddleware, h.UploadImage)
	}
}
