package http

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the booking endpoints. adminMiddleware runs after
// authMiddleware and rejects non-administrators.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	bookings := g.Group("/bookings", authMiddleware)
	{
		bookings.POST("", h.Create)
		bookings.GET("", h.ListMine)
		bookings.GET("/:id", h.Get)
		bookings.PATCH("/:id/cancel", h.Cancel)
	}

	g.GET("/resources/:id/availability", authMiddleware, h.Availability)

	admin := g.Group("/admin", authMiddleware, adminMiddleware)
	{
		admin.GET("/bookings", h.List)
		admin.PATCH("/bookings/:id/approve", h.Approve)
		admin.PATCH("/bookings/:id/decline", h.Decline)
		admin.GET("/dashboard/stats", h.Stats)
	}
}
