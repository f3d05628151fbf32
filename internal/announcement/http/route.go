package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, optionalAuth, authMiddleware, providerMiddleware gin.HandlerFunc) {
	group := g.Group("/announcements")

	// === Public Routes ===
	{
		group.GET("", h.ListPublic)
		group.GET("/:id", optionalAuth, h.Get)
	}

	// === Provider Routes ===
	providerGroup := group.Group("")
	providerGroup.Use(authMiddleware, providerMiddleware)
	{
		providerGroup.POST("", h.Create)
		providerGroup.PUT("/:id", h.Update)
		providerGroup.DELETE("/:id", h.Delete)
	}

	g.GET("/provider/announcements", authMiddleware, providerMiddleware, h.ListMine)
}
