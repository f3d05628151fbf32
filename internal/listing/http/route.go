package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, providerMiddleware gin.HandlerFunc) {
	group := g.Group("/services")

	// === Public Routes ===
	{
		group.GET("", h.List)
		group.GET("/featured", h.Featured)
		group.GET("/categories", h.Categories)
		group.GET("/:id", h.Get)
	}

	// === Provider Routes ===
	providerGroup := group.Group("")
	providerGroup.Use(authMiddleware, providerMiddleware)
	{
		providerGroup.POST("", h.Create)
		providerGroup.PUT("/:id", h.Update)
		providerGroup.DELETE("/:id", h.Delete)
	}

	g.GET("/provider/services", authMiddleware, providerMiddleware, h.ListMine)
}
