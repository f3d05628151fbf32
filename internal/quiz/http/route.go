package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, optionalAuth, authMiddleware, providerMiddleware gin.HandlerFunc) {
	group := g.Group("/quizzes")

	// === Public Routes ===
	{
		group.GET("", h.List)
		group.GET("/:id", optionalAuth, h.Get)
		group.POST("/:id/submit", h.Submit)
	}

	// === Provider Routes ===
	providerGroup := group.Group("")
	providerGroup.Use(authMiddleware, providerMiddleware)
	{
		providerGroup.POST("", h.Create)
		providerGroup.PUT("/:id", h.Update)
		providerGroup.DELETE("/:id", h.Delete)
	}

	g.GET("/provider/quizzes", authMiddleware, providerMiddleware, h.ListMine)
}
