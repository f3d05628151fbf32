package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers auth, profile and favorites routes.
func RegisterRoutes(g *gin.RouterGroup, h *UserHandler, authMiddleware gin.HandlerFunc) {
	// Public Routes
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	// Authenticated Routes
	me := g.Group("/me")
	me.Use(authMiddleware)
	{
		me.GET("", h.Me)
		me.PATCH("", h.UpdateMe)
		me.GET("/favorites", h.ListFavorites)
		me.PUT("/favorites/:id", h.AddFavorite)
		me.DELETE("/favorites/:id", h.RemoveFavorite)
	}
}
