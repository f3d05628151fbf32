package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers file routes. Reads are public so listing images can be embedded.
func RegisterRoutes(r gin.IRouter, handler *Handler, authMiddleware, providerMiddleware gin.HandlerFunc) {
	group := r.Group("/files")

	group.GET("/:id", handler.ServeFile)
	group.GET("/:id/info", handler.Info)
	group.GET("/:id/thumbnail", handler.ServeThumbnail)

	group.POST("", authMiddleware, providerMiddleware, handler.Upload)
	group.DELETE("/:id", authMiddleware, providerMiddleware, handler.Delete)
}
