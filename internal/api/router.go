package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the middleware chain and every route
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Logger(logger), Recovery(logger))

	router.GET("/health", h.Health)

	books := router.Group("/api/books")
	{
		books.GET("", h.ListBooks)
		books.POST("", h.CreateBook)
		books.GET("/grouped", h.GroupedBooks)
		books.GET("/:id", h.GetBook)
		books.DELETE("/:id", h.DeleteBook)
		books.POST("/:id/favorite", h.ToggleFavorite)
		books.PUT("/:id/progress", h.UpdateProgress)
		books.PUT("/:id/cover", h.UploadCover)
		books.GET("/:id/cover", h.GetCover)
	}

	router.GET("/api/stats", h.Stats)
	router.POST("/api/persist", h.Persist)

	return router
}
