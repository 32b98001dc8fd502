package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agromarket/internal/interfaces/http/handler"
)

func RegisterRoutes(
	r *gin.Engine,
	outboxHandler *handler.OutboxHandler,
	catalogHandler *handler.CatalogHandler,
	cartHandler *handler.CartHandler,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/offline-orders", outboxHandler.CreateOfflineOrder)
		api.DELETE("/offline-orders/synced", outboxHandler.PurgeSynced)

		api.POST("/sync", outboxHandler.RunSync)
		api.GET("/sync/status", outboxHandler.SyncStatus)

		api.PUT("/products", catalogHandler.ReplaceProducts)
		api.GET("/products", catalogHandler.ListProducts)

		api.POST("/cart", cartHandler.AddLine)
		api.GET("/cart", cartHandler.ListLines)
		api.DELETE("/cart", cartHandler.ClearLines)
	}
}
