package handler

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wb-go/wbf/ginext"
)

func NewRouter(notifyHandler *NotifyHandler) *ginext.Engine {
	router := ginext.New("release")
	router.Use(MetricsMiddleware)

	router.POST("/api/v1/notifications", notifyHandler.EnqueueNotification)
	router.GET("/api/v1/notifications/:id/result", notifyHandler.GetResult)
	router.GET("/api/v1/notifications/:id/attempts", notifyHandler.ListAttempts)
	router.GET("/api/v1/queue/stats", notifyHandler.GetStats)

	router.GET("/metrics", func(c *ginext.Context) {
		promhttp.Handler().ServeHTTP(c.Writer, c.Request)
	})
	return router
}
