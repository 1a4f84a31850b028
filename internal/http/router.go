package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"classlive/internal/config"
	"classlive/internal/http/controller"
	"classlive/internal/http/middleware"
)

func NewRouter(cfg *config.Config, handler *controller.Handler, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.ZapLogger(logger), middleware.ZapRecovery(logger), otelgin.Middleware(cfg.OTELServiceName))

	router.GET("/health", func(c *gin.Context) {
		c.Status(200)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/notifications", handler.ListNotifications)
		api.POST("/notifications/mark-read", handler.MarkNotificationsRead)
		api.POST("/notifications/dispatch", handler.DispatchNotification)
	}

	internal := router.Group("/internal", middleware.WorkerKey(cfg.WorkerKey, logger))
	{
		internal.POST("/notifications/deliver", handler.DeliverNotification)
	}

	router.GET("/sse/notifications", handler.SSE)
	router.GET("/ws/meetings", handler.Meetings)

	return router
}
