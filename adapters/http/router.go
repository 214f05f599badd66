package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/khoahotran/media-gateway/pkg/logger"
)

type RouterConfig struct {
	AllowOrigins []string
	Limiter      *RateLimiter
	// MetricsHandler defaults to the Prometheus default registry.
	MetricsHandler http.Handler
}

func NewRouter(cfg RouterConfig, mediaHandler *MediaHandler, galleryHandler *GalleryHandler, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log), CORSMiddleware(cfg.AllowOrigins), ErrorMiddleware(log))

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	router.GET("/", galleryHandler.ShowGallery)
	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
	router.GET("/metrics", gin.WrapH(metricsHandler))

	api := router.Group("/api")
	{
		media := api.Group("/media")
		{
			media.GET("", mediaHandler.ListMedia)

			mutations := media.Group("")
			if cfg.Limiter != nil {
				mutations.Use(cfg.Limiter.Middleware())
			}
			mutations.POST("", mediaHandler.CreateMedia)
			mutations.PUT("", mediaHandler.UpdateMedia)
			mutations.DELETE("", mediaHandler.DeleteMedia)
		}
	}

	return router
}
