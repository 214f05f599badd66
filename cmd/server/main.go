package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/media-gateway/adapters/event"
	httpAdapter "github.com/khoahotran/media-gateway/adapters/http"
	"github.com/khoahotran/media-gateway/adapters/media_storage"
	"github.com/khoahotran/media-gateway/adapters/persistence"
	"github.com/khoahotran/media-gateway/internal/application/service"
	mediaUC "github.com/khoahotran/media-gateway/internal/application/usecase/media"
	"github.com/khoahotran/media-gateway/internal/config"
	"github.com/khoahotran/media-gateway/pkg/logger"
	"github.com/khoahotran/media-gateway/pkg/metrics"
	"github.com/khoahotran/media-gateway/pkg/tracing"
)

func main() {
	fmt.Println("Start Media Gateway API Server...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	shutdownTracing, err := tracing.NewTracerProvider(cfg, appLogger, "media-gateway-api")
	if err != nil {
		appLogger.Fatal("cannot init tracing", err)
	}

	// Initialize dependencies
	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Redis", err)
	}
	defer redisClient.Close()

	store, err := media_storage.NewMediaStore(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize media store", err)
	}

	var publisher service.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	} else {
		appLogger.Warn("Kafka brokers not configured, media events disabled")
	}

	observer, err := metrics.NewPrometheusObserver("media_gateway", nil)
	if err != nil {
		appLogger.Fatal("cannot register metrics", err)
	}

	// Use Cases
	pageCache := persistence.NewRedisPageCache(redisClient, cfg.Cache.KeyPrefix, cfg.Cache.PageTTL)
	gateway := mediaUC.NewGateway(store, pageCache, publisher, observer, mediaUC.SettingsFromConfig(cfg), appLogger)
	galleryUseCase := mediaUC.NewGalleryUseCase(gateway, pageCache, appLogger)

	// HTTP Handlers
	mediaHandler := httpAdapter.NewMediaHandler(gateway, cfg.HTTP.MaxUploadBytes, appLogger)
	galleryHandler := httpAdapter.NewGalleryHandler(galleryUseCase, appLogger)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AllowOrigins: cfg.HTTP.AllowOrigins,
		Limiter:      httpAdapter.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst),
	}, mediaHandler, galleryHandler, appLogger)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
	if err := gateway.Drain(shutdownCtx); err != nil {
		appLogger.Error("Media events dropped on shutdown", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		appLogger.Error("Tracer shutdown failed", err)
	}
}
