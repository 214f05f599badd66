package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/khoahotran/media-gateway/adapters/event"
	"github.com/khoahotran/media-gateway/adapters/media_storage"
	"github.com/khoahotran/media-gateway/adapters/persistence"
	mediaUC "github.com/khoahotran/media-gateway/internal/application/usecase/media"
	"github.com/khoahotran/media-gateway/internal/config"
	"github.com/khoahotran/media-gateway/internal/domain/media"
	"github.com/khoahotran/media-gateway/pkg/logger"
)

// The worker re-renders the gallery page after every media event so the first visitor
// after a mutation does not pay for the remote listing.
func main() {
	fmt.Println("Starting Media Gateway Worker...")

	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Redis", err)
	}
	defer redisClient.Close()

	// A worker-local memory store is always empty and would cache an empty gallery.
	store, err := media_storage.NewSharedMediaStore(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize media store", err)
	}

	pageCache := persistence.NewRedisPageCache(redisClient, cfg.Cache.KeyPrefix, cfg.Cache.PageTTL)
	gateway := mediaUC.NewGateway(store, pageCache, nil, nil, mediaUC.SettingsFromConfig(cfg), appLogger)
	galleryUseCase := mediaUC.NewGalleryUseCase(gateway, pageCache, appLogger)

	// Kafka Consumer
	consumer, err := event.NewMediaEventConsumer(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot init Kafka consumer", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = consumer.Run(ctx, func(ctx context.Context, evt media.Event) error {
		if _, err := galleryUseCase.Warm(ctx); err != nil {
			return err
		}
		appLogger.Info("Gallery cache warmed", zap.String("public_id", evt.PublicID))
		return nil
	})
	if err != nil {
		appLogger.Error("Worker stopped", err)
	}
}
