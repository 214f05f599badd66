package media

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/khoahotran/media-gateway/internal/application/service"
	"github.com/khoahotran/media-gateway/pkg/apperror"
	"github.com/khoahotran/media-gateway/pkg/logger"
)

// GalleryUseCase serves the root page: the folder listing, cached until the next mutation.
type GalleryUseCase struct {
	gateway *Gateway
	cache   service.PageCache
	logger  logger.Logger
}

func NewGalleryUseCase(g *Gateway, c service.PageCache, log logger.Logger) *GalleryUseCase {
	return &GalleryUseCase{gateway: g, cache: c, logger: log}
}

// Render returns the cached body for the root page, rebuilding it on a miss.
func (uc *GalleryUseCase) Render(ctx context.Context) ([]byte, error) {
	body, ok, err := uc.cache.Get(ctx, RootPath)
	if err != nil {
		uc.logger.Warn("Page cache read failed, rendering fresh", zap.Error(err))
	} else if ok {
		return body, nil
	}
	return uc.Warm(ctx)
}

// Warm rebuilds the root page from the remote listing and stores it.
func (uc *GalleryUseCase) Warm(ctx context.Context) ([]byte, error) {
	list, err := uc.gateway.RetrieveAll(ctx)
	if err != nil {
		return nil, apperror.NewUpstream("failed to list media resources", err)
	}

	body, err := json.Marshal(list)
	if err != nil {
		return nil, apperror.NewInternal("failed to encode gallery", err)
	}

	if err := uc.cache.Set(ctx, RootPath, body); err != nil {
		uc.logger.Warn("Page cache write failed", zap.Error(err))
	}
	return body, nil
}
