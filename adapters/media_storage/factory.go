package media_storage

import (
	"errors"
	"fmt"

	"github.com/khoahotran/media-gateway/internal/application/service"
	"github.com/khoahotran/media-gateway/internal/config"
	"github.com/khoahotran/media-gateway/pkg/logger"
)

const (
	DriverCloudinary = "cloudinary"
	DriverMemory     = "memory"
)

var ErrProcessLocalDriver = errors.New("memory media driver is local to one process")

// NewMediaStore picks the store named by media.driver.
func NewMediaStore(cfg config.Config, log logger.Logger) (service.MediaStore, error) {
	switch cfg.Media.Driver {
	case "", DriverCloudinary:
		return NewCloudinaryAdapter(cfg, log)
	case DriverMemory:
		log.Warn("Using in-memory media store, uploads are lost on restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown media driver %q", cfg.Media.Driver)
	}
}

// NewSharedMediaStore is NewMediaStore for processes that must see the same images as
// the API server. The memory driver is process-local, so it is rejected.
func NewSharedMediaStore(cfg config.Config, log logger.Logger) (service.MediaStore, error) {
	if cfg.Media.Driver == DriverMemory {
		return nil, ErrProcessLocalDriver
	}
	return NewMediaStore(cfg, log)
}
