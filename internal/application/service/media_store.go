package service

import (
	"context"

	"github.com/khoahotran/media-gateway/internal/domain/media"
)

// MediaStore is the remote media host. It owns every byte and every identifier.
type MediaStore interface {
	Upload(ctx context.Context, dataURI string, opts media.UploadOptions) (*media.UploadedImage, error)
	ListResources(ctx context.Context, query media.ResourceQuery) (*media.ResourceList, error)
	Destroy(ctx context.Context, publicID string) error
}
