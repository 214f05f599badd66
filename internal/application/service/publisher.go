package service

import (
	"context"

	"github.com/khoahotran/media-gateway/internal/domain/media"
)

type EventPublisher interface {
	PublishMediaEvent(ctx context.Context, evt media.Event) error
}
