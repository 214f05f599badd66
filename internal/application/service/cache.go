package service

import "context"

type CacheInvalidator interface {
	Invalidate(ctx context.Context, path string) error
}

// PageCache stores rendered page bodies keyed by request path.
type PageCache interface {
	CacheInvalidator
	Get(ctx context.Context, path string) ([]byte, bool, error)
	Set(ctx context.Context, path string, body []byte) error
}
