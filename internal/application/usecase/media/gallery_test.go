package media

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/media-gateway/internal/domain/media"
	"github.com/khoahotran/media-gateway/pkg/apperror"
	"github.com/khoahotran/media-gateway/pkg/logger"
)

func newGallery(t *testing.T) (*GalleryUseCase, *fakeStore, *fakeCache, *Gateway) {
	t.Helper()
	log := &callLog{}
	store := newFakeStore(log)
	cache := newFakeCache(log)
	gw := NewGateway(store, cache, nil, nil, DefaultSettings(), logger.NewNopLogger())
	return NewGalleryUseCase(gw, cache, logger.NewNopLogger()), store, cache, gw
}

func TestGallery_RenderCachesUntilMutation(t *testing.T) {
	ctx := context.Background()
	uc, store, cache, gw := newGallery(t)
	require.True(t, gw.Create(ctx, []byte{1}, "shoe.png", "image/png").OK())

	body, err := uc.Render(ctx)
	require.NoError(t, err)
	var list media.ResourceList
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Resources, 1)
	assert.Equal(t, "tienda/shoe.png", list.Resources[0].PublicID)

	_, err = uc.Render(ctx)
	require.NoError(t, err)
	assert.Len(t, store.queries, 1, "second render must be served from cache")

	require.True(t, gw.Delete(ctx, "tienda/shoe.png").OK())
	_, cached := cache.pages[RootPath]
	assert.False(t, cached)

	body, err = uc.Render(ctx)
	require.NoError(t, err)
	assert.Len(t, store.queries, 2)
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Empty(t, list.Resources)
}

func TestGallery_ListFailureIsUpstreamError(t *testing.T) {
	uc, store, _, _ := newGallery(t)
	store.listErr = errors.New("Invalid Signature")

	_, err := uc.Render(context.Background())

	assert.ErrorIs(t, err, apperror.ErrUpstream)
	assert.ErrorContains(t, err, "Invalid Signature")
}

func TestGallery_CacheOutageFallsBackToRemote(t *testing.T) {
	uc, store, cache, _ := newGallery(t)
	cache.err = errors.New("redis down")

	body, err := uc.Render(context.Background())

	require.NoError(t, err)
	assert.JSONEq(t, `{"resources":[]}`, string(body))
	assert.Len(t, store.queries, 1)
}
