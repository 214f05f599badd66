package media

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/media-gateway/internal/config"
	"github.com/khoahotran/media-gateway/internal/domain/media"
	"github.com/khoahotran/media-gateway/pkg/logger"
)

type GatewayTestSuite struct {
	suite.Suite
	log     *callLog
	store   *fakeStore
	cache   *fakeCache
	gateway *Gateway
}

func (s *GatewayTestSuite) SetupTest() {
	s.log = &callLog{}
	s.store = newFakeStore(s.log)
	s.cache = newFakeCache(s.log)
	s.gateway = NewGateway(s.store, s.cache, nil, nil, DefaultSettings(), logger.NewNopLogger())
}

func TestGateway(t *testing.T) {
	suite.Run(t, new(GatewayTestSuite))
}

func (s *GatewayTestSuite) Test_Create_BuildsDataURIAndOptions() {
	file := []byte("fake png bytes \x00\x01\x02")

	res := s.gateway.Create(context.Background(), file, "shoe.png", "image/png")

	s.Equal(media.KindSuccess, res.Kind)
	s.Equal("image uploaded to tienda/shoe.png", res.Message)
	s.Require().Len(s.store.uploads, 1)

	call := s.store.uploads[0]
	s.Equal("data:image/png;base64,"+base64.StdEncoding.EncodeToString(file), call.dataURI)
	s.Equal(media.UploadOptions{
		Invalidate:  true,
		Folder:      "tienda",
		PublicID:    "shoe.png",
		AspectRatio: "1.62",
		Width:       600,
		Crop:        "fill",
		Gravity:     "center",
	}, call.opts)
}

func (s *GatewayTestSuite) Test_Mutations_InvalidateRootOnceAfterRemoteCall() {
	ctx := context.Background()

	cases := []struct {
		name   string
		remote string
		run    func() media.OperationResult
	}{
		{"create", "upload", func() media.OperationResult { return s.gateway.Create(ctx, []byte{1}, "a.png", "image/png") }},
		{"update", "upload", func() media.OperationResult { return s.gateway.Update(ctx, "tienda/a.png", []byte{2}, "image/png") }},
		{"delete", "destroy", func() media.OperationResult { return s.gateway.Delete(ctx, "tienda/a.png") }},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.log.calls = nil
			s.cache.paths = nil

			res := tc.run()

			s.True(res.OK(), res.Message)
			s.Equal([]string{"/"}, s.cache.paths)
			s.Equal([]string{tc.remote, "invalidate:/"}, s.log.snapshot())
		})
	}
}

func (s *GatewayTestSuite) Test_Update_ForwardsExactPublicID() {
	res := s.gateway.Update(context.Background(), "tienda/shoe123", []byte("new"), "image/jpeg")

	s.True(res.OK())
	s.Equal("image updated at tienda/shoe123", res.Message)
	s.Require().Len(s.store.uploads, 1)

	opts := s.store.uploads[0].opts
	s.Equal("tienda/shoe123", opts.PublicID)
	s.Empty(opts.Folder)
	s.True(opts.Invalidate)
	s.Equal("fill", opts.Crop)
	s.Equal("data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString([]byte("new")), s.store.uploads[0].dataURI)
}

func (s *GatewayTestSuite) Test_UploadFailure_ReturnsErrorWithoutInvalidation() {
	s.store.uploadErr = errRemote
	ctx := context.Background()

	created := s.gateway.Create(ctx, []byte{1}, "shoe.png", "image/png")
	updated := s.gateway.Update(ctx, "tienda/shoe123", []byte{1}, "image/png")

	for _, res := range []media.OperationResult{created, updated} {
		s.Equal(media.KindError, res.Kind)
		s.Equal("Invalid image file", res.Message)
	}
	s.Empty(s.cache.paths)
}

func (s *GatewayTestSuite) Test_Delete() {
	ctx := context.Background()
	s.Require().True(s.gateway.Create(ctx, []byte{1}, "shoe123", "image/png").OK())

	res := s.gateway.Delete(ctx, "tienda/shoe123")

	s.True(res.OK())
	s.Equal("image deleted from tienda/shoe123", res.Message)
	s.Equal([]string{"tienda/shoe123"}, s.store.destroyed)

	list, err := s.gateway.RetrieveAll(ctx)
	s.Require().NoError(err)
	for _, r := range list.Resources {
		s.NotEqual("tienda/shoe123", r.PublicID)
	}
}

func (s *GatewayTestSuite) Test_DeleteFailure() {
	s.store.destroyErr = errors.New("Resource not allowed")

	res := s.gateway.Delete(context.Background(), "tienda/shoe123")

	s.Equal(media.Failure("Resource not allowed"), res)
	s.Empty(s.cache.paths)
}

func (s *GatewayTestSuite) Test_RetrieveAll_Query() {
	_, err := s.gateway.RetrieveAll(context.Background())
	s.Require().NoError(err)

	s.Require().Len(s.store.queries, 1)
	q := s.store.queries[0]
	s.Equal("upload", q.Type)
	s.Equal("tienda", q.Prefix)
	s.Equal(500, q.MaxResults)
}

func (s *GatewayTestSuite) Test_RetrieveAll_PropagatesError() {
	s.store.listErr = errors.New("Rate Limit Exceeded")

	list, err := s.gateway.RetrieveAll(context.Background())

	s.Nil(list)
	s.EqualError(err, "Rate Limit Exceeded")
	s.Empty(s.cache.paths)
}

func (s *GatewayTestSuite) Test_InvalidationFailure_DoesNotChangeOutcome() {
	s.cache.err = errors.New("redis down")

	res := s.gateway.Delete(context.Background(), "tienda/shoe123")

	s.True(res.OK())
	s.Equal([]string{"/"}, s.cache.paths)
}

func (s *GatewayTestSuite) Test_PublishesEventAfterMutation() {
	pub := newFakePublisher()
	gw := NewGateway(s.store, s.cache, pub, nil, DefaultSettings(), logger.NewNopLogger())

	s.Require().True(gw.Update(context.Background(), "tienda/shoe123", []byte{1}, "image/png").OK())

	select {
	case evt := <-pub.events:
		s.Equal(media.EventUpdated, evt.Type)
		s.Equal("tienda/shoe123", evt.PublicID)
	case <-time.After(time.Second):
		s.Fail("expected a media event")
	}
}

func (s *GatewayTestSuite) Test_NoEventOnFailure() {
	pub := newFakePublisher()
	s.store.uploadErr = errRemote
	gw := NewGateway(s.store, s.cache, pub, nil, DefaultSettings(), logger.NewNopLogger())

	gw.Create(context.Background(), []byte{1}, "shoe.png", "image/png")

	select {
	case evt := <-pub.events:
		s.Failf("unexpected event", "%+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func (s *GatewayTestSuite) Test_DrainWaitsForPendingEvents() {
	pub := newFakePublisher()
	pub.release = make(chan struct{})
	gw := NewGateway(s.store, s.cache, pub, nil, DefaultSettings(), logger.NewNopLogger())

	s.Require().True(gw.Delete(context.Background(), "tienda/shoe123").OK())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	s.ErrorIs(gw.Drain(ctx), context.DeadlineExceeded)

	close(pub.release)
	s.NoError(gw.Drain(context.Background()))
	s.Require().Len(pub.events, 1)
	evt := <-pub.events
	s.Equal(media.EventDeleted, evt.Type)
}

func (s *GatewayTestSuite) Test_DrainWithoutPublisher() {
	s.NoError(s.gateway.Drain(context.Background()))
}

func TestSettingsFromConfig(t *testing.T) {
	var cfg config.Config
	cfg.Media.Folder = "catalogo"
	cfg.Media.Width = 800
	cfg.Media.MaxResults = 900

	s := SettingsFromConfig(cfg)

	if s.Folder != "catalogo" || s.Width != 800 {
		t.Fatalf("config overrides not applied: %+v", s)
	}
	if s.MaxResults != 500 {
		t.Fatalf("max results must stay capped at 500, got %d", s.MaxResults)
	}
	if s.AspectRatio != "1.62" || s.Crop != "fill" || s.Gravity != "center" {
		t.Fatalf("defaults lost: %+v", s)
	}
}
