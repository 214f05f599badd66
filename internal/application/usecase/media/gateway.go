package media

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/media-gateway/internal/application/service"
	"github.com/khoahotran/media-gateway/internal/config"
	"github.com/khoahotran/media-gateway/internal/domain/media"
	"github.com/khoahotran/media-gateway/pkg/logger"
	"github.com/khoahotran/media-gateway/pkg/metrics"
)

// RootPath is the page purged after every successful mutation.
const RootPath = "/"

const deliveryTypeUpload = "upload"

// Settings are the fixed transform and listing options applied to every request.
type Settings struct {
	Folder      string
	AspectRatio string
	Width       int
	Crop        string
	Gravity     string
	MaxResults  int
}

func DefaultSettings() Settings {
	return Settings{
		Folder:      "tienda",
		AspectRatio: "1.62",
		Width:       600,
		Crop:        "fill",
		Gravity:     "center",
		MaxResults:  500,
	}
}

func SettingsFromConfig(cfg config.Config) Settings {
	s := DefaultSettings()
	if cfg.Media.Folder != "" {
		s.Folder = cfg.Media.Folder
	}
	if cfg.Media.AspectRatio != "" {
		s.AspectRatio = cfg.Media.AspectRatio
	}
	if cfg.Media.Width > 0 {
		s.Width = cfg.Media.Width
	}
	if cfg.Media.Crop != "" {
		s.Crop = cfg.Media.Crop
	}
	if cfg.Media.Gravity != "" {
		s.Gravity = cfg.Media.Gravity
	}
	if cfg.Media.MaxResults > 0 && cfg.Media.MaxResults <= 500 {
		s.MaxResults = cfg.Media.MaxResults
	}
	return s
}

// Gateway forwards image mutations and listings to the remote media store and purges
// the root page cache after each successful mutation. It keeps no state between calls.
type Gateway struct {
	store       service.MediaStore
	invalidator service.CacheInvalidator
	publisher   service.EventPublisher
	observer    metrics.Observer
	settings    Settings
	logger      logger.Logger
	tracer      trace.Tracer
	inflight    sync.WaitGroup
}

// NewGateway wires the gateway. publisher and observer may be nil.
func NewGateway(
	store service.MediaStore,
	invalidator service.CacheInvalidator,
	publisher service.EventPublisher,
	observer metrics.Observer,
	settings Settings,
	log logger.Logger,
) *Gateway {
	if observer == nil {
		observer = metrics.NewNopObserver()
	}
	return &Gateway{
		store:       store,
		invalidator: invalidator,
		publisher:   publisher,
		observer:    observer,
		settings:    settings,
		logger:      log,
		tracer:      otel.Tracer("media-gateway/usecase/media"),
	}
}

// Create uploads a new image under the configured folder, named after filename.
func (g *Gateway) Create(ctx context.Context, file []byte, filename, mimeType string) media.OperationResult {
	ctx, span := g.tracer.Start(ctx, "MediaGateway.Create", trace.WithAttributes(attribute.String("media.filename", filename)))
	defer span.End()

	opts := g.transformOptions()
	opts.Folder = g.settings.Folder
	opts.PublicID = filename

	return g.transformAndUpload(ctx, span, metrics.OpCreate, file, mimeType, opts)
}

// Update overwrites publicID in place. No folder is sent: publicID already carries it.
func (g *Gateway) Update(ctx context.Context, publicID string, file []byte, mimeType string) media.OperationResult {
	ctx, span := g.tracer.Start(ctx, "MediaGateway.Update", trace.WithAttributes(attribute.String("media.public_id", publicID)))
	defer span.End()

	opts := g.transformOptions()
	opts.PublicID = publicID

	return g.transformAndUpload(ctx, span, metrics.OpUpdate, file, mimeType, opts)
}

// RetrieveAll lists the folder. Remote errors are returned as-is for the caller to handle.
func (g *Gateway) RetrieveAll(ctx context.Context) (*media.ResourceList, error) {
	ctx, span := g.tracer.Start(ctx, "MediaGateway.RetrieveAll")
	defer span.End()

	start := time.Now()
	list, err := g.store.ListResources(ctx, media.ResourceQuery{
		Type:       deliveryTypeUpload,
		Prefix:     g.settings.Folder,
		MaxResults: g.settings.MaxResults,
	})
	g.observer.RecordOperation(metrics.OpRetrieveAll, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("media.count", len(list.Resources)))
	return list, nil
}

// Delete destroys publicID on the remote store.
func (g *Gateway) Delete(ctx context.Context, publicID string) media.OperationResult {
	ctx, span := g.tracer.Start(ctx, "MediaGateway.Delete", trace.WithAttributes(attribute.String("media.public_id", publicID)))
	defer span.End()

	l := g.logger.With(zap.String("public_id", publicID), zap.String("operation", metrics.OpDelete))

	start := time.Now()
	err := g.store.Destroy(ctx, publicID)
	g.observer.RecordOperation(metrics.OpDelete, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		l.Error("Remote destroy failed", err)
		return media.Failure(err.Error())
	}

	g.afterMutation(ctx, l, media.EventDeleted, publicID)
	return media.Success(fmt.Sprintf("image deleted from %s", publicID))
}

func (g *Gateway) transformOptions() media.UploadOptions {
	return media.UploadOptions{
		Invalidate:  true,
		AspectRatio: g.settings.AspectRatio,
		Width:       g.settings.Width,
		Crop:        g.settings.Crop,
		Gravity:     g.settings.Gravity,
	}
}

func (g *Gateway) transformAndUpload(
	ctx context.Context,
	span trace.Span,
	op string,
	file []byte,
	mimeType string,
	opts media.UploadOptions,
) media.OperationResult {
	l := g.logger.With(zap.String("public_id", opts.PublicID), zap.String("operation", op))

	start := time.Now()
	uploaded, err := g.store.Upload(ctx, fileURI(file, mimeType), opts)
	g.observer.RecordUpload(op, time.Since(start), len(file), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		l.Error("Remote upload failed", err)
		return media.Failure(err.Error())
	}

	publicID := opts.PublicID
	if uploaded != nil && uploaded.PublicID != "" {
		publicID = uploaded.PublicID
	}

	evtType, verb := media.EventUploaded, "uploaded to"
	if op == metrics.OpUpdate {
		evtType, verb = media.EventUpdated, "updated at"
	}

	g.afterMutation(ctx, l, evtType, publicID)
	return media.Success(fmt.Sprintf("image %s %s", verb, publicID))
}

// Drain waits for in-flight event publishes. Call it before closing the publisher.
func (g *Gateway) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain media events: %w", ctx.Err())
	}
}

// afterMutation purges the root page exactly once, then announces the change.
// Neither step can turn a completed mutation into a failure.
func (g *Gateway) afterMutation(ctx context.Context, l logger.Logger, evtType media.EventType, publicID string) {
	err := g.invalidator.Invalidate(ctx, RootPath)
	g.observer.RecordInvalidation(err)
	if err != nil {
		l.Error("Cache invalidation failed", err, zap.String("path", RootPath))
	}

	l.Info("Media mutation completed")

	if g.publisher == nil {
		return
	}
	evt := media.NewEvent(evtType, publicID)
	g.inflight.Add(1)
	go func() {
		defer g.inflight.Done()
		if err := g.publisher.PublishMediaEvent(context.Background(), evt); err != nil {
			g.logger.Error("Failed to publish media event", err,
				zap.String("event_type", string(evt.Type)),
				zap.String("public_id", evt.PublicID),
			)
		}
	}()
}
