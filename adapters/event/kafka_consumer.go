package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/media-gateway/internal/config"
	"github.com/khoahotran/media-gateway/internal/domain/media"
	"github.com/khoahotran/media-gateway/pkg/logger"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MediaEventHandler processes one decoded event. A failing event is retried with backoff
// and then skipped; the group offset has already moved past it.
type MediaEventHandler func(ctx context.Context, evt media.Event) error

const (
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 500 * time.Millisecond
)

type MediaEventConsumer struct {
	reader       messageReader
	logger       logger.Logger
	maxAttempts  int
	retryBackoff time.Duration
}

func NewMediaEventConsumer(cfg config.Config, log logger.Logger) (*MediaEventConsumer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    TopicMediaEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &MediaEventConsumer{
		reader:       reader,
		logger:       log,
		maxAttempts:  defaultMaxAttempts,
		retryBackoff: defaultRetryBackoff,
	}, nil
}

// Run blocks until ctx is cancelled.
func (c *MediaEventConsumer) Run(ctx context.Context, handle MediaEventHandler) error {
	c.logger.Info("Worker listening", zap.String("topic", TopicMediaEvents))
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("kafka reader closed: %w", err)
			}
			c.logger.Error("Failed to read message from Kafka", err)
			continue
		}

		var evt media.Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			c.logger.Warn("Failed to unmarshal event, skipping", zap.Error(err), zap.Int64("offset", msg.Offset))
			c.commit(ctx, msg)
			continue
		}

		l := c.logger.With(zap.String("event_type", string(evt.Type)), zap.String("public_id", evt.PublicID))
		l.Info("Processing media event")

		if err := c.handleWithRetry(ctx, l, handle, evt); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.Error("Giving up on media event", err, zap.Int64("offset", msg.Offset))
		}
		c.commit(ctx, msg)
	}
}

// handleWithRetry doubles the wait after each failed attempt.
func (c *MediaEventConsumer) handleWithRetry(ctx context.Context, l logger.Logger, handle MediaEventHandler, evt media.Event) error {
	attempts := c.maxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := c.retryBackoff
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = handle(ctx, evt); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		l.Warn("Failed to process media event, retrying", zap.Error(err), zap.Int("attempt", attempt))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

func (c *MediaEventConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message", err)
	}
}

func (c *MediaEventConsumer) Close() error {
	return c.reader.Close()
}
