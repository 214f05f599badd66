package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/khoahotran/media-gateway/internal/config"
	"github.com/khoahotran/media-gateway/internal/domain/media"
	"github.com/khoahotran/media-gateway/pkg/logger"
)

const (
	TopicMediaEvents = "media.events"
)

// messageWriter is the part of *kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducerClient struct {
	MediaEventsWriter messageWriter
	logger            logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	// writer 'media.events'
	mediaWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicMediaEvents,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka Producers successfully.")

	return &KafkaProducerClient{MediaEventsWriter: mediaWriter, logger: log}, nil
}

// PublishMediaEvent keys messages by public_id so events for one image stay ordered.
func (c *KafkaProducerClient) PublishMediaEvent(ctx context.Context, evt media.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal media event: %w", err)
	}
	err = c.MediaEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.PublicID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish media event to %s: %w", TopicMediaEvents, err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.MediaEventsWriter != nil {
		c.MediaEventsWriter.Close()
	}
	c.logger.Info("Closed Kafka Producers")
}
