package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Company-KERL/Kerl-backend/models"
	aws_pkg "github.com/Company-KERL/Kerl-backend/pkg/aws"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher delivers domain events to the configured bus.
type EventPublisher interface {
	Publish(ctx context.Context, event models.Event) error
	Close() error
}

// NewEvent stamps an event envelope. key is the partition/ordering key,
// usually the order id.
func NewEvent(eventType, key string, data interface{}) models.Event {
	return models.Event{
		Type:      eventType,
		Key:       key,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, models.Event) error { return nil }
func (NoopPublisher) Close() error                               { return nil }

// SNSEventPublisher fans events out through an SNS topic.
type SNSEventPublisher struct {
	client   aws_pkg.SNSPublisher
	topicArn string
}

func NewSNSEventPublisher(client aws_pkg.SNSPublisher, topicArn string) *SNSEventPublisher {
	return &SNSEventPublisher{client: client, topicArn: topicArn}
}

func (p *SNSEventPublisher) Publish(ctx context.Context, event models.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.client.Publish(ctx, p.topicArn, event.Type, body)
}

func (p *SNSEventPublisher) Close() error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEventPublisher writes events to a single topic keyed by event key.
type KafkaEventPublisher struct {
	writer messageWriter
}

func NewKafkaEventPublisher(brokers []string, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, event models.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
}

func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}

// publishEvent is best-effort: a failed publish is logged and never fails
// the request that produced the event.
func publishEvent(ctx context.Context, pub EventPublisher, log *zap.Logger, event models.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		log.Warn("Failed to publish event",
			zap.String("event_type", event.Type),
			zap.String("key", event.Key),
			zap.Error(err),
		)
	}
}
