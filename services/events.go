package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kendall-kelly/otica-api/config"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Order event types
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the message published when an order is created or changes status
type OrderEvent struct {
	Type           string    `json:"type"`
	OrderID        string    `json:"orderId"`
	CustomerID     string    `json:"customerId"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	TotalAmount    string    `json:"totalAmount"`
	Source         string    `json:"source,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// EventPublisher publishes order events
type EventPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// KafkaPublisher writes order events to a Kafka topic keyed by order id
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NoopPublisher drops events. It is used when KAFKA_BROKERS is not set.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event OrderEvent) error { return nil }
func (NoopPublisher) Close() error                                      { return nil }

var publisherInstance EventPublisher = NoopPublisher{}

// publishBatchTimeout bounds how long a synchronous write waits for its batch to fill.
// Writes run inside the request.
const publishBatchTimeout = 10 * time.Millisecond

// InitEventPublisher creates the Kafka publisher when brokers are configured
func InitEventPublisher() EventPublisher {
	cfg := config.GetConfig()
	if cfg == nil || len(cfg.KafkaBrokers) == 0 {
		publisherInstance = NoopPublisher{}
		return publisherInstance
	}

	publisherInstance = &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Topic:                  cfg.KafkaOrderTopic,
			Balancer:               &kafka.LeastBytes{},
			BatchTimeout:           publishBatchTimeout,
			AllowAutoTopicCreation: true,
		},
	}
	return publisherInstance
}

// GetEventPublisher returns the current publisher
func GetEventPublisher() EventPublisher {
	return publisherInstance
}

// SetEventPublisher sets the publisher instance (primarily for testing)
func SetEventPublisher(p EventPublisher) {
	if p == nil {
		p = NoopPublisher{}
	}
	publisherInstance = p
}

// Publish writes event as JSON
func (k *KafkaPublisher) Publish(ctx context.Context, event OrderEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%s", event.OrderID)),
		Value: value,
	}
	return k.writer.WriteMessages(ctx, msg)
}

// Close flushes and closes the writer
func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

// publishBestEffort sends event and logs failures. The order is already committed.
func publishBestEffort(ctx context.Context, event OrderEvent) {
	event.OccurredAt = time.Now().UTC()
	if err := GetEventPublisher().Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("event", event.Type).Str("order_id", event.OrderID).Msg("Failed to publish order event")
	}
}
