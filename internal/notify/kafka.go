// Package notify publishes access-code notifications and lifecycle events.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rohits-web03/dropvault/internal/models"
)

const (
	TopicAccessCode = "notifications.access-code"
	TopicLifecycle  = "deliveries.lifecycle"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

// writeBatchTimeout bounds how long a single synchronous write waits for a
// batch to fill. kafka-go defaults to one second.
const writeBatchTimeout = 10 * time.Millisecond

func NewKafkaPublisher(brokers []string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	return &KafkaPublisher{writer: newWriter(brokers)}, nil
}

func newWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		RequiredAcks:           kafka.RequireAll,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           writeBatchTimeout,
		AllowAutoTopicCreation: true,
	}
}

// SendAccessCode publishes the code for the mailer. Messages are keyed by
// delivery so a recipient's codes stay ordered.
func (p *KafkaPublisher) SendAccessCode(ctx context.Context, n models.AccessCodeNotice) error {
	return p.publish(ctx, TopicAccessCode, n.DeliveryID.String(), n)
}

func (p *KafkaPublisher) PublishLifecycle(ctx context.Context, n models.LifecycleNotice) error {
	return p.publish(ctx, TopicLifecycle, n.DeliveryID.String(), n)
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", topic, err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
