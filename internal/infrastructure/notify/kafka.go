package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/taller-api/internal/application/ports"
)

// KafkaPublisher publica cada evento como mensaje JSON con clave = recurso afectado.
type KafkaPublisher struct {
	writer  *kafka.Writer
	timeout time.Duration
}

var _ ports.Notifier = (*KafkaPublisher)(nil)

// NewKafkaPublisher crea el writer hacia brokers/topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			BatchSize:    100,
			RequiredAcks: kafka.RequireOne,
		},
		timeout: 2 * time.Second,
	}
}

// Notify escribe el evento. La espera está acotada para no retener al caller.
func (p *KafkaPublisher) Notify(ctx context.Context, event ports.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ResourceID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
		Time: event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("kafka %s: %w", p.writer.Topic, err)
	}
	return nil
}

// Close libera conexiones del writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
