package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"quiz-arena/backend/internal/telemetry"
)

const writeTimeout = 5 * time.Second

// KafkaProducer implements Producer using segmentio/kafka-go.
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaProducer creates a producer that writes events to topic. It returns nil when brokers or
// topic are empty so callers can treat Kafka as optional. Call Close when shutting down.
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
		},
		topic: topic,
	}
}

// Emit serializes the event as JSON and writes it keyed by room (or user) so one room's events stay ordered.
func (p *KafkaProducer) Emit(ctx context.Context, event *telemetry.Event) error {
	if p == nil || p.writer == nil || event == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(writeCtx, kafka.Message{Key: messageKey(event), Value: payload}); err != nil {
		log.Warn().Err(err).Str("topic", p.topic).Str("event_type", event.Type).Msg("telemetry: kafka emit failed")
		return err
	}
	return nil
}

// Close closes the Kafka writer. Safe to call on a nil producer.
func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func messageKey(e *telemetry.Event) []byte {
	switch {
	case e.RoomID != "":
		return []byte(e.RoomID)
	case e.UserID != "":
		return []byte(e.UserID)
	}
	return nil
}
