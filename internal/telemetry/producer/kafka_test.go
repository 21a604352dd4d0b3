package producer

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"

	"quiz-arena/backend/internal/telemetry"
)

func TestNewKafkaProducer_DisabledWithoutBrokersOrTopic(t *testing.T) {
	if p := NewKafkaProducer(nil, "quiz-events"); p != nil {
		t.Error("no brokers should disable the producer")
	}
	if p := NewKafkaProducer([]string{"localhost:9092"}, ""); p != nil {
		t.Error("empty topic should disable the producer")
	}
}

func TestKafkaProducer_NilSafe(t *testing.T) {
	var p *KafkaProducer
	if err := p.Emit(context.Background(), telemetry.NewEvent(telemetry.TypeLogin, "u-1")); err != nil {
		t.Errorf("nil Emit: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestKafkaProducer_WriterConfig(t *testing.T) {
	p := NewKafkaProducer([]string{"a:9092", "b:9092"}, "quiz-events")
	if p == nil {
		t.Fatal("producer should be created")
	}
	defer p.Close()
	if p.writer.Topic != "quiz-events" {
		t.Errorf("Topic = %q, want quiz-events", p.writer.Topic)
	}
	if _, ok := p.writer.Balancer.(*kafka.LeastBytes); !ok {
		t.Errorf("Balancer = %T, want *kafka.LeastBytes", p.writer.Balancer)
	}
}

func TestMessageKey(t *testing.T) {
	tests := []struct {
		name string
		ev   *telemetry.Event
		want string
	}{
		{"room wins", telemetry.NewEvent(telemetry.TypeRoomJoined, "u-1").WithRoom("r-1"), "r-1"},
		{"user fallback", telemetry.NewEvent(telemetry.TypeLogin, "u-1"), "u-1"},
		{"anonymous", telemetry.NewEvent(telemetry.TypeLoginFailed, ""), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(messageKey(tt.ev)); got != tt.want {
				t.Errorf("messageKey = %q, want %q", got, tt.want)
			}
		})
	}
}
