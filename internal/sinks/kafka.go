package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/relabs-tech/weather_station/internal/env"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka writes each reading as a JSON message keyed by device id.
type Kafka struct {
	w     messageWriter
	topic string
}

// NewKafka returns a sink writing to topic on brokers.
func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
		topic: topic,
	}
}

func (k *Kafka) Name() string { return "kafka" }

// Message encodes r for the topic.
func Message(r env.Reading) (kafka.Message, error) {
	value, err := json.Marshal(r)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{Key: []byte(r.Device), Value: value, Time: r.At}, nil
}

func (k *Kafka) Deliver(ctx context.Context, r env.Reading) error {
	msg, err := Message(r)
	if err != nil {
		return fmt.Errorf("kafka: marshal: %w", err)
	}
	if err := k.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write %s: %w", k.topic, err)
	}
	return nil
}

func (k *Kafka) Close(context.Context) error {
	return k.w.Close()
}
