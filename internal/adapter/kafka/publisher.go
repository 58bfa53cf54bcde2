// Package kafka is the optional event sink: freshly fetched normalized
// events are produced to a topic for downstream consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/jdalain/teq-dashboard/internal/config"
	"github.com/jdalain/teq-dashboard/internal/domain"
	"github.com/jdalain/teq-dashboard/internal/observability"
)

// Publisher produces normalized quake events to a Kafka topic.
// It implements dashboard.EventPublisher.
type Publisher struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, metrics: metrics, logger: logger}
}

// PublishEvents serializes and publishes the events in a single
// WriteMessages call.
func (p *Publisher) PublishEvents(ctx context.Context, events []domain.QuakeEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	p.metrics.EventsPublished.Add(float64(len(msgs)))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a QuakeEvent into a Kafka message keyed by
// the upstream event ID, falling back to the timestamp for records the
// API published without one.
func serializeToMessage(event domain.QuakeEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize quake event: %w", err)
	}
	key := event.EventID
	if key == "" {
		key = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "country", Value: []byte(event.Country)},
			{Key: "observed_at", Value: []byte(event.Timestamp.UTC().Format(time.RFC3339))},
		},
	}, nil
}
