package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"shop-crud/internal/logger"
	"shop-crud/internal/telemetry"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	tracer   trace.Tracer
}

// NewKafkaConfig returns the producer settings. Retries are disabled so a request never
// waits on a broker outage longer than one attempt.
func NewKafkaConfig(clientID string) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 0
	cfg.Producer.Timeout = 5 * time.Second
	cfg.Net.DialTimeout = 5 * time.Second
	return cfg
}

func NewKafkaPublisher(brokers []string, topic, clientID string) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewKafkaConfig(clientID))
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, topic), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		tracer:   otel.Tracer("KafkaPublisher"),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	ctx, span := p.tracer.Start(ctx, "KafkaPublisher.Publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", p.topic),
			attribute.String("event.resource", e.Resource),
			attribute.String("event.action", string(e.Action)),
		))
	defer span.End()

	value, err := json.Marshal(e)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("encode event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(e.Key()),
		Value: sarama.ByteEncoder(value),
	}
	otel.GetTextMapPropagator().Inject(ctx, telemetry.NewHeadersCarrier(&msg.Headers))

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("send event to %s: %w", p.topic, err)
	}

	logger.Debug(ctx, "Event published",
		slog.String("topic", p.topic),
		slog.String("key", e.Key()),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
