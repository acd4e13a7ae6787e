package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/complyops/deadline-engine/internal/config"
	"github.com/complyops/deadline-engine/internal/domain/deadline"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
	"github.com/complyops/deadline-engine/pkg/errors"
)

var (
	ErrPublisherClosed = errors.New(errors.ErrCodeInternal, "event publisher closed")
)

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.WriterStats
}

// PublisherMetrics holds event-publisher counters.
type PublisherMetrics struct {
	EventsSent   atomic.Int64
	EventsFailed atomic.Int64
	BytesSent    atomic.Int64
	LastSentAt   atomic.Value // time.Time
}

// EventPublisher emits deadline lifecycle events to a single Kafka topic.
// Messages are keyed by deadline ID so all events for one regulatory
// deadline land on the same partition in order.
type EventPublisher struct {
	writer  WriterInterface
	topic   string
	logger  logging.Logger
	closed  atomic.Bool
	metrics *PublisherMetrics
}

// NewEventPublisher builds a publisher from config.  Callers must check
// cfg.Brokers themselves; an empty broker list is a configuration error
// here, the disable-when-empty decision lives in the wiring layer.
func NewEventPublisher(cfg config.KafkaConfig, log logging.Logger) (*EventPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	if cfg.Topic == "" {
		return nil, errors.New(errors.ErrCodeValidation, "kafka topic required")
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxRetries + 1,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireAll,
	}

	log.Info("Kafka event publisher ready",
		logging.String("topic", cfg.Topic),
		logging.Int("brokers", len(cfg.Brokers)),
	)

	return &EventPublisher{
		writer:  writer,
		topic:   cfg.Topic,
		logger:  log,
		metrics: &PublisherMetrics{},
	}, nil
}

// Publish implements deadline.EventPublisher.
func (p *EventPublisher) Publish(ctx context.Context, event deadline.Event) error {
	if p.closed.Load() {
		return ErrPublisherClosed
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event")
	}

	msg := kafka.Message{
		Key:   []byte(event.DeadlineID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
		Time: event.OccurredAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.EventsFailed.Add(1)
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to publish event")
	}

	p.metrics.EventsSent.Add(1)
	p.metrics.BytesSent.Add(int64(len(payload)))
	p.metrics.LastSentAt.Store(time.Now())

	p.logger.Debug("Event published",
		logging.String("type", string(event.Type)),
		logging.String("deadline_id", event.DeadlineID),
		logging.String("calculation_id", event.CalculationID),
	)
	return nil
}

// Metrics returns a counter snapshot.
func (p *EventPublisher) Metrics() PublisherMetrics {
	m := PublisherMetrics{}
	m.EventsSent.Store(p.metrics.EventsSent.Load())
	m.EventsFailed.Store(p.metrics.EventsFailed.Load())
	m.BytesSent.Store(p.metrics.BytesSent.Load())
	if last := p.metrics.LastSentAt.Load(); last != nil {
		m.LastSentAt.Store(last)
	}
	return m
}

// Close flushes and closes the underlying writer.
func (p *EventPublisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("Kafka event publisher closed",
		logging.Int64("sent", p.metrics.EventsSent.Load()),
		logging.Int64("failed", p.metrics.EventsFailed.Load()),
	)
	return err
}
