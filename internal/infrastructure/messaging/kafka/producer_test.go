package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyops/deadline-engine/internal/config"
	"github.com/complyops/deadline-engine/internal/domain/calendar"
	"github.com/complyops/deadline-engine/internal/domain/deadline"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
)

type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closeFunc func() error
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		return m.writeFunc(ctx, msgs...)
	}
	return nil
}

func (m *mockKafkaWriter) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func (m *mockKafkaWriter) Stats() kafka.WriterStats {
	return kafka.WriterStats{}
}

func newTestPublisher(writer WriterInterface) *EventPublisher {
	return &EventPublisher{
		writer:  writer,
		topic:   "deadline.events",
		logger:  logging.NewNopLogger(),
		metrics: &PublisherMetrics{},
	}
}

func sampleEvent() deadline.Event {
	return deadline.Event{
		Type:            deadline.EventDeadlineCalculated,
		CalculationID:   "calc-1",
		DeadlineID:      "FINREP-EU-QUARTERLY",
		ReportType:      "FINREP",
		ReportingPeriod: "2024-Q1",
		Jurisdiction:    calendar.JurisdictionEU,
		FinalDeadline:   time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC),
		Status:          deadline.StatusUpcoming,
		DaysRemaining:   39,
		OccurredAt:      time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestNewEventPublisherValidation(t *testing.T) {
	_, err := NewEventPublisher(config.KafkaConfig{Topic: "deadline.events"}, logging.NewNopLogger())
	assert.Error(t, err)

	_, err = NewEventPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestPublishKeysByDeadlineID(t *testing.T) {
	var captured []kafka.Message
	writer := &mockKafkaWriter{
		writeFunc: func(_ context.Context, msgs ...kafka.Message) error {
			captured = append(captured, msgs...)
			return nil
		},
	}
	p := newTestPublisher(writer)

	event := sampleEvent()
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, captured, 1)
	msg := captured[0]
	assert.Equal(t, []byte("FINREP-EU-QUARTERLY"), msg.Key)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, []byte(deadline.EventDeadlineCalculated), msg.Headers[0].Value)

	var decoded deadline.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.CalculationID, decoded.CalculationID)
	assert.Equal(t, event.FinalDeadline, decoded.FinalDeadline)
	assert.Equal(t, event.Status, decoded.Status)

	assert.Equal(t, int64(1), p.metrics.EventsSent.Load())
	assert.Equal(t, int64(0), p.metrics.EventsFailed.Load())
}

func TestPublishWriteErrorCounted(t *testing.T) {
	writer := &mockKafkaWriter{
		writeFunc: func(context.Context, ...kafka.Message) error {
			return errors.New("broker unreachable")
		},
	}
	p := newTestPublisher(writer)

	err := p.Publish(context.Background(), sampleEvent())
	assert.Error(t, err)
	assert.Equal(t, int64(1), p.metrics.EventsFailed.Load())
	assert.Equal(t, int64(0), p.metrics.EventsSent.Load())
}

func TestPublishAfterCloseFails(t *testing.T) {
	p := newTestPublisher(&mockKafkaWriter{})
	require.NoError(t, p.Close())

	err := p.Publish(context.Background(), sampleEvent())
	assert.Equal(t, ErrPublisherClosed, err)
}

func TestCloseIsIdempotent(t *testing.T) {
	closes := 0
	p := newTestPublisher(&mockKafkaWriter{
		closeFunc: func() error {
			closes++
			return nil
		},
	})

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, closes)
}
