package deadline

import (
	"context"
	"time"

	"github.com/complyops/deadline-engine/internal/domain/calendar"
)

// EventType identifies a deadline lifecycle event.
type EventType string

const (
	EventDeadlineCalculated EventType = "deadline.calculated"
	EventStatusChanged      EventType = "deadline.status_changed"
	EventThresholdCrossed   EventType = "deadline.threshold_crossed"
)

// Event is published whenever a deadline is calculated, changes status, or
// crosses an early-warning threshold.  Downstream alerting consumes these;
// alert transport itself lives outside the engine.
type Event struct {
	Type            EventType             `json:"type"`
	CalculationID   string                `json:"calculation_id"`
	DeadlineID      string                `json:"deadline_id"`
	ReportType      string                `json:"report_type"`
	ReportingPeriod string                `json:"reporting_period"`
	Jurisdiction    calendar.Jurisdiction `json:"jurisdiction"`
	FinalDeadline   time.Time             `json:"final_deadline"`
	Status          Status                `json:"status"`
	PreviousStatus  Status                `json:"previous_status,omitempty"`
	Threshold       int                   `json:"threshold,omitempty"`
	DaysRemaining   int                   `json:"days_remaining"`
	OccurredAt      time.Time             `json:"occurred_at"`
}

// EventPublisher delivers deadline events to downstream consumers.  Publish
// failures are logged by callers and never fail the originating operation.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
