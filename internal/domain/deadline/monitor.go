package deadline

import (
	"context"
	"time"

	"github.com/complyops/deadline-engine/internal/domain/calendar"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
)

// SweepLocker serializes sweeps across replicas.  TryLock returns a release
// function and whether the lock was acquired; losing the race is not an
// error, the holder's sweep covers everyone.
type SweepLocker interface {
	TryLock(ctx context.Context) (release func(), acquired bool, err error)
}

// nopLocker always grants the lock; used when Redis is not configured.
type nopLocker struct{}

func (nopLocker) TryLock(context.Context) (func(), bool, error) {
	return func() {}, true, nil
}

// MonitorConfig carries the sweep parameters.
type MonitorConfig struct {
	Interval          time.Duration
	DueSoonWindowDays int
	EarlyWarningDays  []int
}

// StatusMonitor periodically reclassifies persisted deadlines: past-due
// records become OVERDUE, records inside the due-soon window become
// DUE_SOON, and early-warning thresholds fire once each.  Every sweep is
// idempotent; a failure on one record is isolated and the sweep continues.
type StatusMonitor struct {
	deadlines DeadlineRepository
	arith     *calendar.Arithmetic
	locker    SweepLocker
	publisher EventPublisher
	metrics   MetricsRecorder
	logger    logging.Logger
	cfg       MonitorConfig

	now func() time.Time
}

// NewStatusMonitor wires a StatusMonitor.  locker, publisher, metrics and
// logger may be nil.
func NewStatusMonitor(
	deadlines DeadlineRepository,
	arith *calendar.Arithmetic,
	locker SweepLocker,
	publisher EventPublisher,
	metrics MetricsRecorder,
	logger logging.Logger,
	cfg MonitorConfig,
) *StatusMonitor {
	if locker == nil {
		locker = nopLocker{}
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &StatusMonitor{
		deadlines: deadlines,
		arith:     arith,
		locker:    locker,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.Named("status-monitor"),
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithClock replaces the wall clock for tests.
func (m *StatusMonitor) WithClock(now func() time.Time) *StatusMonitor {
	m.now = now
	return m
}

// Run sweeps immediately and then on every interval tick until ctx is
// cancelled.
func (m *StatusMonitor) Run(ctx context.Context) {
	m.logger.Info("status monitor started", logging.Duration("interval", m.cfg.Interval))
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	m.sweepWithLock(ctx)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("status monitor stopped")
			return
		case <-ticker.C:
			m.sweepWithLock(ctx)
		}
	}
}

func (m *StatusMonitor) sweepWithLock(ctx context.Context) {
	release, acquired, err := m.locker.TryLock(ctx)
	if err != nil {
		m.logger.Warn("sweep lock unavailable, skipping sweep", logging.Err(err))
		return
	}
	if !acquired {
		m.logger.Debug("sweep already running on another replica")
		return
	}
	defer release()

	if err := m.Sweep(ctx); err != nil {
		m.logger.Error("sweep failed", logging.Err(err))
	}
}

// Sweep performs one reclassification pass.  Only listing failures abort
// the sweep; per-record update failures are logged and skipped.
func (m *StatusMonitor) Sweep(ctx context.Context) error {
	started := m.now()
	today := calendar.Midnight(started)

	overdueChanged, err := m.sweepOverdue(ctx, today)
	if err != nil {
		return err
	}
	dueSoonChanged, alertsFired, err := m.sweepUpcoming(ctx, today)
	if err != nil {
		return err
	}

	latency := m.now().Sub(started)
	m.metrics.RecordSweep(latency)
	m.logger.Info("sweep complete",
		logging.Int("overdue_transitions", overdueChanged),
		logging.Int("due_soon_transitions", dueSoonChanged),
		logging.Int("alerts_fired", alertsFired),
		logging.Duration("took", latency),
	)
	return nil
}

// sweepOverdue transitions every past-due, non-terminal record to OVERDUE.
func (m *StatusMonitor) sweepOverdue(ctx context.Context, today time.Time) (int, error) {
	records, err := m.deadlines.ListOverdue(ctx, today, ListFilter{})
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, record := range records {
		if record.Status == StatusOverdue {
			continue
		}
		if m.transition(ctx, record, StatusOverdue, today) {
			changed++
		}
	}
	return changed, nil
}

// sweepUpcoming moves records inside the due-soon window to DUE_SOON and
// fires any early-warning thresholds that days-remaining has crossed.
func (m *StatusMonitor) sweepUpcoming(ctx context.Context, today time.Time) (int, int, error) {
	horizon := m.cfg.DueSoonWindowDays
	for _, t := range m.cfg.EarlyWarningDays {
		if t > horizon {
			horizon = t
		}
	}

	records, err := m.deadlines.ListUpcoming(ctx, today, horizon, ListFilter{})
	if err != nil {
		return 0, 0, err
	}

	changed, alerts := 0, 0
	for _, record := range records {
		if record.Status.IsTerminal() {
			continue
		}
		daysRemaining := calendarDaysBetween(today, record.FinalDeadline)

		if record.Status == StatusUpcoming && daysRemaining >= 0 && daysRemaining <= m.cfg.DueSoonWindowDays {
			if m.transition(ctx, record, StatusDueSoon, today) {
				changed++
			}
		}
		alerts += m.fireThresholds(ctx, record, daysRemaining)
	}
	return changed, alerts, nil
}

// transition applies one status change with per-record error isolation.
func (m *StatusMonitor) transition(ctx context.Context, record *CalculatedDeadline, to Status, today time.Time) bool {
	daysRemaining := calendarDaysBetween(today, record.FinalDeadline)
	businessDaysRemaining := m.arith.CountBusinessDays(record.Jurisdiction, today, record.FinalDeadline)

	changed, err := m.deadlines.UpdateStatus(ctx, record.CalculationID, to, daysRemaining, businessDaysRemaining)
	if err != nil {
		m.logger.Warn("sweep transition failed",
			logging.String("calculation_id", record.CalculationID),
			logging.String("to", string(to)),
			logging.Err(err),
		)
		return false
	}
	if !changed {
		return false
	}

	m.metrics.RecordStatusUpdate()
	m.publish(ctx, Event{
		Type:            EventStatusChanged,
		CalculationID:   record.CalculationID,
		DeadlineID:      record.DeadlineID,
		ReportType:      record.ReportType,
		ReportingPeriod: record.ReportingPeriod,
		Jurisdiction:    record.Jurisdiction,
		FinalDeadline:   record.FinalDeadline,
		Status:          to,
		PreviousStatus:  record.Status,
		DaysRemaining:   daysRemaining,
		OccurredAt:      m.now(),
	})
	record.Status = to
	return true
}

// fireThresholds fires each crossed early-warning threshold that has not
// fired before, recording it so repeats stay silent.
func (m *StatusMonitor) fireThresholds(ctx context.Context, record *CalculatedDeadline, daysRemaining int) int {
	if daysRemaining < 0 {
		return 0
	}
	fired := 0
	for _, threshold := range m.cfg.EarlyWarningDays {
		if daysRemaining > threshold || record.AlertSentFor(threshold) {
			continue
		}
		if err := m.deadlines.RecordAlert(ctx, record.CalculationID, threshold); err != nil {
			m.logger.Warn("recording alert threshold failed",
				logging.String("calculation_id", record.CalculationID),
				logging.Int("threshold", threshold),
				logging.Err(err),
			)
			continue
		}
		record.AlertsSent = append(record.AlertsSent, threshold)
		m.metrics.RecordAlert()
		m.publish(ctx, Event{
			Type:            EventThresholdCrossed,
			CalculationID:   record.CalculationID,
			DeadlineID:      record.DeadlineID,
			ReportType:      record.ReportType,
			ReportingPeriod: record.ReportingPeriod,
			Jurisdiction:    record.Jurisdiction,
			FinalDeadline:   record.FinalDeadline,
			Status:          record.Status,
			Threshold:       threshold,
			DaysRemaining:   daysRemaining,
			OccurredAt:      m.now(),
		})
		fired++
	}
	return fired
}

func (m *StatusMonitor) publish(ctx context.Context, event Event) {
	if err := m.publisher.Publish(ctx, event); err != nil {
		m.logger.Warn("event publish failed",
			logging.String("event_type", string(event.Type)),
			logging.String("calculation_id", event.CalculationID),
			logging.Err(err),
		)
	}
}
