package deadline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/complyops/deadline-engine/internal/domain/calendar"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
	apperrors "github.com/complyops/deadline-engine/pkg/errors"
)

// CalculatorConfig carries the engine parameters the Calculator needs.
type CalculatorConfig struct {
	DefaultJurisdiction calendar.Jurisdiction
	WeekendAdjustment   calendar.AdjustmentPolicy
	DueSoonWindowDays   int
}

// CalculationRequest names the subject of one deadline calculation.
// Jurisdiction and Frequency are optional: an empty jurisdiction uses the
// configured default, an empty frequency is inferred from the base date.
type CalculationRequest struct {
	ReportType      string
	ReportingPeriod string
	Jurisdiction    string
	Frequency       Frequency
	ReportID        string
}

// Calculator orchestrates deadline computation: period parsing, rule lookup
// with fallback, business-day arithmetic, weekend adjustment, preparation
// and review back-calculation, dependency resolution, and persistence.
type Calculator struct {
	rules     *RuleStore
	deadlines DeadlineRepository
	resolver  *DependencyResolver
	arith     *calendar.Arithmetic
	publisher EventPublisher
	metrics   MetricsRecorder
	logger    logging.Logger
	cfg       CalculatorConfig

	now func() time.Time
}

// NewCalculator wires a Calculator.  publisher, metrics and logger may be
// nil, in which case no-op implementations apply.
func NewCalculator(
	rules *RuleStore,
	deadlines DeadlineRepository,
	resolver *DependencyResolver,
	arith *calendar.Arithmetic,
	publisher EventPublisher,
	metrics MetricsRecorder,
	logger logging.Logger,
	cfg CalculatorConfig,
) *Calculator {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.DefaultJurisdiction == "" {
		cfg.DefaultJurisdiction = calendar.JurisdictionEU
	}
	if cfg.WeekendAdjustment == "" {
		cfg.WeekendAdjustment = calendar.NextBusinessDay
	}
	return &Calculator{
		rules:     rules,
		deadlines: deadlines,
		resolver:  resolver,
		arith:     arith,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.Named("calculator"),
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithClock replaces the wall clock, fixing "today" in tests.
func (c *Calculator) WithClock(now func() time.Time) *Calculator {
	c.now = now
	return c
}

// CalculateDeadline computes, persists and returns the deadline record for
// the request.  Period format errors and missing-rule configuration errors
// abort the call; calendar degradation never does.
func (c *Calculator) CalculateDeadline(ctx context.Context, req CalculationRequest) (*CalculatedDeadline, error) {
	started := c.now()

	if req.ReportType == "" {
		return nil, apperrors.InvalidParam("report_type must not be empty")
	}

	jurisdiction := c.cfg.DefaultJurisdiction
	if req.Jurisdiction != "" {
		j, err := calendar.ParseJurisdiction(req.Jurisdiction)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeRuleConfiguration,
				"cannot resolve jurisdiction").WithDetail(req.Jurisdiction)
		}
		jurisdiction = j
	}

	baseDate, err := ParseReportingPeriod(req.ReportingPeriod)
	if err != nil {
		return nil, err
	}

	frequency := req.Frequency
	if frequency == "" {
		frequency = InferFrequency(baseDate)
	}

	rule, err := c.rules.GetRule(ctx, req.ReportType, jurisdiction, frequency)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "rule lookup failed")
	}
	if rule == nil {
		return nil, apperrors.Newf(apperrors.ErrCodeRuleConfiguration,
			"no active rule for report type %q, jurisdiction %s, frequency %s",
			req.ReportType, jurisdiction, frequency)
	}
	if rule.SameDayDeadline() {
		c.logger.Warn("rule has zero offsets, deadline falls on the base date",
			logging.String("deadline_id", rule.DeadlineID))
	}

	rawDeadline, err := c.rawDeadline(jurisdiction, baseDate, rule)
	if err != nil {
		return nil, err
	}
	finalDeadline := c.arith.AdjustForWeekend(jurisdiction, rawDeadline, c.cfg.WeekendAdjustment)

	prepStart, err := c.arith.SubtractBusinessDays(jurisdiction, finalDeadline, rule.PreparationBackdateDays())
	if err != nil {
		return nil, err
	}
	reviewStart, err := c.arith.SubtractBusinessDays(jurisdiction, finalDeadline, rule.ReviewBackdateDays())
	if err != nil {
		return nil, err
	}

	today := calendar.Midnight(c.now())
	daysRemaining := calendarDaysBetween(today, finalDeadline)
	businessDaysRemaining := c.arith.CountBusinessDays(jurisdiction, today, finalDeadline)

	allMet, perDependency, err := c.resolver.Resolve(ctx, rule.Dependencies, req.ReportingPeriod)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "dependency resolution failed")
	}

	now := c.now()
	record := &CalculatedDeadline{
		CalculationID:         uuid.NewString(),
		DeadlineID:            rule.DeadlineID,
		ReportID:              req.ReportID,
		ReportType:            req.ReportType,
		ReportingPeriod:       req.ReportingPeriod,
		Jurisdiction:          jurisdiction,
		CalculatedDate:        finalDeadline,
		FinalDeadline:         finalDeadline,
		PreparationStartDate:  prepStart,
		ReviewStartDate:       reviewStart,
		Status:                StatusForDaysRemaining(daysRemaining, c.cfg.DueSoonWindowDays),
		DaysRemaining:         daysRemaining,
		BusinessDaysRemaining: businessDaysRemaining,
		DependenciesMet:       allMet,
		DependencyStatus:      perDependency,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := c.deadlines.Insert(ctx, record); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "persisting calculated deadline")
	}

	latency := c.now().Sub(started)
	c.metrics.RecordCalculation(latency)
	c.publish(ctx, Event{
		Type:            EventDeadlineCalculated,
		CalculationID:   record.CalculationID,
		DeadlineID:      record.DeadlineID,
		ReportType:      record.ReportType,
		ReportingPeriod: record.ReportingPeriod,
		Jurisdiction:    record.Jurisdiction,
		FinalDeadline:   record.FinalDeadline,
		Status:          record.Status,
		DaysRemaining:   record.DaysRemaining,
		OccurredAt:      now,
	})

	c.logger.Info("deadline calculated",
		logging.String("calculation_id", record.CalculationID),
		logging.String("report_type", record.ReportType),
		logging.String("reporting_period", record.ReportingPeriod),
		logging.String("jurisdiction", string(jurisdiction)),
		logging.Time("final_deadline", record.FinalDeadline),
		logging.String("status", string(record.Status)),
		logging.Duration("took", latency),
	)
	return record, nil
}

// rawDeadline applies the rule's active offset mode to the base date.
func (c *Calculator) rawDeadline(j calendar.Jurisdiction, baseDate time.Time, rule *RegulatoryDeadlineRule) (time.Time, error) {
	if rule.BusinessDaysOffset > 0 {
		return c.arith.AddBusinessDays(j, baseDate, rule.BusinessDaysOffset)
	}
	return calendar.Midnight(baseDate).AddDate(0, 0, rule.CalendarDaysOffset), nil
}

// UpdateStatus transitions a persisted deadline, recomputing the remaining
// day counts while it is at it.  Invalid transitions return a typed error.
func (c *Calculator) UpdateStatus(ctx context.Context, calculationID string, newStatus Status) (*CalculatedDeadline, error) {
	record, err := c.deadlines.GetByCalculationID(ctx, calculationID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.New(apperrors.ErrCodeDeadlineNotFound,
			"calculated deadline not found").WithDetail(calculationID)
	}
	if err := ValidateTransition(record.Status, newStatus); err != nil {
		return nil, err
	}

	today := calendar.Midnight(c.now())
	daysRemaining := calendarDaysBetween(today, record.FinalDeadline)
	businessDaysRemaining := c.arith.CountBusinessDays(record.Jurisdiction, today, record.FinalDeadline)

	changed, err := c.deadlines.UpdateStatus(ctx, calculationID, newStatus, daysRemaining, businessDaysRemaining)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "updating deadline status")
	}

	previous := record.Status
	record.Status = newStatus
	record.DaysRemaining = daysRemaining
	record.BusinessDaysRemaining = businessDaysRemaining
	record.UpdatedAt = c.now()

	if changed && previous != newStatus {
		c.metrics.RecordStatusUpdate()
		c.publish(ctx, Event{
			Type:            EventStatusChanged,
			CalculationID:   record.CalculationID,
			DeadlineID:      record.DeadlineID,
			ReportType:      record.ReportType,
			ReportingPeriod: record.ReportingPeriod,
			Jurisdiction:    record.Jurisdiction,
			FinalDeadline:   record.FinalDeadline,
			Status:          newStatus,
			PreviousStatus:  previous,
			DaysRemaining:   daysRemaining,
			OccurredAt:      record.UpdatedAt,
		})
	}
	return record, nil
}

// Complete marks a deadline COMPLETED.
func (c *Calculator) Complete(ctx context.Context, calculationID string) (*CalculatedDeadline, error) {
	return c.UpdateStatus(ctx, calculationID, StatusCompleted)
}

// Cancel marks a deadline CANCELLED.
func (c *Calculator) Cancel(ctx context.Context, calculationID string) (*CalculatedDeadline, error) {
	return c.UpdateStatus(ctx, calculationID, StatusCancelled)
}

// GetDeadline fetches one calculated deadline.
func (c *Calculator) GetDeadline(ctx context.Context, calculationID string) (*CalculatedDeadline, error) {
	record, err := c.deadlines.GetByCalculationID(ctx, calculationID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.New(apperrors.ErrCodeDeadlineNotFound,
			"calculated deadline not found").WithDetail(calculationID)
	}
	return record, nil
}

// ListUpcoming returns deadlines due within daysAhead days, soonest first.
func (c *Calculator) ListUpcoming(ctx context.Context, daysAhead int, filter ListFilter) ([]*CalculatedDeadline, error) {
	if daysAhead < 0 {
		return nil, apperrors.InvalidParam("days ahead must not be negative")
	}
	return c.deadlines.ListUpcoming(ctx, calendar.Midnight(c.now()), daysAhead, filter)
}

// ListOverdue returns past-due, non-terminal deadlines, soonest first.
func (c *Calculator) ListOverdue(ctx context.Context, filter ListFilter) ([]*CalculatedDeadline, error) {
	return c.deadlines.ListOverdue(ctx, calendar.Midnight(c.now()), filter)
}

func (c *Calculator) publish(ctx context.Context, event Event) {
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("event publish failed",
			logging.String("event_type", string(event.Type)),
			logging.String("calculation_id", event.CalculationID),
			logging.Err(err),
		)
	}
}

// calendarDaysBetween counts whole calendar days from one midnight to
// another; negative when to precedes from.
func calendarDaysBetween(from, to time.Time) int {
	return int(calendar.Midnight(to).Sub(calendar.Midnight(from)) / (24 * time.Hour))
}
