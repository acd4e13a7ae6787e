package deadline

import (
	"context"
	"time"

	"github.com/complyops/deadline-engine/internal/domain/calendar"
)

// RuleRepository persists RegulatoryDeadlineRule records.
type RuleRepository interface {
	// LoadActiveRules returns every active rule, newest first.
	LoadActiveRules(ctx context.Context) ([]*RegulatoryDeadlineRule, error)

	// FindRule returns the most recently created active rule matching the
	// exact (report type, jurisdiction, frequency) triple, or (nil, nil)
	// when none matches.
	FindRule(ctx context.Context, reportType string, jurisdiction calendar.Jurisdiction, frequency Frequency) (*RegulatoryDeadlineRule, error)

	// UpsertRule inserts or replaces a rule by its deadline ID.
	UpsertRule(ctx context.Context, rule *RegulatoryDeadlineRule) error

	// DeactivateRule soft-deletes a rule, hiding it from lookup.
	DeactivateRule(ctx context.Context, deadlineID string) error

	// SeedDefaultsIfEmpty inserts the default rule set when the store holds
	// no rules at all, returning how many rules were seeded.
	SeedDefaultsIfEmpty(ctx context.Context) (int, error)
}

// ListFilter narrows deadline listings; zero values mean no filtering.
type ListFilter struct {
	Jurisdiction calendar.Jurisdiction
	ReportType   string
}

// DeadlineRepository persists CalculatedDeadline records.
type DeadlineRepository interface {
	Insert(ctx context.Context, d *CalculatedDeadline) error

	GetByCalculationID(ctx context.Context, calculationID string) (*CalculatedDeadline, error)

	// ListUpcoming returns non-terminal deadlines due within daysAhead days
	// of asOf, soonest first.
	ListUpcoming(ctx context.Context, asOf time.Time, daysAhead int, filter ListFilter) ([]*CalculatedDeadline, error)

	// ListOverdue returns deadlines past due at asOf that are not terminal,
	// soonest first.
	ListOverdue(ctx context.Context, asOf time.Time, filter ListFilter) ([]*CalculatedDeadline, error)

	// UpdateStatus transitions a record's status.  The store enforces that
	// terminal records are never modified; it reports whether a row changed.
	UpdateStatus(ctx context.Context, calculationID string, status Status, daysRemaining, businessDaysRemaining int) (bool, error)

	// RecordAlert appends a fired early-warning threshold to the record's
	// alerts_sent list.
	RecordAlert(ctx context.Context, calculationID string, threshold int) error

	// CompletedByDeadlineIDs reports, in a single snapshot, which of the
	// given deadline IDs have a COMPLETED record for the reporting period.
	CompletedByDeadlineIDs(ctx context.Context, deadlineIDs []string, reportingPeriod string) (map[string]bool, error)
}
