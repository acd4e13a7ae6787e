package deadline

import (
	"time"

	"github.com/complyops/deadline-engine/internal/domain/calendar"
)

// CalculatedDeadline is one computed deadline instance for a specific
// reporting period.  Records are created by the Calculator and afterwards
// mutated only through status transitions; CANCELLED marks logical removal,
// nothing is physically deleted.
type CalculatedDeadline struct {
	CalculationID   string                `json:"calculation_id"`
	DeadlineID      string                `json:"deadline_id"`
	ReportID        string                `json:"report_id,omitempty"`
	ReportType      string                `json:"report_type"`
	ReportingPeriod string                `json:"reporting_period"`
	Jurisdiction    calendar.Jurisdiction `json:"jurisdiction"`

	// CalculatedDate and FinalDeadline coincide; FinalDeadline is the
	// canonical weekend-adjusted due date.
	CalculatedDate time.Time `json:"calculated_date"`
	FinalDeadline  time.Time `json:"final_deadline"`

	PreparationStartDate time.Time `json:"preparation_start_date"`
	ReviewStartDate      time.Time `json:"review_start_date"`

	Status                Status `json:"status"`
	DaysRemaining         int    `json:"days_remaining"`
	BusinessDaysRemaining int    `json:"business_days_remaining"`

	DependenciesMet  bool            `json:"dependencies_met"`
	DependencyStatus map[string]bool `json:"dependency_status,omitempty"`

	// AlertsSent records which early-warning thresholds have already fired,
	// in firing order, so each threshold alerts at most once.
	AlertsSent []int `json:"alerts_sent,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AlertSentFor reports whether the given threshold has already fired.
func (d *CalculatedDeadline) AlertSentFor(threshold int) bool {
	for _, t := range d.AlertsSent {
		if t == threshold {
			return true
		}
	}
	return false
}
