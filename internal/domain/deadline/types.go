// Package deadline implements regulatory deadline calculation: rule lookup
// with jurisdiction fallback, deadline derivation from reporting periods,
// preparation and review back-calculation, dependency gating and the status
// lifecycle.
package deadline

import (
	apperrors "github.com/complyops/deadline-engine/pkg/errors"
)

// Frequency is the reporting cadence a rule applies to.
type Frequency string

const (
	FrequencyDaily      Frequency = "DAILY"
	FrequencyWeekly     Frequency = "WEEKLY"
	FrequencyMonthly    Frequency = "MONTHLY"
	FrequencyQuarterly  Frequency = "QUARTERLY"
	FrequencySemiAnnual Frequency = "SEMI_ANNUAL"
	FrequencyAnnual     Frequency = "ANNUAL"
	FrequencyAdHoc      Frequency = "AD_HOC"
)

// IsValid reports whether f is a known frequency.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly,
		FrequencySemiAnnual, FrequencyAnnual, FrequencyAdHoc:
		return true
	}
	return false
}

// DeadlineType distinguishes what phase of the filing lifecycle a rule
// schedules.
type DeadlineType string

const (
	DeadlineTypeSubmission  DeadlineType = "SUBMISSION"
	DeadlineTypePreparation DeadlineType = "PREPARATION"
	DeadlineTypeReview      DeadlineType = "REVIEW"
	DeadlineTypeApproval    DeadlineType = "APPROVAL"
	DeadlineTypeDelivery    DeadlineType = "DELIVERY"
)

// IsValid reports whether t is a known deadline type.
func (t DeadlineType) IsValid() bool {
	switch t {
	case DeadlineTypeSubmission, DeadlineTypePreparation, DeadlineTypeReview,
		DeadlineTypeApproval, DeadlineTypeDelivery:
		return true
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Status lifecycle
// ─────────────────────────────────────────────────────────────────────────────

// Status is the scheduling state of a calculated deadline.
//
// UPCOMING, DUE_SOON and OVERDUE are derived from date math and re-evaluated
// idempotently on every refresh; they only ever move forward as time
// advances.  COMPLETED and CANCELLED are terminal and set only by explicit
// calls, never inferred from dates.
type Status string

const (
	StatusUpcoming  Status = "UPCOMING"
	StatusDueSoon   Status = "DUE_SOON"
	StatusOverdue   Status = "OVERDUE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusDueSoon, StatusOverdue, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether s ends the scheduling lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// statusRank orders the date-derived states so transitions can be checked
// for monotonicity.
var statusRank = map[Status]int{
	StatusUpcoming: 0,
	StatusDueSoon:  1,
	StatusOverdue:  2,
}

// CanTransition reports whether moving from one status to another is
// allowed.  Date-derived states move forward only; any non-terminal state
// may move to COMPLETED or CANCELLED; terminal states never change.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	if from.IsTerminal() {
		return false
	}
	if to.IsTerminal() {
		return true
	}
	return statusRank[to] > statusRank[from]
}

// StatusForDaysRemaining derives the date-based status from calendar days
// remaining: negative means OVERDUE, within the due-soon window means
// DUE_SOON, anything further out is UPCOMING.
func StatusForDaysRemaining(daysRemaining, dueSoonWindowDays int) Status {
	switch {
	case daysRemaining < 0:
		return StatusOverdue
	case daysRemaining <= dueSoonWindowDays:
		return StatusDueSoon
	default:
		return StatusUpcoming
	}
}

// ValidateTransition returns a typed error when the transition is not
// allowed.
func ValidateTransition(from, to Status) error {
	if !to.IsValid() {
		return apperrors.Newf(apperrors.ErrCodeValidation, "unknown status %q", to)
	}
	if !CanTransition(from, to) {
		return apperrors.Newf(apperrors.ErrCodeStatusTransition,
			"status transition %s -> %s is not allowed", from, to)
	}
	return nil
}
