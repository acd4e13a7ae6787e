package deadline

import (
	"time"

	"github.com/complyops/deadline-engine/internal/domain/calendar"
	apperrors "github.com/complyops/deadline-engine/pkg/errors"
)

// RegulatoryDeadlineRule is the static configuration for one
// (report type, jurisdiction, frequency, deadline type) combination.
// Rules are seeded at initialization, maintained administratively, and
// never deleted: deactivation hides them from lookup.
type RegulatoryDeadlineRule struct {
	DeadlineID   string               `json:"deadline_id"`
	ReportType   string               `json:"report_type"`
	Jurisdiction calendar.Jurisdiction `json:"jurisdiction"`
	Frequency    Frequency            `json:"frequency"`
	DeadlineType DeadlineType         `json:"deadline_type"`

	// Exactly one offset mode is active: BusinessDaysOffset wins when
	// nonzero, otherwise CalendarDaysOffset applies.
	BusinessDaysOffset int `json:"business_days_offset"`
	CalendarDaysOffset int `json:"calendar_days_offset"`

	LeadTimeDays   int `json:"lead_time_days"`
	ReviewTimeDays int `json:"review_time_days"`
	BufferDays     int `json:"buffer_days"`

	// Dependencies lists deadline IDs that must be COMPLETED for the same
	// reporting period before this rule's deadline is considered unblocked.
	Dependencies []string `json:"dependencies,omitempty"`

	// RegulatoryReference names the legal basis, e.g. "EBA/ITS/2013/03".
	RegulatoryReference string `json:"regulatory_reference,omitempty"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the rule's internal consistency.
func (r *RegulatoryDeadlineRule) Validate() error {
	if r.DeadlineID == "" {
		return apperrors.InvalidParam("rule deadline_id must not be empty")
	}
	if r.ReportType == "" {
		return apperrors.InvalidParam("rule report_type must not be empty")
	}
	if !r.Jurisdiction.IsSupported() {
		return apperrors.Newf(apperrors.ErrCodeValidation,
			"rule %s references unsupported jurisdiction %q", r.DeadlineID, r.Jurisdiction)
	}
	if !r.Frequency.IsValid() {
		return apperrors.Newf(apperrors.ErrCodeValidation,
			"rule %s has unknown frequency %q", r.DeadlineID, r.Frequency)
	}
	if !r.DeadlineType.IsValid() {
		return apperrors.Newf(apperrors.ErrCodeValidation,
			"rule %s has unknown deadline type %q", r.DeadlineID, r.DeadlineType)
	}
	if r.BusinessDaysOffset < 0 || r.CalendarDaysOffset < 0 {
		return apperrors.Newf(apperrors.ErrCodeValidation,
			"rule %s has a negative deadline offset", r.DeadlineID)
	}
	if r.LeadTimeDays < 0 || r.ReviewTimeDays < 0 || r.BufferDays < 0 {
		return apperrors.Newf(apperrors.ErrCodeValidation,
			"rule %s has a negative time budget", r.DeadlineID)
	}
	return nil
}

// SameDayDeadline reports whether both offsets are zero, which makes the
// deadline fall on the base date itself.  Almost always a misconfiguration;
// the calculator warns but proceeds.
func (r *RegulatoryDeadlineRule) SameDayDeadline() bool {
	return r.BusinessDaysOffset == 0 && r.CalendarDaysOffset == 0
}

// PreparationBackdateDays is the full back-calculation span for the
// preparation start date.
func (r *RegulatoryDeadlineRule) PreparationBackdateDays() int {
	return r.LeadTimeDays + r.ReviewTimeDays + r.BufferDays
}

// ReviewBackdateDays is the back-calculation span for the review start date.
func (r *RegulatoryDeadlineRule) ReviewBackdateDays() int {
	return r.ReviewTimeDays + r.BufferDays
}

// DefaultRules returns the rule set seeded into an empty store: the EU-wide
// supervisory reporting baselines.
func DefaultRules() []*RegulatoryDeadlineRule {
	return []*RegulatoryDeadlineRule{
		{
			DeadlineID:          "FINREP-EU-QUARTERLY",
			ReportType:          "FINREP",
			Jurisdiction:        calendar.JurisdictionEU,
			Frequency:           FrequencyQuarterly,
			DeadlineType:        DeadlineTypeSubmission,
			BusinessDaysOffset:  28,
			LeadTimeDays:        14,
			ReviewTimeDays:      5,
			BufferDays:          2,
			RegulatoryReference: "EBA/ITS/2013/03",
			IsActive:            true,
		},
		{
			DeadlineID:          "FINREP-EU-ANNUAL",
			ReportType:          "FINREP",
			Jurisdiction:        calendar.JurisdictionEU,
			Frequency:           FrequencyAnnual,
			DeadlineType:        DeadlineTypeSubmission,
			BusinessDaysOffset:  35,
			LeadTimeDays:        21,
			ReviewTimeDays:      7,
			BufferDays:          3,
			RegulatoryReference: "EBA/ITS/2013/03",
			IsActive:            true,
		},
		{
			DeadlineID:          "COREP-EU-QUARTERLY",
			ReportType:          "COREP",
			Jurisdiction:        calendar.JurisdictionEU,
			Frequency:           FrequencyQuarterly,
			DeadlineType:        DeadlineTypeSubmission,
			BusinessDaysOffset:  28,
			LeadTimeDays:        14,
			ReviewTimeDays:      5,
			BufferDays:          2,
			RegulatoryReference: "EBA/ITS/2014/04",
			IsActive:            true,
		},
		{
			DeadlineID:          "DORA-ICT-EU-ANNUAL",
			ReportType:          "DORA_ICT",
			Jurisdiction:        calendar.JurisdictionEU,
			Frequency:           FrequencyAnnual,
			DeadlineType:        DeadlineTypeSubmission,
			BusinessDaysOffset:  60,
			LeadTimeDays:        30,
			ReviewTimeDays:      10,
			BufferDays:          5,
			RegulatoryReference: "EU/2022/2554",
			IsActive:            true,
		},
	}
}
