package calendar

import (
	"time"

	apperrors "github.com/complyops/deadline-engine/pkg/errors"
)

// AdjustmentPolicy selects the direction a date landing on a non-business
// day is moved.
type AdjustmentPolicy string

const (
	NextBusinessDay     AdjustmentPolicy = "next_business_day"
	PreviousBusinessDay AdjustmentPolicy = "previous_business_day"
)

// ParseAdjustmentPolicy validates a policy string from configuration.
func ParseAdjustmentPolicy(raw string) (AdjustmentPolicy, error) {
	switch AdjustmentPolicy(raw) {
	case NextBusinessDay, PreviousBusinessDay:
		return AdjustmentPolicy(raw), nil
	default:
		return "", apperrors.Newf(apperrors.ErrCodeValidation,
			"unknown weekend adjustment policy %q", raw)
	}
}

// Source resolves the calendar covering a given (jurisdiction, year).  The
// Cache is the production implementation.
type Source interface {
	Calendar(j Jurisdiction, year int) *HolidayCalendar
}

// Arithmetic performs business-day date arithmetic over a calendar Source.
// Operations step one civil day at a time, so spans crossing a year boundary
// transparently pull in the neighboring year's calendar.
type Arithmetic struct {
	src Source
}

// NewArithmetic creates an Arithmetic over src.
func NewArithmetic(src Source) *Arithmetic {
	return &Arithmetic{src: src}
}

// IsBusinessDay reports whether t is a working day in j.
func (a *Arithmetic) IsBusinessDay(j Jurisdiction, t time.Time) bool {
	return a.src.Calendar(j, t.Year()).IsBusinessDay(t)
}

// AddBusinessDays returns the date n business days after start.  n must be
// ≥ 0; n of zero returns start unchanged (normalized to midnight UTC),
// whatever kind of day it is.
func (a *Arithmetic) AddBusinessDays(j Jurisdiction, start time.Time, n int) (time.Time, error) {
	if n < 0 {
		return time.Time{}, apperrors.InvalidParam("business day offset must not be negative")
	}
	d := Midnight(start)
	for remaining := n; remaining > 0; {
		d = d.AddDate(0, 0, 1)
		if a.IsBusinessDay(j, d) {
			remaining--
		}
	}
	return d, nil
}

// SubtractBusinessDays returns the date n business days before start.  n
// must be ≥ 0; n of zero returns start unchanged.
func (a *Arithmetic) SubtractBusinessDays(j Jurisdiction, start time.Time, n int) (time.Time, error) {
	if n < 0 {
		return time.Time{}, apperrors.InvalidParam("business day offset must not be negative")
	}
	d := Midnight(start)
	for remaining := n; remaining > 0; {
		d = d.AddDate(0, 0, -1)
		if a.IsBusinessDay(j, d) {
			remaining--
		}
	}
	return d, nil
}

// CountBusinessDays counts the business days in the half-open interval
// [start, end): start inclusive, end exclusive.  An end at or before start
// counts zero.
func (a *Arithmetic) CountBusinessDays(j Jurisdiction, start, end time.Time) int {
	from, to := Midnight(start), Midnight(end)
	count := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if a.IsBusinessDay(j, d) {
			count++
		}
	}
	return count
}

// AdjustForWeekend moves t onto a business day according to policy.  A date
// already on a business day is returned unchanged, making the operation
// idempotent.
func (a *Arithmetic) AdjustForWeekend(j Jurisdiction, t time.Time, policy AdjustmentPolicy) time.Time {
	d := Midnight(t)
	step := 1
	if policy == PreviousBusinessDay {
		step = -1
	}
	for !a.IsBusinessDay(j, d) {
		d = d.AddDate(0, 0, step)
	}
	return d
}
