package calendar

import (
	"time"

	apperrors "github.com/complyops/deadline-engine/pkg/errors"
)

// HolidayCalendar covers exactly one (jurisdiction, year) pair.  Every civil
// day of the year is either a business day or a non-business day; the two
// sets never overlap and together cover the full year.
type HolidayCalendar struct {
	jurisdiction Jurisdiction
	year         int
	holidays     map[time.Time]string // midnight UTC → holiday name
	weekdayMask  [7]bool              // indexed by time.Weekday
	degraded     bool                 // weekday-only fallback, no holiday data
}

// Jurisdiction returns the jurisdiction this calendar covers.
func (c *HolidayCalendar) Jurisdiction() Jurisdiction { return c.jurisdiction }

// Year returns the calendar year this calendar covers.
func (c *HolidayCalendar) Year() int { return c.year }

// Degraded reports whether the calendar was built without holiday data and
// treats every weekday as a business day.
func (c *HolidayCalendar) Degraded() bool { return c.degraded }

// IsHoliday reports whether t falls on a holiday, along with its name.
func (c *HolidayCalendar) IsHoliday(t time.Time) (bool, string) {
	name, ok := c.holidays[Midnight(t)]
	return ok, name
}

// IsBusinessDay reports whether t is a working day: a masked weekday that is
// not a holiday.
func (c *HolidayCalendar) IsBusinessDay(t time.Time) bool {
	d := Midnight(t)
	if !c.weekdayMask[d.Weekday()] {
		return false
	}
	_, holiday := c.holidays[d]
	return !holiday
}

// HolidayCount returns the number of holidays in the calendar year.
func (c *HolidayCalendar) HolidayCount() int { return len(c.holidays) }

// BusinessDays returns every business day of the year in ascending order.
func (c *HolidayCalendar) BusinessDays() []time.Time {
	return c.partition(true)
}

// NonBusinessDays returns every weekend day and holiday of the year in
// ascending order.  Together with BusinessDays it covers the whole year.
func (c *HolidayCalendar) NonBusinessDays() []time.Time {
	return c.partition(false)
}

func (c *HolidayCalendar) partition(business bool) []time.Time {
	start := Date(c.year, time.January, 1)
	end := Date(c.year+1, time.January, 1)
	var out []time.Time
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if c.IsBusinessDay(d) == business {
			out = append(out, d)
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Builder
// ─────────────────────────────────────────────────────────────────────────────

// Builder constructs HolidayCalendars from a weekly working-day mask and the
// built-in rulesets.  A custom ruleset can be injected per jurisdiction,
// which tests use to simulate ruleset failures.
type Builder struct {
	weekdayMask [7]bool
	overrides   map[Jurisdiction]HolidayRuleset
}

// NewBuilder creates a Builder from ISO weekday numbers (1=Monday …
// 7=Sunday), the same encoding the engine configuration uses.
func NewBuilder(businessWeekdays []int) (*Builder, error) {
	if len(businessWeekdays) == 0 {
		return nil, apperrors.InvalidParam("business weekday mask must not be empty")
	}
	b := &Builder{overrides: make(map[Jurisdiction]HolidayRuleset)}
	for _, iso := range businessWeekdays {
		if iso < 1 || iso > 7 {
			return nil, apperrors.Newf(apperrors.ErrCodeValidation, "weekday %d out of ISO range [1, 7]", iso)
		}
		b.weekdayMask[time.Weekday(iso%7)] = true // ISO 7 (Sunday) → Go 0
	}
	return b, nil
}

// WithRuleset overrides the built-in ruleset for j.
func (b *Builder) WithRuleset(j Jurisdiction, rs HolidayRuleset) *Builder {
	b.overrides[j] = rs
	return b
}

// Build assembles the calendar for one (jurisdiction, year) pair.  Holidays
// whose observed date shifts outside the year are dropped.
func (b *Builder) Build(j Jurisdiction, year int) (*HolidayCalendar, error) {
	rs, ok := b.overrides[j]
	if !ok {
		var err error
		rs, err = RulesetFor(j)
		if err != nil {
			return nil, err
		}
	}

	holidays := make(map[time.Time]string)
	for _, h := range rs.Holidays(year) {
		d := Midnight(h.Date)
		if d.Year() != year {
			continue
		}
		holidays[d] = h.Name
	}
	if len(holidays) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeCalendarDegraded,
			"holiday ruleset produced no holidays").WithDetail(string(j))
	}

	return &HolidayCalendar{
		jurisdiction: j,
		year:         year,
		holidays:     holidays,
		weekdayMask:  b.weekdayMask,
	}, nil
}

// BuildWeekdayOnly assembles a degraded calendar with no holiday data.  It
// is the availability fallback when the ruleset for a jurisdiction cannot
// produce a usable calendar: deadlines stay computable, skipping weekends
// only.
func (b *Builder) BuildWeekdayOnly(j Jurisdiction, year int) *HolidayCalendar {
	return &HolidayCalendar{
		jurisdiction: j,
		year:         year,
		holidays:     map[time.Time]string{},
		weekdayMask:  b.weekdayMask,
		degraded:     true,
	}
}
