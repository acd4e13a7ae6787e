package deadline

import (
	"regexp"
	"strconv"
	"time"

	"github.com/complyops/deadline-engine/internal/domain/calendar"
	apperrors "github.com/complyops/deadline-engine/pkg/errors"
)

// Recognized reporting-period shapes.
var (
	annualPeriodRe    = regexp.MustCompile(`^(\d{4})$`)
	monthlyPeriodRe   = regexp.MustCompile(`^(\d{4})-(0[1-9]|1[0-2])$`)
	quarterlyPeriodRe = regexp.MustCompile(`^(\d{4})-Q([1-4])$`)
)

// ParseReportingPeriod resolves a reporting-period string to its base date,
// the last calendar day of the period:
//
//	"2024"    -> 2024-12-31
//	"2024-07" -> 2024-07-31
//	"2024-Q1" -> 2024-03-31
//
// Any other shape is a period format error.
func ParseReportingPeriod(period string) (time.Time, error) {
	if m := annualPeriodRe.FindStringSubmatch(period); m != nil {
		year, _ := strconv.Atoi(m[1])
		return calendar.Date(year, time.December, 31), nil
	}
	if m := monthlyPeriodRe.FindStringSubmatch(period); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		// Day zero of the following month is the last day of this one.
		return calendar.Date(year, time.Month(month)+1, 0), nil
	}
	if m := quarterlyPeriodRe.FindStringSubmatch(period); m != nil {
		year, _ := strconv.Atoi(m[1])
		quarter, _ := strconv.Atoi(m[2])
		return calendar.Date(year, time.Month(quarter*3)+1, 0), nil
	}
	return time.Time{}, apperrors.FormatError(period)
}

// InferFrequency derives the reporting cadence from a period base date.
// December 31 is checked first: it satisfies the quarter-end shape too, and
// annual takes precedence.
func InferFrequency(baseDate time.Time) Frequency {
	d := calendar.Midnight(baseDate)
	if d.Month() == time.December && d.Day() == 31 {
		return FrequencyAnnual
	}
	if d.Day() >= 30 {
		switch d.Month() {
		case time.March, time.June, time.September, time.December:
			return FrequencyQuarterly
		}
	}
	return FrequencyMonthly
}
