package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
	apperrors "github.com/complyops/deadline-engine/pkg/errors"
)

func newTestArithmetic(t *testing.T) *Arithmetic {
	t.Helper()
	cache := NewCache(newTestBuilder(t), logging.NewNopLogger())
	return NewArithmetic(cache)
}

func TestAddBusinessDaysSkipsWeekendsAndHolidays(t *testing.T) {
	a := newTestArithmetic(t)

	// Thursday 2024-03-28 + 1: Good Friday, the weekend and Easter Monday
	// are all skipped, landing on Tuesday 2024-04-02.
	got, err := a.AddBusinessDays(JurisdictionEU, Date(2024, time.March, 28), 1)
	require.NoError(t, err)
	assert.Equal(t, Date(2024, time.April, 2), got)

	// Quarter-end Sunday 2024-03-31 + 28 business days, skipping Easter
	// Monday and Labour Day.
	got, err = a.AddBusinessDays(JurisdictionEU, Date(2024, time.March, 31), 28)
	require.NoError(t, err)
	assert.Equal(t, Date(2024, time.May, 10), got)
}

func TestAddBusinessDaysZeroReturnsStart(t *testing.T) {
	a := newTestArithmetic(t)

	sunday := Date(2024, time.March, 31)
	got, err := a.AddBusinessDays(JurisdictionEU, sunday, 0)
	require.NoError(t, err)
	assert.Equal(t, sunday, got, "zero offset must not adjust the start date")
}

func TestAddBusinessDaysRejectsNegative(t *testing.T) {
	a := newTestArithmetic(t)

	_, err := a.AddBusinessDays(JurisdictionEU, Date(2024, time.June, 3), -1)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))

	_, err = a.SubtractBusinessDays(JurisdictionEU, Date(2024, time.June, 3), -1)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestSubtractBusinessDaysInverse(t *testing.T) {
	a := newTestArithmetic(t)

	start := Date(2024, time.June, 3) // Monday, no nearby holidays
	forward, err := a.AddBusinessDays(JurisdictionEU, start, 7)
	require.NoError(t, err)
	back, err := a.SubtractBusinessDays(JurisdictionEU, forward, 7)
	require.NoError(t, err)
	assert.Equal(t, start, back)
}

func TestAddBusinessDaysCrossesYearBoundary(t *testing.T) {
	a := newTestArithmetic(t)

	// Tuesday 2024-12-31 + 2: January 1 is a holiday in the 2025 calendar.
	got, err := a.AddBusinessDays(JurisdictionEU, Date(2024, time.December, 31), 2)
	require.NoError(t, err)
	assert.Equal(t, Date(2025, time.January, 3), got)
}

func TestCountBusinessDaysHalfOpen(t *testing.T) {
	a := newTestArithmetic(t)

	monday := Date(2024, time.June, 3)
	nextMonday := Date(2024, time.June, 10)

	// [Mon, next Mon) spans exactly one working week.
	assert.Equal(t, 5, a.CountBusinessDays(JurisdictionEU, monday, nextMonday))

	// Degenerate and inverted intervals count zero.
	assert.Equal(t, 0, a.CountBusinessDays(JurisdictionEU, monday, monday))
	assert.Equal(t, 0, a.CountBusinessDays(JurisdictionEU, nextMonday, monday))

	// Holidays inside the interval are excluded: the Easter week.
	count := a.CountBusinessDays(JurisdictionEU, Date(2024, time.March, 25), Date(2024, time.April, 1))
	assert.Equal(t, 4, count, "Good Friday drops out of the working week")
}

func TestAdjustForWeekend(t *testing.T) {
	a := newTestArithmetic(t)

	saturday := Date(2024, time.June, 1)
	assert.Equal(t, Date(2024, time.June, 3),
		a.AdjustForWeekend(JurisdictionEU, saturday, NextBusinessDay))
	assert.Equal(t, Date(2024, time.May, 31),
		a.AdjustForWeekend(JurisdictionEU, saturday, PreviousBusinessDay))

	// Idempotent on business days.
	monday := Date(2024, time.June, 3)
	assert.Equal(t, monday, a.AdjustForWeekend(JurisdictionEU, monday, NextBusinessDay))

	// A holiday adjoining a weekend is stepped over entirely.
	goodFriday := Date(2024, time.March, 29)
	assert.Equal(t, Date(2024, time.April, 2),
		a.AdjustForWeekend(JurisdictionEU, goodFriday, NextBusinessDay))
}

func TestParseAdjustmentPolicy(t *testing.T) {
	p, err := ParseAdjustmentPolicy("previous_business_day")
	require.NoError(t, err)
	assert.Equal(t, PreviousBusinessDay, p)

	_, err = ParseAdjustmentPolicy("closest")
	assert.Error(t, err)
}

func TestCacheCountersAndReuse(t *testing.T) {
	cache := NewCache(newTestBuilder(t), logging.NewNopLogger())

	first := cache.Calendar(JurisdictionEU, 2024)
	second := cache.Calendar(JurisdictionEU, 2024)
	assert.Same(t, first, second)

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
	assert.Equal(t, int64(0), stats.Degraded)
}

func TestCachePrewarm(t *testing.T) {
	cache := NewCache(newTestBuilder(t), logging.NewNopLogger())
	cache.Prewarm(2024, 5)

	stats := cache.Stats()
	// 8 jurisdictions × 6 years each (2023 through 2028).
	assert.Equal(t, 48, stats.Entries)

	// Warmed lookups are hits.
	before := cache.Stats().Hits
	cache.Calendar(JurisdictionDE, 2026)
	assert.Equal(t, before+1, cache.Stats().Hits)
}

func TestCacheDegradesOnBuildFailure(t *testing.T) {
	builder := newTestBuilder(t).WithRuleset(JurisdictionEU, emptyRuleset{})
	cache := NewCache(builder, logging.NewNopLogger())

	cal := cache.Calendar(JurisdictionEU, 2024)
	require.NotNil(t, cal)
	assert.True(t, cal.Degraded())

	// Weekday-only semantics: Good Friday counts as a business day, the
	// weekend still does not.
	assert.True(t, cal.IsBusinessDay(Date(2024, time.March, 29)))
	assert.False(t, cal.IsBusinessDay(Date(2024, time.March, 30)))

	assert.Equal(t, int64(1), cache.Stats().Degraded)

	// The degraded calendar is cached; no repeat build attempt.
	again := cache.Calendar(JurisdictionEU, 2024)
	assert.Same(t, cal, again)
	assert.Equal(t, int64(1), cache.Stats().Degraded)
}
