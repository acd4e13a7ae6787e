package calendar

import (
	"time"

	apperrors "github.com/complyops/deadline-engine/pkg/errors"
)

// Holiday is a single non-working day within one jurisdiction's year.
type Holiday struct {
	Date time.Time
	Name string
}

// HolidayRuleset computes the public holidays of a jurisdiction for a given
// year.  Implementations must return dates normalized to midnight UTC.
type HolidayRuleset interface {
	Holidays(year int) []Holiday
}

// RulesetFor returns the built-in ruleset for j.
func RulesetFor(j Jurisdiction) (HolidayRuleset, error) {
	rs, ok := rulesets[j]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrCodeValidation, "no holiday ruleset for jurisdiction %q", j)
	}
	return rs, nil
}

// rulesetFunc adapts a plain function to HolidayRuleset.
type rulesetFunc func(year int) []Holiday

func (f rulesetFunc) Holidays(year int) []Holiday { return f(year) }

var rulesets = map[Jurisdiction]HolidayRuleset{
	JurisdictionEU: rulesetFunc(euHolidays),
	JurisdictionDE: rulesetFunc(deHolidays),
	JurisdictionFR: rulesetFunc(frHolidays),
	JurisdictionIT: rulesetFunc(itHolidays),
	JurisdictionES: rulesetFunc(esHolidays),
	JurisdictionNL: rulesetFunc(nlHolidays),
	JurisdictionUK: rulesetFunc(ukHolidays),
	JurisdictionUS: rulesetFunc(usHolidays),
}

// ─────────────────────────────────────────────────────────────────────────────
// Date helpers
// ─────────────────────────────────────────────────────────────────────────────

// Date returns the given civil date at midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Midnight truncates t to its civil date in UTC.
func Midnight(t time.Time) time.Time {
	u := t.UTC()
	return Date(u.Year(), u.Month(), u.Day())
}

// easterSunday computes Western Easter for the given year using the
// anonymous Gregorian algorithm.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return Date(year, time.Month(month), day)
}

// nthWeekday returns the n-th (1-based) occurrence of weekday in the month.
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	t := Date(year, month, 1)
	offset := (int(weekday) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, offset+(n-1)*7)
}

// lastWeekday returns the final occurrence of weekday in the month.
func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	t := Date(year, month+1, 1).AddDate(0, 0, -1) // last day of month
	offset := (int(t.Weekday()) - int(weekday) + 7) % 7
	return t.AddDate(0, 0, -offset)
}

// observedShift moves a fixed-date holiday falling on a weekend to the
// nearest working day, US federal style: Saturday observes Friday, Sunday
// observes Monday.
func observedShift(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	default:
		return t
	}
}

// mondayShift moves a holiday falling on a weekend forward to Monday, UK
// bank-holiday style.
func mondayShift(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, 2)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	default:
		return t
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Rulesets
// ─────────────────────────────────────────────────────────────────────────────

// euHolidays follows the ECB TARGET2 closing-day calendar, which governs
// EU-level supervisory reporting deadlines.
func euHolidays(year int) []Holiday {
	easter := easterSunday(year)
	return []Holiday{
		{Date(year, time.January, 1), "New Year's Day"},
		{easter.AddDate(0, 0, -2), "Good Friday"},
		{easter.AddDate(0, 0, 1), "Easter Monday"},
		{Date(year, time.May, 1), "Labour Day"},
		{Date(year, time.December, 25), "Christmas Day"},
		{Date(year, time.December, 26), "Christmas Holiday"},
	}
}

func deHolidays(year int) []Holiday {
	easter := easterSunday(year)
	return []Holiday{
		{Date(year, time.January, 1), "Neujahr"},
		{easter.AddDate(0, 0, -2), "Karfreitag"},
		{easter.AddDate(0, 0, 1), "Ostermontag"},
		{Date(year, time.May, 1), "Tag der Arbeit"},
		{easter.AddDate(0, 0, 39), "Christi Himmelfahrt"},
		{easter.AddDate(0, 0, 50), "Pfingstmontag"},
		{Date(year, time.October, 3), "Tag der Deutschen Einheit"},
		{Date(year, time.December, 25), "1. Weihnachtstag"},
		{Date(year, time.December, 26), "2. Weihnachtstag"},
	}
}

func frHolidays(year int) []Holiday {
	easter := easterSunday(year)
	return []Holiday{
		{Date(year, time.January, 1), "Jour de l'An"},
		{easter.AddDate(0, 0, 1), "Lundi de Pâques"},
		{Date(year, time.May, 1), "Fête du Travail"},
		{Date(year, time.May, 8), "Victoire 1945"},
		{easter.AddDate(0, 0, 39), "Ascension"},
		{easter.AddDate(0, 0, 50), "Lundi de Pentecôte"},
		{Date(year, time.July, 14), "Fête Nationale"},
		{Date(year, time.August, 15), "Assomption"},
		{Date(year, time.November, 1), "Toussaint"},
		{Date(year, time.November, 11), "Armistice 1918"},
		{Date(year, time.December, 25), "Noël"},
	}
}

func itHolidays(year int) []Holiday {
	easter := easterSunday(year)
	return []Holiday{
		{Date(year, time.January, 1), "Capodanno"},
		{Date(year, time.January, 6), "Epifania"},
		{easter.AddDate(0, 0, 1), "Lunedì dell'Angelo"},
		{Date(year, time.April, 25), "Festa della Liberazione"},
		{Date(year, time.May, 1), "Festa del Lavoro"},
		{Date(year, time.June, 2), "Festa della Repubblica"},
		{Date(year, time.August, 15), "Ferragosto"},
		{Date(year, time.November, 1), "Ognissanti"},
		{Date(year, time.December, 8), "Immacolata Concezione"},
		{Date(year, time.December, 25), "Natale"},
		{Date(year, time.December, 26), "Santo Stefano"},
	}
}

func esHolidays(year int) []Holiday {
	easter := easterSunday(year)
	return []Holiday{
		{Date(year, time.January, 1), "Año Nuevo"},
		{Date(year, time.January, 6), "Epifanía"},
		{easter.AddDate(0, 0, -2), "Viernes Santo"},
		{Date(year, time.May, 1), "Día del Trabajador"},
		{Date(year, time.August, 15), "Asunción"},
		{Date(year, time.October, 12), "Fiesta Nacional"},
		{Date(year, time.November, 1), "Todos los Santos"},
		{Date(year, time.December, 6), "Día de la Constitución"},
		{Date(year, time.December, 8), "Inmaculada Concepción"},
		{Date(year, time.December, 25), "Navidad"},
	}
}

func nlHolidays(year int) []Holiday {
	easter := easterSunday(year)
	// King's Day moves to April 26 when the 27th falls on a Sunday.
	kingsDay := Date(year, time.April, 27)
	if kingsDay.Weekday() == time.Sunday {
		kingsDay = Date(year, time.April, 26)
	}
	return []Holiday{
		{Date(year, time.January, 1), "Nieuwjaarsdag"},
		{easter.AddDate(0, 0, -2), "Goede Vrijdag"},
		{easter.AddDate(0, 0, 1), "Tweede Paasdag"},
		{kingsDay, "Koningsdag"},
		{Date(year, time.May, 5), "Bevrijdingsdag"},
		{easter.AddDate(0, 0, 39), "Hemelvaartsdag"},
		{easter.AddDate(0, 0, 50), "Tweede Pinksterdag"},
		{Date(year, time.December, 25), "Eerste Kerstdag"},
		{Date(year, time.December, 26), "Tweede Kerstdag"},
	}
}

// ukHolidays computes the England-and-Wales bank holidays.  Christmas and
// Boxing Day substitutes chain: when both fall over a weekend the observed
// days become the following Monday and Tuesday.
func ukHolidays(year int) []Holiday {
	easter := easterSunday(year)
	christmas := Date(year, time.December, 25)
	boxing := Date(year, time.December, 26)
	observedChristmas := mondayShift(christmas)
	observedBoxing := mondayShift(boxing)
	if observedBoxing.Equal(observedChristmas) || observedBoxing.Before(observedChristmas) {
		observedBoxing = observedChristmas.AddDate(0, 0, 1)
	}
	return []Holiday{
		{mondayShift(Date(year, time.January, 1)), "New Year's Day"},
		{easter.AddDate(0, 0, -2), "Good Friday"},
		{easter.AddDate(0, 0, 1), "Easter Monday"},
		{nthWeekday(year, time.May, time.Monday, 1), "Early May Bank Holiday"},
		{lastWeekday(year, time.May, time.Monday), "Spring Bank Holiday"},
		{lastWeekday(year, time.August, time.Monday), "Summer Bank Holiday"},
		{observedChristmas, "Christmas Day"},
		{observedBoxing, "Boxing Day"},
	}
}

// usHolidays computes the US federal holidays with observed-day shifting.
// A Saturday January 1 is observed on December 31 of the preceding year, so
// each year also checks the following year's New Year's Day.  Entries that
// shift out of the year are dropped by the calendar builder.
func usHolidays(year int) []Holiday {
	out := []Holiday{
		{observedShift(Date(year, time.January, 1)), "New Year's Day"},
		{nthWeekday(year, time.January, time.Monday, 3), "Martin Luther King Jr. Day"},
		{nthWeekday(year, time.February, time.Monday, 3), "Washington's Birthday"},
		{lastWeekday(year, time.May, time.Monday), "Memorial Day"},
		{observedShift(Date(year, time.June, 19)), "Juneteenth"},
		{observedShift(Date(year, time.July, 4)), "Independence Day"},
		{nthWeekday(year, time.September, time.Monday, 1), "Labor Day"},
		{nthWeekday(year, time.October, time.Monday, 2), "Columbus Day"},
		{observedShift(Date(year, time.November, 11)), "Veterans Day"},
		{nthWeekday(year, time.November, time.Thursday, 4), "Thanksgiving Day"},
		{observedShift(Date(year, time.December, 25)), "Christmas Day"},
	}
	if next := observedShift(Date(year+1, time.January, 1)); next.Year() == year {
		out = append(out, Holiday{next, "New Year's Day (observed)"})
	}
	return out
}
