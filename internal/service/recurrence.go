package service

import (
	"time"

	"cashplan/internal/model"
)

// maxRollSteps bounds the restriction roll-forward loop to roughly ten years of
// daily steps. A configuration that finds no date within the bound is rejected
// instead of looping forever.
const maxRollSteps = 3660

// NextDate computes the next execution date after from for the given
// frequency. Dates are normalized to UTC midnight, so the result is
// deterministic for identical inputs.
//
// Month-based advances (monthly, quarterly, yearly, custom months/years) clamp
// to the last valid day of the target month: Jan 31 + 1 month is Feb 29 in a
// leap year, Feb 28 otherwise.
func NextDate(from time.Time, freq model.Frequency, custom *model.CustomFrequency) (time.Time, error) {
	day := truncateToDay(from)

	switch freq {
	case model.FrequencyDaily:
		return day.AddDate(0, 0, 1), nil
	case model.FrequencyWeekly:
		return day.AddDate(0, 0, 7), nil
	case model.FrequencyMonthly:
		return addMonthsClamped(day, 1), nil
	case model.FrequencyQuarterly:
		return addMonthsClamped(day, 3), nil
	case model.FrequencyYearly:
		return addMonthsClamped(day, 12), nil
	case model.FrequencyCustom:
		return nextCustomDate(day, custom)
	default:
		return time.Time{}, model.ErrInvalidFrequency
	}
}

func nextCustomDate(day time.Time, custom *model.CustomFrequency) (time.Time, error) {
	if custom == nil {
		return time.Time{}, model.ErrCustomFrequencyRequired
	}
	if err := custom.Validate(); err != nil {
		return time.Time{}, err
	}

	// Phase one: base interval advance.
	switch custom.Unit {
	case model.UnitDays:
		day = day.AddDate(0, 0, custom.Interval)
	case model.UnitWeeks:
		day = day.AddDate(0, 0, 7*custom.Interval)
	case model.UnitMonths:
		day = addMonthsClamped(day, custom.Interval)
	case model.UnitYears:
		day = addMonthsClamped(day, 12*custom.Interval)
	}

	// Phase two: roll forward until every present restriction set holds.
	for i := 0; i < maxRollSteps; i++ {
		if satisfiesRestrictions(day, custom) {
			return day, nil
		}
		day = day.AddDate(0, 0, 1)
	}
	return time.Time{}, model.ErrNoMatchingDate
}

func satisfiesRestrictions(day time.Time, custom *model.CustomFrequency) bool {
	if len(custom.DaysOfWeek) > 0 && !containsInt(custom.DaysOfWeek, int(day.Weekday())) {
		return false
	}
	if len(custom.DaysOfMonth) > 0 && !containsInt(custom.DaysOfMonth, day.Day()) {
		return false
	}
	if len(custom.MonthsOfYear) > 0 && !containsInt(custom.MonthsOfYear, int(day.Month())) {
		return false
	}
	return true
}

// addMonthsClamped advances by whole months, clamping the day of month to the
// end of the target month instead of letting time.AddDate spill into the next
// one (Jan 31 + 1 month would otherwise become Mar 2/3).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	if last := daysInMonth(target.Month(), target.Year()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(month time.Month, year int) int {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 1, -1).Day()
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
