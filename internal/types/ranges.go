package types

import "time"

// DayOf returns the calendar-day range containing now (midnight to
// 23:59:59 local time).
func DayOf(now time.Time) DateRange {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	return DateRange{From: start, To: end}
}

// WeekToDate returns Monday 00:00 of the current week up to now.
func WeekToDate(now time.Time) DateRange {
	daysFromMonday := int(now.Weekday()) - 1
	if now.Weekday() == time.Sunday {
		daysFromMonday = 6
	}
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -daysFromMonday)
	return DateRange{From: monday, To: now}
}

// MonthToDate returns the 1st of the current month 00:00 up to now.
func MonthToDate(now time.Time) DateRange {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return DateRange{From: start, To: now}
}
