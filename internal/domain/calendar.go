package domain

import (
	"fmt"
	"time"
)

// BusinessDayInfo describes a single calendar day.
type BusinessDayInfo struct {
	Date            time.Time
	IsBusinessDay   bool
	IsWeekend       bool
	IsHoliday       bool
	HolidayName     string
	NextBusinessDay time.Time
}

// IsWeekend reports whether date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsBusinessDay reports whether date is neither a weekend day nor a holiday.
func (s *HolidaySet) IsBusinessDay(date time.Time) bool {
	d := DateOf(date)
	if IsWeekend(d) {
		return false
	}
	_, holiday := s.Lookup(d)
	return !holiday
}

// NextBusinessDay returns the first business day strictly after date.
func (s *HolidaySet) NextBusinessDay(date time.Time) time.Time {
	d := DateOf(date).AddDate(0, 0, 1)
	for !s.IsBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// PreviousBusinessDay returns the last business day strictly before date.
func (s *HolidaySet) PreviousBusinessDay(date time.Time) time.Time {
	d := DateOf(date).AddDate(0, 0, -1)
	for !s.IsBusinessDay(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// AddBusinessDays applies NextBusinessDay n times. n = 0 returns date's
// calendar day unchanged even when it is not a business day.
func (s *HolidaySet) AddBusinessDays(date time.Time, n int) (time.Time, error) {
	if n < 0 {
		return time.Time{}, fmt.Errorf("%w: got %d", ErrInvalidBusinessDayCount, n)
	}

	d := DateOf(date)
	for i := 0; i < n; i++ {
		d = s.NextBusinessDay(d)
	}
	return d, nil
}

// BusinessDaysBetween counts business days d with start <= d < end.
func (s *HolidaySet) BusinessDaysBetween(start, end time.Time) int {
	from, to := DateOf(start), DateOf(end)
	if !to.After(from) {
		return 0
	}

	count := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if s.IsBusinessDay(d) {
			count++
		}
	}
	return count
}

// Info describes date against the set.
func (s *HolidaySet) Info(date time.Time) BusinessDayInfo {
	d := DateOf(date)
	h, holiday := s.Lookup(d)

	return BusinessDayInfo{
		Date:            d,
		IsBusinessDay:   !holiday && !IsWeekend(d),
		IsWeekend:       IsWeekend(d),
		IsHoliday:       holiday,
		HolidayName:     h.Name,
		NextBusinessDay: s.NextBusinessDay(d),
	}
}
