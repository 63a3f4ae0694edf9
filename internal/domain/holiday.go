package domain

import (
	"sort"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// Holiday is a non-business day. Recurring holidays match on month and day
// in every year; the year of Date is ignored for them.
type Holiday struct {
	Date      time.Time
	Name      string
	Recurring bool
}

type monthDay struct {
	month time.Month
	day   int
}

// HolidaySet is an immutable lookup structure over a list of holidays.
// A nil *HolidaySet has no holidays.
type HolidaySet struct {
	fixed     map[time.Time]Holiday
	recurring map[monthDay]Holiday
	size      int
}

// NewHolidaySet indexes holidays by calendar day.
func NewHolidaySet(holidays []Holiday) *HolidaySet {
	s := &HolidaySet{
		fixed:     make(map[time.Time]Holiday, len(holidays)),
		recurring: make(map[monthDay]Holiday),
	}

	for _, h := range holidays {
		h.Date = DateOf(h.Date)
		if h.Recurring {
			s.recurring[monthDay{h.Date.Month(), h.Date.Day()}] = h
			continue
		}
		s.fixed[h.Date] = h
	}
	s.size = len(s.fixed) + len(s.recurring)

	return s
}

// Len returns the number of distinct holidays in the set.
func (s *HolidaySet) Len() int {
	if s == nil {
		return 0
	}
	return s.size
}

// Lookup returns the holiday falling on date's calendar day, if any.
func (s *HolidaySet) Lookup(date time.Time) (Holiday, bool) {
	if s == nil {
		return Holiday{}, false
	}

	d := DateOf(date)
	if h, ok := s.fixed[d]; ok {
		return h, true
	}
	if h, ok := s.recurring[monthDay{d.Month(), d.Day()}]; ok {
		return h, true
	}

	return Holiday{}, false
}

// Holidays returns the set's holidays ordered by date.
func (s *HolidaySet) Holidays() []Holiday {
	if s == nil {
		return nil
	}

	out := make([]Holiday, 0, s.size)
	for _, h := range s.fixed {
		out = append(out, h)
	}
	for _, h := range s.recurring {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	return out
}

var federalHolidays = []*cal.Holiday{
	us.NewYear,
	us.MlkDay,
	us.PresidentsDay,
	us.MemorialDay,
	us.Juneteenth,
	us.IndependenceDay,
	us.LaborDay,
	us.ColumbusDay,
	us.VeteransDay,
	us.ThanksgivingDay,
	us.ChristmasDay,
}

// DefaultFederalHolidays returns the Federal Reserve holiday schedule for
// year. A holiday falling on Sunday is observed the following Monday; one
// falling on Saturday is not moved to Friday.
func DefaultFederalHolidays(year int) []Holiday {
	out := make([]Holiday, 0, len(federalHolidays)+2)

	for _, fh := range federalHolidays {
		actual, observed := fh.Calc(year)
		if actual.IsZero() {
			continue
		}

		out = append(out, Holiday{Date: DateOf(actual), Name: fh.Name})
		if !observed.IsZero() && DateOf(observed).After(DateOf(actual)) {
			out = append(out, Holiday{Date: DateOf(observed), Name: fh.Name + " (observed)"})
		}
	}

	return out
}
