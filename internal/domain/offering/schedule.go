package offering

import (
	"errors"
	"time"

	"escrowbook/internal/domain/timeslot"
)

var (
	ErrInvalidWindow        = errors.New("window start must be before end and within the day")
	ErrInvalidExceptionDate = errors.New("exception date must be YYYY-MM-DD")
)

const minutesPerDay = 24 * 60

// Window is an enabled service range within one weekday, in minutes from
// local midnight. Minutes rather than clock strings keep validation and
// interval math trivial; the handler layer converts from "HH:MM".
type Window struct {
	Enabled  bool
	StartMin int16
	EndMin   int16
}

func (w Window) Validate() error {
	if !w.Enabled {
		return nil
	}
	if w.StartMin < 0 || w.EndMin > minutesPerDay || w.StartMin >= w.EndMin {
		return ErrInvalidWindow
	}
	return nil
}

// WeeklySchedule holds one window per weekday, indexed by time.Weekday
// (Sunday = 0).
type WeeklySchedule [7]Window

func (s WeeklySchedule) Validate() error {
	for _, w := range s {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// HasServiceHours reports whether any weekday is enabled at all.
func (s WeeklySchedule) HasServiceHours() bool {
	for _, w := range s {
		if w.Enabled {
			return true
		}
	}
	return false
}

// Exception fully disables or overrides the window of a single date.
// Date is the local date in the offering's timezone, "2006-01-02".
type Exception struct {
	Date     string
	Enabled  bool
	StartMin int16
	EndMin   int16
	Reason   string
}

func (e Exception) Validate() error {
	if _, err := time.Parse("2006-01-02", e.Date); err != nil {
		return ErrInvalidExceptionDate
	}
	if e.Enabled {
		if e.StartMin < 0 || e.EndMin > minutesPerDay || e.StartMin >= e.EndMin {
			return ErrInvalidWindow
		}
	}
	return nil
}

// WindowsOn resolves the service window for one local date, applying any
// exception override, and returns it as an absolute interval. A disabled day
// yields no interval.
func (o *Offering) WindowsOn(date time.Time) []timeslot.Interval {
	loc := o.Location()
	local := date.In(loc)
	year, month, day := local.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, loc)
	dateKey := midnight.Format("2006-01-02")

	for _, ex := range o.exceptions {
		if ex.Date != dateKey {
			continue
		}
		if !ex.Enabled {
			return nil
		}
		return []timeslot.Interval{minutesToInterval(midnight, ex.StartMin, ex.EndMin)}
	}

	w := o.schedule[local.Weekday()]
	if !w.Enabled {
		return nil
	}
	return []timeslot.Interval{minutesToInterval(midnight, w.StartMin, w.EndMin)}
}

func minutesToInterval(midnight time.Time, startMin, endMin int16) timeslot.Interval {
	return timeslot.Interval{
		Start: midnight.Add(time.Duration(startMin) * time.Minute),
		End:   midnight.Add(time.Duration(endMin) * time.Minute),
	}
}
