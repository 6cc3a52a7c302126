// Package calendar normalizes an in-game calendar into sanitized dates.
//
// A Source only has to report year, month and hour. Day of month, months per
// year, month lengths and hours per day are optional capabilities; when a
// source does not provide one the adapter falls back to the documented
// default instead of failing.
package calendar

import (
	"fmt"
	"math"
)

const (
	DefaultDay           = 1
	DefaultHour          = 0
	DefaultMonthsPerYear = 12
	DefaultDaysPerMonth  = 30
	DefaultHoursPerDay   = 24
)

type Source interface {
	Year() int
	Month() int // 1-based
	HourOfDay() float64
}

type DayOfMonthSource interface {
	DayOfMonth() int
}

type MonthsPerYearSource interface {
	MonthsPerYear() int
}

// MonthLengthSource reports per-month lengths for calendars with irregular months.
// ok=false means the month is unknown to the source.
type MonthLengthSource interface {
	DaysInMonth(month int) (days int, ok bool)
}

// DaysPerMonthSource reports a uniform month length.
type DaysPerMonthSource interface {
	DaysPerMonth() float64
}

type HoursPerDaySource interface {
	HoursPerDay() float64
}

type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
	Hour  int `json:"hour"`
}

// Stamp identifies the calendar hour, e.g. "0003-05-14-09".
func (d Date) Stamp() string {
	return fmt.Sprintf("%04d-%02d-%02d-%02d", d.Year, d.Month, d.Day, d.Hour)
}

type Adapter struct {
	src Source
}

func New(src Source) Adapter { return Adapter{src: src} }

func (a Adapter) Available() bool { return a.src != nil }

func (a Adapter) Year() int {
	if a.src == nil {
		return 0
	}
	return a.src.Year()
}

func (a Adapter) Now() Date {
	d := Date{Year: a.Year(), Month: 1, Day: DefaultDay, Hour: DefaultHour}
	if a.src == nil {
		return d
	}
	if m := a.src.Month(); m > 1 {
		d.Month = m
	}
	if h := math.Floor(a.src.HourOfDay()); h > 0 && !math.IsNaN(h) {
		d.Hour = int(h)
	}
	if ds, ok := a.src.(DayOfMonthSource); ok {
		if day := ds.DayOfMonth(); day > 1 {
			d.Day = day
		}
	}
	return d
}

func (a Adapter) MonthsPerYear() int {
	if ms, ok := a.src.(MonthsPerYearSource); ok {
		if n := ms.MonthsPerYear(); n >= 1 {
			return n
		}
		return 1
	}
	return DefaultMonthsPerYear
}

func (a Adapter) DaysInMonth(month int) int {
	if ml, ok := a.src.(MonthLengthSource); ok {
		if days, ok := ml.DaysInMonth(month); ok {
			return max(1, days)
		}
	}
	dpm := float64(DefaultDaysPerMonth)
	if ds, ok := a.src.(DaysPerMonthSource); ok {
		if v := ds.DaysPerMonth(); !math.IsNaN(v) {
			dpm = v
		}
	}
	return max(1, int(math.Floor(dpm+0.00001)))
}

func (a Adapter) HoursPerDay() int {
	hpd := float64(DefaultHoursPerDay)
	if hs, ok := a.src.(HoursPerDaySource); ok {
		if v := hs.HoursPerDay(); v > 0 && !math.IsNaN(v) {
			hpd = v
		}
	}
	return max(1, int(math.Ceil(hpd)))
}

// AddDays moves (month, day) forward by n days, rolling over month lengths and
// wrapping past the last month back to month 1.
func (a Adapter) AddDays(month, day, n int) (int, int) {
	m := month
	d := day + n
	months := a.MonthsPerYear()
	dim := a.DaysInMonth(m)
	for d > dim {
		d -= dim
		m++
		if m > months {
			m = 1
		}
		dim = a.DaysInMonth(m)
	}
	return m, d
}
