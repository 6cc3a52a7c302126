package calendar

import "time"

type TickConfig struct {
	StartYear    int
	MonthLengths []int // empty = 12 months of DefaultDaysPerMonth
	HoursPerDay  int
	HourDuration time.Duration // real time per in-game hour
}

// TickCalendar derives the in-game date from elapsed simulation time.
type TickCalendar struct {
	cfg     TickConfig
	elapsed func() time.Duration
	offset  time.Duration
}

func NewTickCalendar(cfg TickConfig, elapsed func() time.Duration) *TickCalendar {
	if len(cfg.MonthLengths) == 0 {
		cfg.MonthLengths = make([]int, DefaultMonthsPerYear)
		for i := range cfg.MonthLengths {
			cfg.MonthLengths[i] = DefaultDaysPerMonth
		}
	}
	if cfg.HoursPerDay <= 0 {
		cfg.HoursPerDay = DefaultHoursPerDay
	}
	if cfg.HourDuration <= 0 {
		cfg.HourDuration = time.Minute
	}
	return &TickCalendar{cfg: cfg, elapsed: elapsed}
}

// Seek shifts the calendar so that the current moment becomes d.
func (c *TickCalendar) Seek(d Date) {
	c.offset = 0
	target := c.hoursUntil(d)
	now := c.totalHours()
	c.offset = time.Duration(target-now) * c.cfg.HourDuration
}

func (c *TickCalendar) hoursUntil(d Date) int {
	days := 0
	for m := 1; m < d.Month && m <= len(c.cfg.MonthLengths); m++ {
		days += c.cfg.MonthLengths[m-1]
	}
	days += d.Day - 1
	years := d.Year - c.cfg.StartYear
	return (years*c.daysPerYear()+days)*c.cfg.HoursPerDay + d.Hour
}

func (c *TickCalendar) daysPerYear() int {
	n := 0
	for _, l := range c.cfg.MonthLengths {
		n += l
	}
	return max(1, n)
}

func (c *TickCalendar) totalHours() int {
	return int((c.elapsed() + c.offset) / c.cfg.HourDuration)
}

func (c *TickCalendar) date() Date {
	hours := max(0, c.totalHours())
	day := hours / c.cfg.HoursPerDay
	d := Date{Hour: hours % c.cfg.HoursPerDay}
	d.Year = c.cfg.StartYear + day/c.daysPerYear()
	doy := day % c.daysPerYear()
	d.Month = 1
	for _, l := range c.cfg.MonthLengths {
		if doy < l {
			break
		}
		doy -= l
		d.Month++
	}
	d.Day = doy + 1
	return d
}

func (c *TickCalendar) Year() int            { return c.date().Year }
func (c *TickCalendar) Month() int           { return c.date().Month }
func (c *TickCalendar) DayOfMonth() int      { return c.date().Day }
func (c *TickCalendar) HourOfDay() float64   { return float64(c.date().Hour) }
func (c *TickCalendar) MonthsPerYear() int   { return len(c.cfg.MonthLengths) }
func (c *TickCalendar) HoursPerDay() float64 { return float64(c.cfg.HoursPerDay) }

func (c *TickCalendar) DaysInMonth(month int) (int, bool) {
	if month < 1 || month > len(c.cfg.MonthLengths) {
		return 0, false
	}
	return c.cfg.MonthLengths[month-1], true
}
