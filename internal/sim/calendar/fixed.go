package calendar

// Fixed is a settable calendar. A nil MonthLengths falls back to DaysPerMonthValue.
type Fixed struct {
	Y, M, D int
	H       float64

	Months            int
	MonthLengths      []int
	DaysPerMonthValue float64
	Hours             float64
}

func (f *Fixed) Year() int          { return f.Y }
func (f *Fixed) Month() int         { return f.M }
func (f *Fixed) HourOfDay() float64 { return f.H }
func (f *Fixed) DayOfMonth() int    { return f.D }

func (f *Fixed) MonthsPerYear() int {
	if f.Months > 0 {
		return f.Months
	}
	if len(f.MonthLengths) > 0 {
		return len(f.MonthLengths)
	}
	return DefaultMonthsPerYear
}

func (f *Fixed) DaysInMonth(month int) (int, bool) {
	if month < 1 || month > len(f.MonthLengths) {
		return 0, false
	}
	return f.MonthLengths[month-1], true
}

func (f *Fixed) DaysPerMonth() float64 {
	if f.DaysPerMonthValue > 0 {
		return f.DaysPerMonthValue
	}
	return DefaultDaysPerMonth
}

func (f *Fixed) HoursPerDay() float64 {
	if f.Hours > 0 {
		return f.Hours
	}
	return DefaultHoursPerDay
}

// Set moves the calendar to the given date.
func (f *Fixed) Set(d Date) {
	f.Y, f.M, f.D, f.H = d.Year, d.Month, d.Day, float64(d.Hour)
}
