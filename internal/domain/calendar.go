package domain

import "time"

// TimeWindow is an intraday scheduling window. Hours are fractional
// (8.5 means 08:30); Weight drives how many orders land inside it.
type TimeWindow struct {
	StartHour float64
	EndHour   float64
	Weight    float64
}

// Duration of the window in hours.
func (w TimeWindow) Duration() float64 {
	return w.EndHour - w.StartHour
}

// DayPlan carries one calendar day's weight and its integer share of
// the batch's total order count.
type DayPlan struct {
	Date   time.Time
	Weight float64
	Quota  int
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
