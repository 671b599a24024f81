package services

import (
	"sort"
	"time"

	"order-batch-service/internal/domain"
)

// OperatingWindows model the shop's intraday demand curve over the
// 08:30–22:45 operating band: midday and closing lulls, three regular
// periods, and three peaks.
var OperatingWindows = []domain.TimeWindow{
	{StartHour: 8.5, EndHour: 10, Weight: 1},
	{StartHour: 10, EndHour: 12, Weight: 3},
	{StartHour: 12, EndHour: 14, Weight: 0.3},
	{StartHour: 14, EndHour: 16, Weight: 1},
	{StartHour: 16, EndHour: 18, Weight: 3},
	{StartHour: 18, EndHour: 20, Weight: 1},
	{StartHour: 20, EndHour: 21.5, Weight: 3},
	{StartHour: 21.5, EndHour: 22.75, Weight: 0.8},
}

const (
	weekendDayWeight = 1.8
	weekdayDayWeight = 1.0

	// PeakWeightFloor marks a window as a peak. Sweep orders are
	// restricted to peak windows.
	PeakWeightFloor = 3.0

	// Orders never land after closing, except on the legacy late path.
	closeOfDayMinute = 22*60 + 45
)

// DayWeight is the calendar multiplier for a day's share of the order
// quota: weekends carry 1.8x the weekday load.
func DayWeight(t time.Time) float64 {
	if domain.IsWeekend(t) {
		return weekendDayWeight
	}
	return weekdayDayWeight
}

// calendarDays lists every midnight from start's day through end's day.
func calendarDays(start, end time.Time) []time.Time {
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())

	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// ComputeDayQuotas splits total orders across the horizon's days in
// proportion to day weight. Quotas sum to total exactly: the flooring
// shortfall is handed out one unit at a time to the heaviest days.
func ComputeDayQuotas(total int, start, end time.Time) []domain.DayPlan {
	days := calendarDays(start, end)
	if len(days) == 0 || total <= 0 {
		return nil
	}

	var totalWeight float64
	for _, d := range days {
		totalWeight += DayWeight(d)
	}

	plans := make([]domain.DayPlan, 0, len(days))
	remaining := total
	for i, d := range days {
		w := DayWeight(d)
		quota := int(float64(total) * w / totalWeight)
		// Every day gets at least one order while any remain, except
		// the last day which takes whatever is left below.
		if quota == 0 && remaining > 0 && i < len(days)-1 {
			quota = 1
		}
		if quota > remaining {
			quota = remaining
		}
		plans = append(plans, domain.DayPlan{Date: d, Weight: w, Quota: quota})
		remaining -= quota
	}

	if remaining > 0 {
		byWeight := make([]int, len(plans))
		for i := range byWeight {
			byWeight[i] = i
		}
		sort.SliceStable(byWeight, func(a, b int) bool {
			return plans[byWeight[a]].Weight > plans[byWeight[b]].Weight
		})
		for i := 0; i < remaining && i < len(byWeight); i++ {
			plans[byWeight[i]].Quota++
		}
	}

	return plans
}

// perDayCounts maps the actual order count onto the days in proportion
// to their quotas, with rounding leftovers going round-robin to the
// earliest days. The synthesizer rarely produces exactly the estimated
// total, so quotas are rescaled here rather than trusted verbatim.
func perDayCounts(orders int, days []domain.DayPlan) []int {
	counts := make([]int, len(days))

	totalQuota := 0
	for _, d := range days {
		totalQuota += d.Quota
	}

	assigned := 0
	if totalQuota > 0 {
		for i, d := range days {
			counts[i] = orders * d.Quota / totalQuota
			assigned += counts[i]
		}
	}
	for i := 0; assigned < orders; i = (i + 1) % len(days) {
		counts[i]++
		assigned++
	}
	return counts
}

// windowPool duplicates each operating window proportionally to
// weight x duration and shuffles the result. Orders assigned to a day
// draw cyclically from this pool.
func windowPool(s Sampler) []domain.TimeWindow {
	var pool []domain.TimeWindow
	for _, w := range OperatingWindows {
		dups := int(w.Duration()*w.Weight*2 + 0.5)
		if dups < 1 {
			dups = 1
		}
		for i := 0; i < dups; i++ {
			pool = append(pool, w)
		}
	}
	shuffle(s, pool)
	return pool
}

// timeWithin samples a uniform minute inside the window on the given
// day, clamped to the 22:45 close.
func timeWithin(s Sampler, day time.Time, w domain.TimeWindow) time.Time {
	startMin := int(w.StartHour * 60)
	span := int(w.Duration() * 60)
	m := startMin
	if span > 0 {
		m += s.Intn(span)
	}
	if m > closeOfDayMinute {
		m = closeOfDayMinute
	}
	return time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, day.Location())
}

// DistributeOrders assigns every non-sweep order a timestamp: orders
// are split across days per quota, then each day's orders draw
// cyclically from that day's shuffled window pool.
func DistributeOrders(s Sampler, orders []domain.OrderDraft, days []domain.DayPlan) []domain.OrderDraft {
	if len(orders) == 0 || len(days) == 0 {
		return orders
	}

	counts := perDayCounts(len(orders), days)

	out := make([]domain.OrderDraft, 0, len(orders))
	next := 0
	for di, day := range days {
		pool := windowPool(s)
		for k := 0; k < counts[di] && next < len(orders); k++ {
			o := orders[next]
			o.ScheduledAt = timeWithin(s, day.Date, pool[k%len(pool)])
			out = append(out, o)
			next++
		}
	}
	return out
}

// DistributeSweepOrders places sweep orders on weekend days when the
// horizon has any (falling back to Fri/Sat/Sun, then any day), inside
// peak windows only.
func DistributeSweepOrders(s Sampler, orders []domain.OrderDraft, days []domain.DayPlan) []domain.OrderDraft {
	if len(orders) == 0 || len(days) == 0 {
		return orders
	}

	target := filterDays(days, func(d time.Time) bool { return domain.IsWeekend(d) })
	if len(target) == 0 {
		target = filterDays(days, func(d time.Time) bool {
			wd := d.Weekday()
			return wd == time.Friday || wd == time.Saturday || wd == time.Sunday
		})
	}
	if len(target) == 0 {
		target = days
	}

	var peaks []domain.TimeWindow
	for _, w := range OperatingWindows {
		if w.Weight >= PeakWeightFloor {
			peaks = append(peaks, w)
		}
	}

	out := make([]domain.OrderDraft, 0, len(orders))
	for i, o := range orders {
		day := target[i%len(target)]
		if len(peaks) == 0 {
			o.ScheduledAt = time.Date(day.Date.Year(), day.Date.Month(), day.Date.Day(), 10, 0, 0, 0, day.Date.Location())
		} else {
			o.ScheduledAt = timeWithin(s, day.Date, peaks[s.Intn(len(peaks))])
		}
		out = append(out, o)
	}
	return out
}

func filterDays(days []domain.DayPlan, keep func(time.Time) bool) []domain.DayPlan {
	var out []domain.DayPlan
	for _, d := range days {
		if keep(d.Date) {
			out = append(out, d)
		}
	}
	return out
}

// Share of days that receive post-closing orders on the legacy path.
const lateOrderDayShare = 0.25

// ScheduleWholeHorizon is the older pool-based allocation path: one
// weighted slot pool over the whole horizon instead of per-day quotas.
// When lateOrders is set, roughly a quarter of the days additionally
// get 1–2 orders after closing (22:46–23:30). The per-day pipeline is
// authoritative; this path is kept for direct scheduling only.
func ScheduleWholeHorizon(s Sampler, total int, start, end time.Time, lateOrders bool) []time.Time {
	days := calendarDays(start, end)
	if len(days) == 0 || total <= 0 {
		return nil
	}

	var totalWeight float64
	for _, day := range days {
		dw := DayWeight(day)
		for _, w := range OperatingWindows {
			totalWeight += w.Duration() * w.Weight * dw
		}
	}

	var times []time.Time
	for _, day := range days {
		dw := DayWeight(day)
		for _, w := range OperatingWindows {
			slots := int(float64(total) * w.Duration() * w.Weight * dw / totalWeight)
			if slots < 1 {
				slots = 1
			}
			for k := 0; k < slots; k++ {
				times = append(times, timeWithin(s, day, w))
			}
		}
	}

	if lateOrders {
		lateDays := make(map[int]struct{})
		want := int(float64(len(days)) * lateOrderDayShare)
		for len(lateDays) < want {
			lateDays[s.Intn(len(days))] = struct{}{}
		}
		for di := range lateDays {
			day := days[di]
			for k := 0; k < 1+s.Intn(2); k++ {
				m := closeOfDayMinute + 1 + s.Intn(45)
				times = append(times, time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, day.Location()))
			}
		}
	}

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times
}
