package services

import (
	"testing"
	"time"

	"order-batch-service/internal/domain"
)

func TestComputeDayQuotasSumExactly(t *testing.T) {
	// Mon 2026-03-02 through Sun 2026-03-08: five weekdays, two weekend
	// days.
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	for _, total := range []int{1, 7, 50, 143} {
		plans := ComputeDayQuotas(total, start, end)
		if len(plans) != 7 {
			t.Fatalf("total=%d: expected 7 day plans, got %d", total, len(plans))
		}
		sum := 0
		for _, p := range plans {
			if p.Quota < 0 {
				t.Fatalf("total=%d: negative quota on %s", total, p.Date.Format("2006-01-02"))
			}
			sum += p.Quota
		}
		if sum != total {
			t.Fatalf("total=%d: quotas sum to %d", total, sum)
		}
	}
}

func TestComputeDayQuotasEqualWeightSpread(t *testing.T) {
	// Mon 2026-03-02 through Fri 2026-03-06: five equal-weight weekdays.
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)

	plans := ComputeDayQuotas(100, start, end)
	if len(plans) != 5 {
		t.Fatalf("expected 5 day plans, got %d", len(plans))
	}

	sum, lo, hi := 0, plans[0].Quota, plans[0].Quota
	for _, p := range plans {
		sum += p.Quota
		if p.Quota < lo {
			lo = p.Quota
		}
		if p.Quota > hi {
			hi = p.Quota
		}
	}
	if sum != 100 {
		t.Fatalf("quotas sum to %d, want exactly 100", sum)
	}
	if hi-lo > 1 {
		t.Fatalf("equal-weight quota spread = %d (min %d, max %d), want at most 1", hi-lo, lo, hi)
	}
}

func TestComputeDayQuotasWeekendHeavier(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	plans := ComputeDayQuotas(200, start, end)

	var maxWeekday, minWeekend int
	minWeekend = 1 << 30
	for _, p := range plans {
		if domain.IsWeekend(p.Date) {
			if p.Quota < minWeekend {
				minWeekend = p.Quota
			}
		} else if p.Quota > maxWeekday {
			maxWeekday = p.Quota
		}
	}
	if minWeekend < maxWeekday {
		t.Fatalf("weekend quota %d below weekday quota %d", minWeekend, maxWeekday)
	}
}

func TestComputeDayQuotasMinOnePerDay(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	plans := ComputeDayQuotas(20, start, end)
	for _, p := range plans {
		if p.Quota == 0 {
			t.Fatalf("day %s got zero quota with 20 orders across 7 days", p.Date.Format("2006-01-02"))
		}
	}
}

func TestDistributeOrdersWithinOperatingBand(t *testing.T) {
	s := NewSeededSampler(11)
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	days := ComputeDayQuotas(60, start, end)

	orders := make([]domain.OrderDraft, 60)
	for i := range orders {
		orders[i] = domain.OrderDraft{Index: i, TotalAmount: 500_000}
	}

	placed := DistributeOrders(s, orders, days)
	if len(placed) != len(orders) {
		t.Fatalf("placed %d of %d orders", len(placed), len(orders))
	}

	open := 8*60 + 30
	close := 22*60 + 45
	for i, o := range placed {
		if o.ScheduledAt.Before(start) || o.ScheduledAt.After(end.AddDate(0, 0, 1)) {
			t.Fatalf("order %d scheduled outside the horizon: %s", i, o.ScheduledAt)
		}
		m := o.ScheduledAt.Hour()*60 + o.ScheduledAt.Minute()
		if m < open || m > close {
			t.Fatalf("order %d at minute %d outside 08:30-22:45", i, m)
		}
	}
}

func TestDistributeSweepOrdersLandOnWeekendPeaks(t *testing.T) {
	s := NewSeededSampler(23)
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	days := ComputeDayQuotas(40, start, end)

	sweeps := []domain.OrderDraft{
		{Index: 40, Sweep: true, TotalAmount: 120_000},
		{Index: 41, Sweep: true, TotalAmount: 90_000},
		{Index: 42, Sweep: true, TotalAmount: 150_000},
	}

	placed := DistributeSweepOrders(s, sweeps, days)
	if len(placed) != 3 {
		t.Fatalf("placed %d sweep orders, want 3", len(placed))
	}

	for i, o := range placed {
		if !domain.IsWeekend(o.ScheduledAt) {
			t.Fatalf("sweep %d on %s, want a weekend day", i, o.ScheduledAt.Weekday())
		}
		h := float64(o.ScheduledAt.Hour()) + float64(o.ScheduledAt.Minute())/60
		inPeak := false
		for _, w := range OperatingWindows {
			if w.Weight >= PeakWeightFloor && h >= w.StartHour && h < w.EndHour {
				inPeak = true
				break
			}
		}
		if !inPeak {
			t.Fatalf("sweep %d at %s not inside a peak window", i, o.ScheduledAt.Format("15:04"))
		}
	}
}

func TestDistributeSweepOrdersWeekdayOnlyHorizon(t *testing.T) {
	s := NewSeededSampler(23)
	// Mon through Fri: no weekend, fallback targets Friday.
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	days := ComputeDayQuotas(20, start, end)

	sweeps := []domain.OrderDraft{{Index: 20, Sweep: true}}
	placed := DistributeSweepOrders(s, sweeps, days)
	if len(placed) != 1 {
		t.Fatalf("placed %d sweep orders, want 1", len(placed))
	}
	if placed[0].ScheduledAt.Weekday() != time.Friday {
		t.Fatalf("sweep on %s, want Friday", placed[0].ScheduledAt.Weekday())
	}
}

func TestScheduleWholeHorizonLateOrders(t *testing.T) {
	s := NewSeededSampler(31)
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	times := ScheduleWholeHorizon(s, 120, start, end, true)
	if len(times) < 120 {
		t.Fatalf("expected at least 120 slots, got %d", len(times))
	}

	late := 0
	for i, tm := range times {
		if i > 0 && tm.Before(times[i-1]) {
			t.Fatal("slots are not sorted")
		}
		m := tm.Hour()*60 + tm.Minute()
		if m > 22*60+45 {
			late++
			if m > 23*60+30 {
				t.Fatalf("late slot %s past 23:30", tm.Format("15:04"))
			}
		}
	}
	if late == 0 {
		t.Fatal("expected some post-closing slots on the legacy path")
	}
}

func TestWindowPoolFavorsPeaks(t *testing.T) {
	s := NewSeededSampler(17)
	pool := windowPool(s)

	counts := make(map[float64]int)
	for _, w := range pool {
		counts[w.StartHour]++
	}
	// The 16-18 peak (weight 3) must appear more often than the 12-14
	// lull (weight 0.3).
	if counts[16] <= counts[12] {
		t.Fatalf("peak window dups %d not above lull dups %d", counts[16], counts[12])
	}
}
