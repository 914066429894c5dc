package scans

import (
	"context"
	"sort"
	"time"
)

const recentScansLimit = 20

// Analytics computes rollups by folding over committed scan events. Reads
// tolerate events still being written: the result reflects at least every
// event fully committed before the call began.
type Analytics struct {
	store EventStore
	now   func() time.Time
}

func NewAnalytics(store EventStore) *Analytics {
	return &Analytics{
		store: store,
		now:   time.Now,
	}
}

// Aggregate folds the scan events for a code over the trailing window.
func (a *Analytics) Aggregate(ctx context.Context, code string, days int) (*Aggregate, error) {
	if days <= 0 {
		days = 30
	}

	now := a.now().UTC()
	since := now.AddDate(0, 0, -days)

	events, err := a.store.ListByCodeSince(ctx, code, since)
	if err != nil {
		return nil, err
	}

	agg := &Aggregate{
		Devices:   make(map[string]int64),
		Browsers:  make(map[string]int64),
		Countries: make(map[string]int64),
	}

	today := now.Format(time.DateOnly)
	timeline := make(map[string]int64)

	for i := range events {
		ev := &events[i]
		agg.Total++

		day := ev.At.UTC().Format(time.DateOnly)
		timeline[day]++
		if day == today {
			agg.Today++
		}

		if ev.DeviceClass != "" {
			agg.Devices[string(ev.DeviceClass)]++
		}
		if ev.Browser != "" {
			agg.Browsers[ev.Browser]++
		}
		if ev.Country != "" {
			agg.Countries[ev.Country]++
		}
	}

	for day := dateOnly(since); !day.After(dateOnly(now)); day = day.AddDate(0, 0, 1) {
		ds := day.Format(time.DateOnly)
		agg.Timeline = append(agg.Timeline, DailyCount{Date: ds, Count: timeline[ds]})
	}

	sort.Slice(events, func(i, j int) bool { return events[i].At.After(events[j].At) })
	for i := range events {
		if i >= recentScansLimit {
			break
		}
		ev := &events[i]
		agg.Recent = append(agg.Recent, RecentScan{
			At:      ev.At,
			Country: ev.Country,
			City:    ev.City,
			Device:  string(ev.DeviceClass),
			Browser: ev.Browser,
			OS:      ev.OS,
		})
	}

	return agg, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
