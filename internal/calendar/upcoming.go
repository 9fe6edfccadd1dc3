package calendar

import (
	"sort"
	"time"

	"agendacal/internal/model"
)

// NextUpcoming returns the event with the earliest start at or after
// now, or nil when there is none. Ties on start keep input order (the
// first qualifying event wins); invalid events never qualify.
func NextUpcoming(events []model.Event, now time.Time) *model.Event {
	var best *model.Event
	for i := range events {
		ev := events[i]
		if ev.Invalid || ev.Start.IsZero() || ev.Start.Before(now) {
			continue
		}
		if best == nil || ev.Start.Before(best.Start) {
			c := ev
			best = &c
		}
	}
	return best
}

// PastWindowLowerBound computes the visibility lower bound for an agenda
// list. With windowDays 0 only future events are visible (bound = now);
// with windowDays N > 0 the bound widens to the start of today in loc
// minus N days.
func PastWindowLowerBound(now time.Time, windowDays int, loc *time.Location) time.Time {
	if windowDays <= 0 {
		return now
	}
	return StartOfDay(now, loc).AddDate(0, 0, -windowDays)
}

// FilterFrom returns the events whose start is at or after lower, in
// input order, excluding invalid events.
func FilterFrom(events []model.Event, lower time.Time) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.Invalid || ev.Start.IsZero() || ev.Start.Before(lower) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Section is one calendar day of a grouped agenda list.
type Section struct {
	Key    string // "YYYY-MM-DD" in the grouping timezone
	Label  string // localized long day label
	Events []model.Event
}

// GroupByDay buckets events into one section per distinct calendar day
// in loc. Events inside a section are ordered ascending by start (stable
// for ties); sections are ordered ascending by day key. Invalid events
// are skipped.
func GroupByDay(events []model.Event, loc *time.Location, labels *Labels) []Section {
	sorted := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.Invalid || ev.Start.IsZero() {
			continue
		}
		sorted = append(sorted, ev)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	sections := make([]Section, 0)
	for _, ev := range sorted {
		key := DayKey(ev.Start, loc)
		if n := len(sections); n > 0 && sections[n-1].Key == key {
			sections[n-1].Events = append(sections[n-1].Events, ev)
			continue
		}
		sections = append(sections, Section{
			Key:    key,
			Label:  labels.LongDate(ev.Start.In(loc)),
			Events: []model.Event{ev},
		})
	}
	return sections
}
