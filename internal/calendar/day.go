package calendar

import (
	"time"

	"agendacal/internal/model"
)

// StartOfDay returns 00:00:00.000 of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndOfDay returns 23:59:59.999 of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 23, 59, 59, 999*int(time.Millisecond), loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DayKey renders t's calendar day in loc as "YYYY-MM-DD".
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// StartOfWeek returns 00:00 of the Monday on or before t in loc.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	d := StartOfDay(t, loc)
	// time.Weekday counts from Sunday; shift so Monday is 0.
	back := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -back)
}

// EventsForDay returns the events whose [start, end] interval intersects
// day's local [00:00:00.000, 23:59:59.999] window in loc. Intersection,
// not containment: a multi-day event appears on every day it touches.
// Invalid events are skipped.
func EventsForDay(events []model.Event, day time.Time, loc *time.Location) []model.Event {
	dayStart := StartOfDay(day, loc)
	dayEnd := EndOfDay(day, loc)

	out := make([]model.Event, 0)
	for _, ev := range events {
		if ev.Invalid || ev.Start.IsZero() {
			continue
		}
		if !ev.Start.After(dayEnd) && !ev.End.Before(dayStart) {
			out = append(out, ev)
		}
	}
	return out
}
