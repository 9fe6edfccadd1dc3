package calendar

import (
	"time"

	"agendacal/internal/model"
)

const (
	// monthMatrixCells is the fixed size of a month view: 6 full weeks
	// starting on the Monday on or before the 1st, regardless of how many
	// weeks the month actually spans.
	monthMatrixCells = 42

	// DefaultDisplayCap is the number of events shown per month cell
	// before the remainder collapses into an overflow count.
	DefaultDisplayCap = 3

	// minVisibleHeight keeps zero- and short-duration events clickable in
	// the week view: no visible block is shorter than 6% of the track.
	minVisibleHeight = 0.06
)

// MonthCell is one day of the 42-cell month matrix.
type MonthCell struct {
	Date     time.Time
	InMonth  bool
	Events   []model.Event
	Overflow int
}

// MonthOptions tunes month matrix construction.
type MonthOptions struct {
	// DisplayCap bounds Events per cell; values <= 0 mean
	// DefaultDisplayCap.
	DisplayCap int
}

// BuildMonthMatrix lays out the month containing anchor as 42
// consecutive days in loc, Monday first. Each cell reports whether it
// belongs to the anchor month and which events intersect it, truncated
// to the display cap with the excess in Overflow.
func BuildMonthMatrix(anchor time.Time, events []model.Event, loc *time.Location, opts MonthOptions) []MonthCell {
	limit := opts.DisplayCap
	if limit <= 0 {
		limit = DefaultDisplayCap
	}

	la := anchor.In(loc)
	first := time.Date(la.Year(), la.Month(), 1, 0, 0, 0, 0, loc)
	gridStart := StartOfWeek(first, loc)

	cells := make([]MonthCell, 0, monthMatrixCells)
	for i := 0; i < monthMatrixCells; i++ {
		day := gridStart.AddDate(0, 0, i)
		dayEvents := EventsForDay(events, day, loc)

		shown := dayEvents
		overflow := 0
		if len(dayEvents) > limit {
			shown = dayEvents[:limit]
			overflow = len(dayEvents) - limit
		}

		cells = append(cells, MonthCell{
			Date:     day,
			InMonth:  day.Month() == la.Month() && day.Year() == la.Year(),
			Events:   shown,
			Overflow: overflow,
		})
	}
	return cells
}

// HourRange bounds the visible vertical axis of the week view.
type HourRange struct {
	Start int
	End   int
}

// DefaultHourRange covers the usual consultation hours.
var DefaultHourRange = HourRange{Start: 7, End: 20}

// normalized clamps the range into [0, 24] and falls back to the default
// when the result would be empty, so fraction denominators are never
// zero.
func (r HourRange) normalized() HourRange {
	r.Start = clampInt(r.Start, 0, 24)
	r.End = clampInt(r.End, 0, 24)
	if r.Start >= r.End {
		return DefaultHourRange
	}
	return r
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// EventBlock places one event inside a week day column. TopFraction and
// HeightFraction are fractions of the visible hour track in [0, 1].
// Clipped marks events that belong to the day but lie entirely outside
// the hour range; they keep their clamped position with zero height so
// callers can decide whether to show a sliver or suppress them.
type EventBlock struct {
	Event          model.Event
	TopFraction    float64
	HeightFraction float64
	Clipped        bool
}

// WeekDay is one column of the week view.
type WeekDay struct {
	Date   time.Time
	Events []EventBlock
}

// WeekLayout is the Monday-start 7-day view with events positioned on
// the visible hour track.
type WeekLayout struct {
	Days  [7]WeekDay
	Hours HourRange
}

// BuildWeekLayout lays out the week containing anchor in loc. Each
// event's visible span is clipped to the hour range; position and height
// are fractions of the track, with height floored at minVisibleHeight
// for events that touch the visible window.
func BuildWeekLayout(anchor time.Time, events []model.Event, loc *time.Location, hours HourRange) WeekLayout {
	hr := hours.normalized()
	weekStart := StartOfWeek(anchor, loc)

	var layout WeekLayout
	layout.Hours = hr

	for i := 0; i < 7; i++ {
		day := weekStart.AddDate(0, 0, i)
		y, m, d := day.Date()
		viewStart := time.Date(y, m, d, hr.Start, 0, 0, 0, loc)
		viewEnd := time.Date(y, m, d, hr.End, 0, 0, 0, loc)
		total := viewEnd.Sub(viewStart)

		col := WeekDay{Date: day}
		for _, ev := range EventsForDay(events, day, loc) {
			col.Events = append(col.Events, placeEvent(ev, viewStart, viewEnd, total))
		}
		layout.Days[i] = col
	}
	return layout
}

func placeEvent(ev model.Event, viewStart, viewEnd time.Time, total time.Duration) EventBlock {
	block := EventBlock{Event: ev}

	start := maxTime(ev.Start, viewStart)
	end := minTime(ev.End, viewEnd)

	// Entirely outside the hour range: keep the day membership, clamp
	// the position to the nearest edge, zero height.
	if !ev.End.After(viewStart) || !ev.Start.Before(viewEnd) {
		block.Clipped = true
		block.TopFraction = clampFraction(start.Sub(viewStart), total)
		return block
	}

	// Malformed end-before-start collapses to a zero-duration block at
	// the start; the minimum height keeps it visible.
	if end.Before(start) {
		end = start
	}

	block.TopFraction = clampFraction(start.Sub(viewStart), total)
	height := float64(end.Sub(start)) / float64(total)
	if height < minVisibleHeight {
		height = minVisibleHeight
	}
	if height > 1 {
		height = 1
	}
	block.HeightFraction = height
	return block
}

func clampFraction(offset, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	f := float64(offset) / float64(total)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// YearDay is one cell of a mini month grid: presence of events only.
type YearDay struct {
	Date      time.Time
	InMonth   bool
	HasEvents bool
}

// YearMonth is one mini month of the year view, itself a 42-cell
// Monday-start matrix.
type YearMonth struct {
	Month time.Month
	Days  []YearDay
}

// BuildYearLayout builds the 12 mini month grids for year in loc.
func BuildYearLayout(year int, events []model.Event, loc *time.Location) []YearMonth {
	months := make([]YearMonth, 0, 12)
	for m := time.January; m <= time.December; m++ {
		anchor := time.Date(year, m, 1, 0, 0, 0, 0, loc)
		cells := BuildMonthMatrix(anchor, events, loc, MonthOptions{DisplayCap: 1})

		days := make([]YearDay, 0, len(cells))
		for _, c := range cells {
			days = append(days, YearDay{
				Date:      c.Date,
				InMonth:   c.InMonth,
				HasEvents: len(c.Events) > 0,
			})
		}
		months = append(months, YearMonth{Month: m, Days: days})
	}
	return months
}
