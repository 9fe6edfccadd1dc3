package web

import (
	"net/http"
	"time"

	"agendacal/internal/calendar"
	appLog "agendacal/internal/log"
	"agendacal/internal/model"
)

// appointmentsResponse is the JSON shape for /api/appointments.
type appointmentsResponse struct {
	Events          []model.Event `json:"events"`
	TruncatedUIDs   []string      `json:"truncated_uids,omitempty"`
	RangeStart      time.Time     `json:"range_start"`
	RangeEnd        time.Time     `json:"range_end"`
	DisplayTimeZone string        `json:"display_timezone"`
}

// handleAppointments returns the normalized appointment list for a
// window around now.
//
// GET /api/appointments?days=30&backfill=1&tz=America/Sao_Paulo
//   - days:     how many future days to cover (default: config horizon)
//   - backfill: how many past days to include (default 1)
func (s *Server) handleAppointments(w http.ResponseWriter, r *http.Request) {
	loc, err := s.location(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown timezone")
		return
	}

	q := r.URL.Query()
	days := parseIntDefault(q.Get("days"), s.cfg.HorizonDays)
	if days <= 0 {
		days = s.cfg.HorizonDays
	}
	backfill := parseIntDefault(q.Get("backfill"), 1)
	if backfill < 0 {
		backfill = 0
	}

	now := time.Now().In(loc)
	from := now.AddDate(0, 0, -backfill)
	to := now.AddDate(0, 0, days)

	events, truncated, err := s.eventsForWindow(r.Context(), from, to, loc)
	if err != nil {
		appLog.Error("api appointments: provider failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load appointments")
		return
	}

	writeJSON(w, http.StatusOK, appointmentsResponse{
		Events:          events,
		TruncatedUIDs:   truncated,
		RangeStart:      from,
		RangeEnd:        to,
		DisplayTimeZone: loc.String(),
	})
}

// monthCellDTO is one day of the month matrix.
type monthCellDTO struct {
	Date     string        `json:"date"` // YYYY-MM-DD
	InMonth  bool          `json:"in_month"`
	Events   []model.Event `json:"events"`
	Overflow int           `json:"overflow,omitempty"`
}

type monthResponse struct {
	Anchor          string         `json:"anchor"`
	Label           string         `json:"label"`
	WeekdayHeaders  []string       `json:"weekday_headers"`
	Cells           []monthCellDTO `json:"cells"`
	DisplayTimeZone string         `json:"display_timezone"`
}

// handleMonth returns the 42-cell month matrix.
//
// GET /api/calendar/month?date=2025-11-05&tz=...&cap=3&locale=pt-BR
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	loc, err := s.location(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown timezone")
		return
	}
	anchor, err := anchorDate(r, loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	labels := s.labels(r)

	// Fetch enough to cover the whole 6-week grid.
	gridStart := calendar.StartOfWeek(time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, loc), loc)
	events, _, err := s.eventsForWindow(r.Context(), gridStart, gridStart.AddDate(0, 0, 42), loc)
	if err != nil {
		appLog.Error("api month: provider failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load appointments")
		return
	}

	displayCap := parseIntDefault(r.URL.Query().Get("cap"), s.cfg.MonthDisplayCap)
	cells := calendar.BuildMonthMatrix(anchor, events, loc, calendar.MonthOptions{DisplayCap: displayCap})

	dto := make([]monthCellDTO, 0, len(cells))
	for _, c := range cells {
		dto = append(dto, monthCellDTO{
			Date:     calendar.DayKey(c.Date, loc),
			InMonth:  c.InMonth,
			Events:   c.Events,
			Overflow: c.Overflow,
		})
	}

	writeJSON(w, http.StatusOK, monthResponse{
		Anchor:          calendar.DayKey(anchor, loc),
		Label:           labels.MonthYear(anchor.In(loc)),
		WeekdayHeaders:  labels.WeekdaysShort[:],
		Cells:           dto,
		DisplayTimeZone: loc.String(),
	})
}

// weekEventDTO positions one event inside a day column.
type weekEventDTO struct {
	Event          model.Event `json:"event"`
	TopFraction    float64     `json:"top_fraction"`
	HeightFraction float64     `json:"height_fraction"`
	Clipped        bool        `json:"clipped,omitempty"`
}

type weekDayDTO struct {
	Date   string         `json:"date"`
	Label  string         `json:"label"`
	Events []weekEventDTO `json:"events"`
}

type weekResponse struct {
	WeekStart       string       `json:"week_start"`
	HourStart       int          `json:"hour_start"`
	HourEnd         int          `json:"hour_end"`
	HourLabels      []string     `json:"hour_labels"`
	Days            []weekDayDTO `json:"days"`
	DisplayTimeZone string       `json:"display_timezone"`
}

// handleWeek returns the 7-day hour-track layout.
//
// GET /api/calendar/week?date=...&tz=...&hour_start=7&hour_end=20
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	loc, err := s.location(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown timezone")
		return
	}
	anchor, err := anchorDate(r, loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	labels := s.labels(r)

	q := r.URL.Query()
	hours := calendar.HourRange{
		Start: parseIntDefault(q.Get("hour_start"), s.cfg.WeekHourStart),
		End:   parseIntDefault(q.Get("hour_end"), s.cfg.WeekHourEnd),
	}

	weekStart := calendar.StartOfWeek(anchor, loc)
	events, _, err := s.eventsForWindow(r.Context(), weekStart, weekStart.AddDate(0, 0, 7), loc)
	if err != nil {
		appLog.Error("api week: provider failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load appointments")
		return
	}

	layout := calendar.BuildWeekLayout(anchor, events, loc, hours)

	days := make([]weekDayDTO, 0, len(layout.Days))
	for _, d := range layout.Days {
		col := weekDayDTO{
			Date:   calendar.DayKey(d.Date, loc),
			Label:  labels.WeekdayShort(d.Date.In(loc)),
			Events: make([]weekEventDTO, 0, len(d.Events)),
		}
		for _, b := range d.Events {
			col.Events = append(col.Events, weekEventDTO{
				Event:          b.Event,
				TopFraction:    b.TopFraction,
				HeightFraction: b.HeightFraction,
				Clipped:        b.Clipped,
			})
		}
		days = append(days, col)
	}

	hourLabels := make([]string, 0, layout.Hours.End-layout.Hours.Start)
	for h := layout.Hours.Start; h < layout.Hours.End; h++ {
		hourLabels = append(hourLabels, calendar.HourLabel(h))
	}

	writeJSON(w, http.StatusOK, weekResponse{
		WeekStart:       calendar.DayKey(layout.Days[0].Date, loc),
		HourStart:       layout.Hours.Start,
		HourEnd:         layout.Hours.End,
		HourLabels:      hourLabels,
		Days:            days,
		DisplayTimeZone: loc.String(),
	})
}

type yearDayDTO struct {
	Date      string `json:"date"`
	InMonth   bool   `json:"in_month"`
	HasEvents bool   `json:"has_events,omitempty"`
}

type yearMonthDTO struct {
	Month int          `json:"month"`
	Label string       `json:"label"`
	Days  []yearDayDTO `json:"days"`
}

type yearResponse struct {
	Year            int            `json:"year"`
	Months          []yearMonthDTO `json:"months"`
	DisplayTimeZone string         `json:"display_timezone"`
}

// handleYear returns the 12 mini month grids.
//
// GET /api/calendar/year?year=2025&tz=...
func (s *Server) handleYear(w http.ResponseWriter, r *http.Request) {
	loc, err := s.location(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown timezone")
		return
	}
	labels := s.labels(r)

	year := parseIntDefault(r.URL.Query().Get("year"), time.Now().In(loc).Year())

	// Cover the whole year plus the grid margins of January and December.
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, loc).AddDate(0, 0, -7)
	to := time.Date(year+1, time.January, 1, 0, 0, 0, 0, loc).AddDate(0, 0, 42)
	events, _, err := s.eventsForWindow(r.Context(), from, to, loc)
	if err != nil {
		appLog.Error("api year: provider failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load appointments")
		return
	}

	months := calendar.BuildYearLayout(year, events, loc)

	dto := make([]yearMonthDTO, 0, len(months))
	for _, m := range months {
		md := yearMonthDTO{
			Month: int(m.Month),
			Label: labels.Months[int(m.Month)-1],
			Days:  make([]yearDayDTO, 0, len(m.Days)),
		}
		for _, d := range m.Days {
			md.Days = append(md.Days, yearDayDTO{
				Date:      calendar.DayKey(d.Date, loc),
				InMonth:   d.InMonth,
				HasEvents: d.HasEvents,
			})
		}
		dto = append(dto, md)
	}

	writeJSON(w, http.StatusOK, yearResponse{
		Year:            year,
		Months:          dto,
		DisplayTimeZone: loc.String(),
	})
}

type sectionDTO struct {
	Key    string        `json:"key"`
	Label  string        `json:"label"`
	Events []model.Event `json:"events"`
}

type upcomingResponse struct {
	Next            *model.Event `json:"next"`
	Sections        []sectionDTO `json:"sections"`
	WindowDays      int          `json:"window_days"`
	DisplayTimeZone string       `json:"display_timezone"`
}

// handleUpcoming returns the next appointment plus the day-grouped
// agenda list.
//
// GET /api/upcoming?window=7&tz=...&locale=...
//   - window: past-window days; 0 (default from config) shows future only
func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	loc, err := s.location(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown timezone")
		return
	}
	labels := s.labels(r)

	windowDays := parseIntDefault(r.URL.Query().Get("window"), s.cfg.PastWindowDays)
	if windowDays < 0 {
		windowDays = 0
	}

	now := time.Now().In(loc)
	lower := calendar.PastWindowLowerBound(now, windowDays, loc)
	to := now.AddDate(0, 0, s.cfg.HorizonDays)

	events, _, err := s.eventsForWindow(r.Context(), lower, to, loc)
	if err != nil {
		appLog.Error("api upcoming: provider failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load appointments")
		return
	}

	visible := calendar.FilterFrom(events, lower)
	sections := calendar.GroupByDay(visible, loc, labels)

	dto := make([]sectionDTO, 0, len(sections))
	for _, sec := range sections {
		dto = append(dto, sectionDTO{Key: sec.Key, Label: sec.Label, Events: sec.Events})
	}

	writeJSON(w, http.StatusOK, upcomingResponse{
		Next:            calendar.NextUpcoming(events, now),
		Sections:        dto,
		WindowDays:      windowDays,
		DisplayTimeZone: loc.String(),
	})
}
