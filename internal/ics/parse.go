// Package ics turns subscribed iCalendar feeds into raw appointment
// records: fetching with HTTP caching, VEVENT parsing, and recurrence
// expansion into concrete occurrences.
package ics

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "agendacal/internal/log"
	"agendacal/internal/model"
)

// FeedEvent is one VEVENT as read from a feed, before recurrence
// expansion. Display fields are already mapped onto the appointment
// vocabulary: SUMMARY is the title, ORGANIZER the doctor, LOCATION the
// clinic.
type FeedEvent struct {
	Source Source

	UID string
	Seq int

	Title  string
	Doctor string
	Clinic string
	Color  string
	Status model.Status

	Start  time.Time
	End    time.Time
	AllDay bool

	RawRRule   string
	ExDates    []time.Time
	Recurrence *time.Time // RECURRENCE-ID, in the event's own timezone
	IsOverride bool
}

// ParseFeed parses a single ICS payload into a list of FeedEvent. A
// VEVENT that cannot be parsed is logged and skipped; the rest of the
// feed is still processed.
func ParseFeed(src Source, body []byte) ([]FeedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "url", redactURL(src.URL))
		return nil, err
	}

	events := make([]FeedEvent, 0)
	for _, ve := range cal.Events() {
		fe, perr := parseVEvent(src, ve)
		if perr != nil {
			appLog.Error("ics vevent parse failed", perr, "id", src.ID, "url", redactURL(src.URL))
			continue
		}
		events = append(events, fe)
	}

	appLog.Info("ics parse completed", "id", src.ID, "event_count", len(events))
	return events, nil
}

func parseVEvent(src Source, ve *ical.VEvent) (FeedEvent, error) {
	var out FeedEvent
	out.Source = src

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if seqProp := ve.GetProperty(ical.ComponentPropertySequence); seqProp != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(seqProp.Value)); err == nil {
			out.Seq = n
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Clinic = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyOrganizer); p != nil {
		out.Doctor = organizerName(p)
	}
	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil {
		out.Status = mapStatus(p.Value)
	}
	// COLOR is RFC 7986; the library has no constant for it.
	if p := ve.GetProperty("COLOR"); p != nil {
		out.Color = p.Value
	}

	// DTSTART / DTEND via the library's timezone-aware helpers.
	start, _ := ve.GetStartAt()
	end, _ := ve.GetEndAt()
	out.Start = start
	out.End = end

	// All-day when DTSTART carries VALUE=DATE or has no time part.
	if dtStart := ve.GetProperty(ical.ComponentPropertyDtStart); dtStart != nil {
		if params := dtStart.ICalParameters; params != nil {
			if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
				out.AllDay = true
			}
		}
		if !strings.Contains(dtStart.Value, "T") {
			out.AllDay = true
		}
	}

	if rruleProp := ve.GetProperty(ical.ComponentPropertyRrule); rruleProp != nil {
		out.RawRRule = rruleProp.Value
	}

	// EXDATE may appear multiple times, each with a comma-separated list.
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if ridProp := ve.GetProperty("RECURRENCE-ID"); ridProp != nil {
		if t, err := parseICSTime(ridProp.Value); err == nil {
			out.Recurrence = &t
			out.IsOverride = true
		}
	}

	return out, nil
}

// organizerName extracts a display name from an ORGANIZER property:
// the CN parameter when present, otherwise the value with any mailto:
// prefix stripped.
func organizerName(p *ical.IANAProperty) string {
	if p.ICalParameters != nil {
		if cns, ok := p.ICalParameters["CN"]; ok && len(cns) > 0 && cns[0] != "" {
			return strings.Trim(cns[0], `"`)
		}
	}
	return strings.TrimPrefix(p.Value, "mailto:")
}

// mapStatus maps iCalendar STATUS values onto appointment statuses.
// TENTATIVE appointments are treated as merely scheduled; anything
// unrecognized stays neutral.
func mapStatus(v string) model.Status {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "CONFIRMED":
		return model.StatusConfirmed
	case "TENTATIVE":
		return model.StatusScheduled
	case "CANCELLED":
		return model.StatusCanceled
	default:
		return model.StatusUnknown
	}
}

// parseICSTime parses a basic ICS date/date-time string for EXDATE and
// RECURRENCE-ID values, where full parameter context is not available.
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	// UTC form, e.g. 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		const layout = "20060102T150405Z"
		return time.Parse(layout, v)
	}

	// Floating date-time, e.g. 20250101T090000
	if strings.Contains(v, "T") {
		const layout = "20060102T150405"
		return time.ParseInLocation(layout, v, time.Local)
	}

	// Date-only (all-day), e.g. 20250101
	const layoutDate = "20060102"
	return time.ParseInLocation(layoutDate, v, time.Local)
}
