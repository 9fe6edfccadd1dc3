package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "agendacal/internal/log"
	"agendacal/internal/model"
)

const defaultMaxOccurrencesPerEvent = 5000

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// RangeStart / RangeEnd define the inclusive window for occurrences.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps runaway rules. Zero means the default.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the concrete appointment occurrences plus the UIDs
// whose expansion hit the cap.
type ExpandResult struct {
	Appointments  []model.Appointment
	TruncatedUIDs []string
}

// ExpandOccurrences turns feed events into concrete appointment records
// within the given window. It handles single events, RRULE recurrence,
// EXDATE removal, RECURRENCE-ID overrides and all-day semantics. The
// resulting records carry resolved instants, so normalization passes
// them through unchanged.
func ExpandOccurrences(events []FeedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	// Group base events and overrides by UID.
	baseByUID := make(map[string][]FeedEvent)
	overridesByUID := make(map[string][]FeedEvent)
	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
		} else {
			baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
		}
	}

	all := make([]model.Appointment, 0)
	for uid, baseEvents := range baseByUID {
		ov := overridesByUID[uid]
		truncated := false

		for _, ev := range baseEvents {
			appts, hitCap := expandEvent(ev, ov, cfg)
			if hitCap {
				truncated = true
			}
			all = append(all, appts...)
		}

		if truncated {
			result.TruncatedUIDs = append(result.TruncatedUIDs, uid)
			appLog.Error("expand: truncated occurrences for UID",
				errors.New("max occurrences reached"),
				"uid", uid,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
	}

	result.Appointments = all
	return result, nil
}

func expandEvent(ev FeedEvent, overrides []FeedEvent, cfg ExpandConfig) ([]model.Appointment, bool) {
	if ev.RawRRule == "" {
		return expandSingleEvent(ev, overrides, cfg), false
	}
	return expandRecurringEvent(ev, overrides, cfg)
}

func expandSingleEvent(ev FeedEvent, overrides []FeedEvent, cfg ExpandConfig) []model.Appointment {
	var out []model.Appointment

	if !timeRangesOverlap(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
		return out
	}

	start := ev.Start
	end := ev.End
	if o, ok := findOverrideForStart(overrides, start); ok {
		start = o.Start
		end = o.End
		ev = o
	}

	out = append(out, makeAppointment(ev, start, end))
	return out
}

func expandRecurringEvent(ev FeedEvent, overrides []FeedEvent, cfg ExpandConfig) ([]model.Appointment, bool) {
	out := make([]model.Appointment, 0)
	hitCap := false

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return out, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		// Align EXDATE with the event's own timezone.
		set.ExDate(ex.In(ev.Start.Location()))
	}

	rangeStart := cfg.RangeStart.In(ev.Start.Location())
	rangeEnd := cfg.RangeEnd.In(ev.Start.Location())

	occTimes := set.Between(rangeStart, rangeEnd, true)
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	dur := ev.End.Sub(ev.Start)
	for _, occStart := range occTimes {
		var occEnd time.Time
		if ev.AllDay {
			// All-day: [date 00:00, next day 00:00) in the event's zone.
			date := time.Date(occStart.Year(), occStart.Month(), occStart.Day(), 0, 0, 0, 0, occStart.Location())
			occStart = date
			occEnd = date.Add(24 * time.Hour)
		} else {
			occEnd = occStart.Add(dur)
		}

		start := occStart
		end := occEnd
		base := ev
		if o, ok := findOverrideForStart(overrides, occStart); ok {
			start = o.Start
			end = o.End
			base = o
		}

		out = append(out, makeAppointment(base, start, end))
	}

	return out, hitCap
}

// findOverrideForStart finds an override whose RECURRENCE-ID matches the
// given occurrence start with exact time equality.
func findOverrideForStart(overrides []FeedEvent, start time.Time) (FeedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence == nil {
			continue
		}
		if ov.Recurrence.In(start.Location()).Equal(start) {
			return ov, true
		}
	}
	return FeedEvent{}, false
}

// makeAppointment converts a (possibly overridden) feed event plus one
// concrete start/end into an appointment record. The ID combines feed,
// UID and start so each occurrence of a recurring appointment stays
// stable and unique.
func makeAppointment(ev FeedEvent, start, end time.Time) model.Appointment {
	id := ev.Source.ID + "/" + ev.UID + "/" + start.UTC().Format(time.RFC3339)
	return model.Appointment{
		ID:     model.ID(id),
		Title:  ev.Title,
		Start:  model.FlexFromTime(start),
		End:    model.FlexFromTime(end),
		Status: ev.Status,
		Doctor: ev.Doctor,
		Clinic: ev.Clinic,
		Color:  ev.Color,
	}
}

func timeRangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(bStart) {
		return false
	}
	if bEnd.Before(aStart) {
		return false
	}
	return true
}
