package calendar

import (
	"time"

	appLog "agendacal/internal/log"
	"agendacal/internal/model"
)

// Normalize resolves every appointment's endpoints into instants in loc
// and returns the resulting event list. A record is never dropped: when
// an endpoint cannot be parsed the event is kept with Invalid set, and
// the failure is logged once per record. An absent end defaults to the
// raw start value, producing a zero-duration event.
//
// Normalization is idempotent over already resolved inputs: endpoints
// carrying an instant pass through unchanged.
func Normalize(appts []model.Appointment, loc *time.Location) []model.Event {
	out := make([]model.Event, 0, len(appts))

	for _, a := range appts {
		ev := model.Event{
			ID:     a.ID,
			Title:  a.Title,
			Status: a.Status,
			Doctor: a.Doctor,
			Clinic: a.Clinic,
			Color:  a.Color,
		}

		start, err := ResolveFlex(a.Start, loc)
		if err != nil {
			ev.Invalid = true
			appLog.Error("normalize: unparseable start", err, "id", string(a.ID), "raw", a.Start.Raw)
		}
		ev.Start = start

		endRaw := a.End
		if endRaw.IsZero() {
			endRaw = a.Start
		}
		end, err := ResolveFlex(endRaw, loc)
		if err != nil {
			// Keep the event anchored at its start; a half-parsed record
			// must not enter interval logic.
			end = start
			ev.Invalid = true
			appLog.Error("normalize: unparseable end", err, "id", string(a.ID), "raw", endRaw.Raw)
		}
		ev.End = end

		out = append(out, ev)
	}

	return out
}

// Valid returns the subset of events usable in interval logic, in input
// order.
func Valid(events []model.Event) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.Invalid || ev.Start.IsZero() {
			continue
		}
		out = append(out, ev)
	}
	return out
}
