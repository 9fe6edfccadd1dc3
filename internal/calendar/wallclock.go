// Package calendar is the timezone-correct appointment/event engine:
// wall-clock resolution, normalization, day bucketing, month/week/year
// grid construction and upcoming-appointment selection. It is a pure
// function library: it holds no state between calls, never mutates its
// inputs, and takes the target timezone as an explicit parameter on
// every entry point.
package calendar

import "time"

// WallTimeToInstant interprets the given civil fields as wall-clock time
// in loc and returns the corresponding instant.
//
// The fields are first treated as UTC to form a provisional instant
// ("guess"). Rendering the guess back through loc shows which civil
// fields are actually in effect at that moment; the difference between
// the intended fields and the rendered fields is the zone offset, and
// shifting the guess by it yields the instant.
//
// This is a single-iteration fixed point: exact everywhere except for
// wall-clock times inside a DST spring-forward gap or fall-back overlap,
// where the result may differ from the canonical resolution by the jump
// amount (typically one hour). Callers treating transition-local times
// must account for that approximation.
func WallTimeToInstant(year int, month time.Month, day, hour, min, sec int, loc *time.Location) time.Time {
	guess := time.Date(year, month, day, hour, min, sec, 0, time.UTC)

	rendered := guess.In(loc)
	ry, rm, rd := rendered.Date()
	rh, rmin, rs := rendered.Clock()
	renderedAsUTC := time.Date(ry, rm, rd, rh, rmin, rs, 0, time.UTC)

	delta := guess.Sub(renderedAsUTC)
	return guess.Add(delta)
}
