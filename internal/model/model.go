package model

import (
	"strings"
	"time"
)

// Status is the lifecycle state of an appointment. Values outside the
// known set are carried through as StatusUnknown and rendered neutrally;
// they never cause a record to be rejected.
type Status string

const (
	StatusUnknown   Status = ""
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCanceled  Status = "canceled"
	StatusCompleted Status = "completed"
)

// ParseStatus maps a free-form status string onto a known Status.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusScheduled:
		return StatusScheduled
	case StatusConfirmed:
		return StatusConfirmed
	case StatusCanceled:
		return StatusCanceled
	case StatusCompleted:
		return StatusCompleted
	default:
		return StatusUnknown
	}
}

// Appointment is a raw record as received from a feed, the config file
// or an API caller. Start/End may still be naive wall-clock strings; the
// calendar package resolves them into instants.
type Appointment struct {
	ID     ID       `json:"id" yaml:"id"`
	Title  string   `json:"title" yaml:"title"`
	Start  FlexTime `json:"start" yaml:"start"`
	End    FlexTime `json:"end,omitempty" yaml:"end,omitempty"`
	Status Status   `json:"status,omitempty" yaml:"status,omitempty"`
	Doctor string   `json:"doctor,omitempty" yaml:"doctor,omitempty"`
	Clinic string   `json:"clinic,omitempty" yaml:"clinic,omitempty"`
	Color  string   `json:"color,omitempty" yaml:"color,omitempty"`
}

// Event is a normalized appointment: both endpoints resolved to instants
// in a known timezone. Invalid marks records whose endpoints could not be
// parsed; such events are kept in the list (callers may want to flag
// them) but are excluded from all interval and ordering logic.
type Event struct {
	ID     ID        `json:"id"`
	Title  string    `json:"title"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status Status    `json:"status,omitempty"`
	Doctor string    `json:"doctor,omitempty"`
	Clinic string    `json:"clinic,omitempty"`
	Color  string    `json:"color,omitempty"`

	Invalid bool `json:"invalid,omitempty"`
}
