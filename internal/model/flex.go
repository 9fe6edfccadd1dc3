package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ID accepts both string and integer identifiers on the wire and keeps
// the textual form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = ID(n.String())
		return nil
	}
	return fmt.Errorf("id: expected string or number, got %s", string(data))
}

func (id *ID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("id: expected scalar, got yaml kind %d", node.Kind)
	}
	*id = ID(node.Value)
	return nil
}

// FlexTime is a point in time that may arrive either as an already
// resolved instant or as a raw textual form (naive wall-clock string,
// RFC3339, date-only). Resolution happens in the calendar package, where
// the target timezone is known.
type FlexTime struct {
	// Raw is the textual form as received. Empty when the value was
	// constructed from an instant.
	Raw string
	// Resolved is the instant, when already known. Zero otherwise.
	Resolved time.Time
}

// FlexFromTime wraps an already resolved instant.
func FlexFromTime(t time.Time) FlexTime {
	return FlexTime{Resolved: t}
}

// FlexFromString wraps a raw textual form.
func FlexFromString(s string) FlexTime {
	return FlexTime{Raw: s}
}

// IsZero reports whether the value carries neither a raw form nor an
// instant, i.e. the field was absent.
func (f FlexTime) IsZero() bool {
	return f.Raw == "" && f.Resolved.IsZero()
}

func (f FlexTime) String() string {
	if !f.Resolved.IsZero() {
		return f.Resolved.Format(time.RFC3339)
	}
	return f.Raw
}

// UnmarshalJSON accepts a JSON string (kept raw for later resolution) or
// a number (interpreted as epoch milliseconds).
func (f *FlexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexTime{Raw: s}
		return nil
	}
	var ms int64
	if err := json.Unmarshal(data, &ms); err == nil {
		*f = FlexTime{Resolved: time.UnixMilli(ms).UTC()}
		return nil
	}
	return fmt.Errorf("time: expected string or epoch milliseconds, got %s", string(data))
}

func (f FlexTime) MarshalJSON() ([]byte, error) {
	if !f.Resolved.IsZero() {
		return json.Marshal(f.Resolved.Format(time.RFC3339))
	}
	return json.Marshal(f.Raw)
}

func (f *FlexTime) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("time: expected scalar, got yaml kind %d", node.Kind)
	}
	if ms, err := strconv.ParseInt(node.Value, 10, 64); err == nil {
		*f = FlexTime{Resolved: time.UnixMilli(ms).UTC()}
		return nil
	}
	*f = FlexTime{Raw: node.Value}
	return nil
}

func (f FlexTime) MarshalYAML() (any, error) {
	if !f.Resolved.IsZero() {
		return f.Resolved.Format(time.RFC3339), nil
	}
	return f.Raw, nil
}
