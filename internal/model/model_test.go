package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseStatus(t *testing.T) {
	require.Equal(t, StatusConfirmed, ParseStatus("confirmed"))
	require.Equal(t, StatusConfirmed, ParseStatus(" CONFIRMED "))
	require.Equal(t, StatusScheduled, ParseStatus("scheduled"))
	require.Equal(t, StatusCanceled, ParseStatus("canceled"))
	require.Equal(t, StatusCompleted, ParseStatus("completed"))
	require.Equal(t, StatusUnknown, ParseStatus("no-show"), "unknown values stay neutral")
	require.Equal(t, StatusUnknown, ParseStatus(""))
}

func TestAppointmentJSON(t *testing.T) {
	body := []byte(`{
		"id": 42,
		"title": "Consulta",
		"start": "2025-11-05T15:00",
		"end": 1762362300000,
		"status": "confirmed",
		"doctor": "Souza"
	}`)

	var a Appointment
	require.NoError(t, json.Unmarshal(body, &a))

	require.Equal(t, ID("42"), a.ID, "numeric ids are kept as text")
	require.Equal(t, "2025-11-05T15:00", a.Start.Raw)
	require.True(t, a.Start.Resolved.IsZero(), "strings stay raw until resolution")
	require.True(t, a.End.Resolved.Equal(time.UnixMilli(1762362300000).UTC()), "epoch millis resolve immediately")
	require.Equal(t, StatusConfirmed, a.Status)
}

func TestAppointmentJSONStringID(t *testing.T) {
	var a Appointment
	require.NoError(t, json.Unmarshal([]byte(`{"id":"appt-1","title":"x","start":"2025-01-01T08:00"}`), &a))
	require.Equal(t, ID("appt-1"), a.ID)
}

func TestFlexTimeMarshal(t *testing.T) {
	instant := time.Date(2025, time.November, 5, 18, 0, 0, 0, time.UTC)

	out, err := json.Marshal(FlexFromTime(instant))
	require.NoError(t, err)
	require.JSONEq(t, `"2025-11-05T18:00:00Z"`, string(out))

	out, err = json.Marshal(FlexFromString("2025-11-05T15:00"))
	require.NoError(t, err)
	require.JSONEq(t, `"2025-11-05T15:00"`, string(out))
}

func TestFlexTimeYAML(t *testing.T) {
	var a Appointment
	body := []byte("id: 7\ntitle: Consulta\nstart: \"2025-11-05T15:00\"\n")
	require.NoError(t, yaml.Unmarshal(body, &a))
	require.Equal(t, ID("7"), a.ID)
	require.Equal(t, "2025-11-05T15:00", a.Start.Raw)
	require.True(t, a.End.IsZero())
}

func TestFlexTimeZero(t *testing.T) {
	var f FlexTime
	require.True(t, f.IsZero())
	require.False(t, FlexFromString("x").IsZero())
	require.False(t, FlexFromTime(time.Now()).IsZero())
}
