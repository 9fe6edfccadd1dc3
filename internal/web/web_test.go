package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"agendacal/internal/config"
	"agendacal/internal/model"
)

// stubProvider serves a fixed appointment list regardless of window.
type stubProvider struct {
	appts []model.Appointment
	err   error
}

func (p *stubProvider) Appointments(_ context.Context, _, _ time.Time) ([]model.Appointment, []string, error) {
	return p.appts, nil, p.err
}

func testServer(t *testing.T, appts []model.Appointment) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	return NewServer(cfg, &stubProvider{appts: appts})
}

func futureNaive(t *testing.T, days int, hhmm string) string {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	d := time.Now().In(loc).AddDate(0, 0, days)
	return d.Format("2006-01-02") + "T" + hhmm
}

func TestHealth(t *testing.T) {
	s := testServer(t, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())
}

func TestAppointmentsEndpoint(t *testing.T) {
	appts := []model.Appointment{
		{ID: "a1", Title: "Consulta", Start: model.FlexFromString(futureNaive(t, 1, "15:00")), End: model.FlexFromString(futureNaive(t, 1, "15:45"))},
		{ID: "bad", Title: "Corrompido", Start: model.FlexFromString("garbage")},
	}
	s := testServer(t, appts)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/appointments", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp appointmentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "America/Sao_Paulo", resp.DisplayTimeZone)
	require.Len(t, resp.Events, 2, "malformed records are flagged, not dropped")

	byID := map[model.ID]model.Event{}
	for _, ev := range resp.Events {
		byID[ev.ID] = ev
	}
	require.False(t, byID["a1"].Invalid)
	require.True(t, byID["bad"].Invalid)
}

func TestAppointmentsRejectsUnknownTimezone(t *testing.T) {
	s := testServer(t, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/appointments?tz=Mars/Olympus_Mons", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMonthEndpoint(t *testing.T) {
	appts := []model.Appointment{
		{ID: "a1", Title: "Consulta", Start: model.FlexFromString("2025-11-05T15:00"), End: model.FlexFromString("2025-11-05T15:45")},
	}
	s := testServer(t, appts)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/calendar/month?date=2025-11-05", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp monthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Cells, 42)
	require.Equal(t, "2025-10-27", resp.Cells[0].Date, "grid starts on the Monday before Nov 1")
	require.Equal(t, "novembro de 2025", resp.Label)
	require.Equal(t, []string{"Seg", "Ter", "Qua", "Qui", "Sex", "Sáb", "Dom"}, resp.WeekdayHeaders)

	found := false
	for _, c := range resp.Cells {
		if c.Date == "2025-11-05" {
			found = true
			require.True(t, c.InMonth)
			require.Len(t, c.Events, 1)
		}
	}
	require.True(t, found)
}

func TestWeekEndpoint(t *testing.T) {
	appts := []model.Appointment{
		{ID: "a1", Title: "Consulta", Start: model.FlexFromString("2025-11-05T09:00"), End: model.FlexFromString("2025-11-05T10:00")},
	}
	s := testServer(t, appts)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/calendar/week?date=2025-11-05", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp weekResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "2025-11-03", resp.WeekStart)
	require.Equal(t, 7, resp.HourStart)
	require.Equal(t, 20, resp.HourEnd)
	require.Len(t, resp.Days, 7)
	require.Equal(t, "07:00", resp.HourLabels[0])

	wed := resp.Days[2]
	require.Equal(t, "2025-11-05", wed.Date)
	require.Len(t, wed.Events, 1)
	require.InDelta(t, 2.0/13.0, wed.Events[0].TopFraction, 1e-9)
}

func TestYearEndpoint(t *testing.T) {
	appts := []model.Appointment{
		{ID: "a1", Title: "Consulta", Start: model.FlexFromString("2025-11-05T15:00"), End: model.FlexFromString("2025-11-05T15:45")},
	}
	s := testServer(t, appts)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/calendar/year?year=2025", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp yearResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2025, resp.Year)
	require.Len(t, resp.Months, 12)

	nov := resp.Months[10]
	require.Equal(t, "novembro", nov.Label)
	marked := 0
	for _, d := range nov.Days {
		if d.HasEvents {
			marked++
			require.Equal(t, "2025-11-05", d.Date)
		}
	}
	require.Equal(t, 1, marked)
}

func TestUpcomingEndpoint(t *testing.T) {
	appts := []model.Appointment{
		{ID: "soon", Title: "Consulta", Start: model.FlexFromString(futureNaive(t, 1, "09:00")), End: model.FlexFromString(futureNaive(t, 1, "09:45"))},
		{ID: "later", Title: "Retorno", Start: model.FlexFromString(futureNaive(t, 3, "14:00")), End: model.FlexFromString(futureNaive(t, 3, "14:30"))},
	}
	s := testServer(t, appts)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/upcoming", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp upcomingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Next)
	require.Equal(t, model.ID("soon"), resp.Next.ID)
	require.Len(t, resp.Sections, 2)
	require.Less(t, resp.Sections[0].Key, resp.Sections[1].Key)
}

func TestBasicAuth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "clinic", Password: "s3cret"}
	s := NewServer(cfg, &stubProvider{})
	h := s.Handler()

	// /health stays open.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// API requires credentials.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/appointments", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	req.SetBasicAuth("clinic", "s3cret")
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
