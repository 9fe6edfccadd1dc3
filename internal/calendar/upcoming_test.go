package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"agendacal/internal/model"
)

func TestNextUpcoming(t *testing.T) {
	sp := mustLoad(t, "America/Sao_Paulo")

	events := []model.Event{
		{ID: "nine", Start: WallTimeToInstant(2025, time.November, 5, 9, 0, 0, sp)},
		{ID: "ten", Start: WallTimeToInstant(2025, time.November, 5, 10, 0, 0, sp)},
		{ID: "eight", Start: WallTimeToInstant(2025, time.November, 5, 8, 0, 0, sp)},
	}
	for i := range events {
		events[i].End = events[i].Start.Add(30 * time.Minute)
	}

	now := WallTimeToInstant(2025, time.November, 5, 8, 30, 0, sp)
	got := NextUpcoming(events, now)
	require.NotNil(t, got)
	require.Equal(t, model.ID("nine"), got.ID)

	// Exactly at a start counts as upcoming.
	atNine := WallTimeToInstant(2025, time.November, 5, 9, 0, 0, sp)
	got = NextUpcoming(events, atNine)
	require.NotNil(t, got)
	require.Equal(t, model.ID("nine"), got.ID)

	// Past everything: nil.
	late := WallTimeToInstant(2025, time.November, 5, 16, 0, 0, sp)
	require.Nil(t, NextUpcoming(events, late))
}

func TestNextUpcomingStableTies(t *testing.T) {
	sp := mustLoad(t, "America/Sao_Paulo")
	start := WallTimeToInstant(2025, time.November, 5, 9, 0, 0, sp)

	events := []model.Event{
		{ID: "first", Start: start, End: start},
		{ID: "second", Start: start, End: start},
	}
	now := WallTimeToInstant(2025, time.November, 5, 8, 0, 0, sp)

	got := NextUpcoming(events, now)
	require.NotNil(t, got)
	require.Equal(t, model.ID("first"), got.ID, "equal starts keep input order")
}

func TestNextUpcomingScenarioSaoPaulo(t *testing.T) {
	sp := mustLoad(t, "America/Sao_Paulo")

	appts := []model.Appointment{
		{ID: "c1", Title: "Consulta", Start: model.FlexFromString("2025-11-05T15:00"), End: model.FlexFromString("2025-11-05T15:45")},
	}
	events := Normalize(appts, sp)

	morning := WallTimeToInstant(2025, time.November, 5, 10, 0, 0, sp)
	got := NextUpcoming(events, morning)
	require.NotNil(t, got)
	require.Equal(t, model.ID("c1"), got.ID)

	afternoon := WallTimeToInstant(2025, time.November, 5, 16, 0, 0, sp)
	require.Nil(t, NextUpcoming(events, afternoon))
}

func TestPastWindowLowerBound(t *testing.T) {
	sp := mustLoad(t, "America/Sao_Paulo")
	now := WallTimeToInstant(2025, time.November, 5, 10, 30, 0, sp)

	require.True(t, PastWindowLowerBound(now, 0, sp).Equal(now), "window 0 means pure future")

	bound := PastWindowLowerBound(now, 7, sp)
	require.Equal(t, "2025-10-29", DayKey(bound, sp))
	require.Equal(t, 0, bound.In(sp).Hour())
}

func TestFilterFrom(t *testing.T) {
	sp := mustLoad(t, "America/Sao_Paulo")

	events := []model.Event{
		{ID: "past", Start: WallTimeToInstant(2025, time.November, 4, 9, 0, 0, sp)},
		{ID: "future", Start: WallTimeToInstant(2025, time.November, 6, 9, 0, 0, sp)},
		{ID: "broken", Invalid: true},
	}
	now := WallTimeToInstant(2025, time.November, 5, 0, 0, 0, sp)

	got := FilterFrom(events, now)
	require.Len(t, got, 1)
	require.Equal(t, model.ID("future"), got[0].ID)

	wide := FilterFrom(events, PastWindowLowerBound(now, 7, sp))
	require.Len(t, wide, 2)
}

func TestGroupByDayOrdering(t *testing.T) {
	sp := mustLoad(t, "America/Sao_Paulo")
	labels := LabelsFor("pt-BR")

	// Input deliberately out of order: Jan 3, Jan 1, Jan 2.
	events := []model.Event{
		{ID: "jan3", Start: WallTimeToInstant(2025, time.January, 3, 9, 0, 0, sp)},
		{ID: "jan1-late", Start: WallTimeToInstant(2025, time.January, 1, 16, 0, 0, sp)},
		{ID: "jan1-early", Start: WallTimeToInstant(2025, time.January, 1, 8, 0, 0, sp)},
		{ID: "jan2", Start: WallTimeToInstant(2025, time.January, 2, 11, 0, 0, sp)},
	}
	for i := range events {
		events[i].End = events[i].Start.Add(30 * time.Minute)
	}

	sections := GroupByDay(events, sp, labels)
	require.Len(t, sections, 3)
	require.Equal(t, "2025-01-01", sections[0].Key)
	require.Equal(t, "2025-01-02", sections[1].Key)
	require.Equal(t, "2025-01-03", sections[2].Key)

	require.Len(t, sections[0].Events, 2)
	require.Equal(t, model.ID("jan1-early"), sections[0].Events[0].ID)
	require.Equal(t, model.ID("jan1-late"), sections[0].Events[1].ID)

	require.Equal(t, "quarta-feira, 01 de janeiro", sections[0].Label)
}
