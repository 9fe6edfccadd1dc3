package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLabelsFor(t *testing.T) {
	require.Equal(t, "pt-BR", LabelsFor("").Tag())
	require.Equal(t, "pt-BR", LabelsFor("pt-BR").Tag())
	require.Equal(t, "pt-BR", LabelsFor("pt").Tag())
	require.Equal(t, "en-US", LabelsFor("en-US").Tag())
	require.Equal(t, "en-US", LabelsFor("fr-FR").Tag(), "unsupported locales fall back to en-US")
}

func TestLabelFormatting(t *testing.T) {
	sp := mustLoad(t, "America/Sao_Paulo")
	wed := WallTimeToInstant(2025, time.November, 5, 15, 0, 0, sp).In(sp)

	pt := LabelsFor("pt-BR")
	require.Equal(t, "Qua", pt.WeekdayShort(wed))
	require.Equal(t, "quarta-feira, 05 de novembro", pt.LongDate(wed))
	require.Equal(t, "novembro de 2025", pt.MonthYear(wed))

	en := LabelsFor("en-US")
	require.Equal(t, "Wednesday, November 05", en.LongDate(wed))
	require.Equal(t, "November 2025", en.MonthYear(wed))

	require.Equal(t, "07:00", HourLabel(7))
}
