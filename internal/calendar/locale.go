package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Labels carries localized weekday and month names for view headers and
// agenda section labels. It affects label text only, never date
// arithmetic. Weekday arrays are Monday-first to match the grid layout.
type Labels struct {
	tag           string
	WeekdaysShort [7]string
	WeekdaysLong  [7]string
	Months        [12]string
}

var ptBR = &Labels{
	tag:           "pt-BR",
	WeekdaysShort: [7]string{"Seg", "Ter", "Qua", "Qui", "Sex", "Sáb", "Dom"},
	WeekdaysLong:  [7]string{"segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado", "domingo"},
	Months: [12]string{
		"janeiro", "fevereiro", "março", "abril", "maio", "junho",
		"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
	},
}

var enUS = &Labels{
	tag:           "en-US",
	WeekdaysShort: [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
	WeekdaysLong:  [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
	Months: [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
}

// LabelsFor returns the label set for a BCP 47-ish locale string.
// Portuguese locales map to pt-BR, everything else to en-US.
func LabelsFor(locale string) *Labels {
	tag := strings.ToLower(strings.TrimSpace(locale))
	if tag == "" || strings.HasPrefix(tag, "pt") {
		return ptBR
	}
	return enUS
}

// Tag returns the canonical locale tag of this label set.
func (l *Labels) Tag() string { return l.tag }

// weekdayIndex returns the Monday-first index of t's weekday.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WeekdayShort returns the abbreviated weekday name for t.
func (l *Labels) WeekdayShort(t time.Time) string {
	return l.WeekdaysShort[weekdayIndex(t)]
}

// WeekdayLong returns the full weekday name for t.
func (l *Labels) WeekdayLong(t time.Time) string {
	return l.WeekdaysLong[weekdayIndex(t)]
}

// Month returns the month name for t.
func (l *Labels) Month(t time.Time) string {
	return l.Months[int(t.Month())-1]
}

// LongDate renders the agenda section label, e.g.
// "quarta-feira, 05 de novembro" or "Wednesday, November 05". The time
// must already be in the display timezone.
func (l *Labels) LongDate(t time.Time) string {
	if l.tag == "pt-BR" {
		return fmt.Sprintf("%s, %02d de %s", l.WeekdayLong(t), t.Day(), l.Month(t))
	}
	return fmt.Sprintf("%s, %s %02d", l.WeekdayLong(t), l.Month(t), t.Day())
}

// MonthYear renders a month view header, e.g. "novembro de 2025" or
// "November 2025".
func (l *Labels) MonthYear(t time.Time) string {
	if l.tag == "pt-BR" {
		return fmt.Sprintf("%s de %d", l.Month(t), t.Year())
	}
	return fmt.Sprintf("%s %d", l.Month(t), t.Year())
}

// HourLabel renders an hour axis label, e.g. "07:00".
func HourLabel(h int) string {
	return fmt.Sprintf("%02d:00", h)
}
