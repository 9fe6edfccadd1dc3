package calendar

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"agendacal/internal/model"
)

// naiveLocalRe matches YYYY-MM-DDTHH:MM with optional seconds and no
// zone designator. Strings of this shape are interpreted as wall-clock
// time in the target timezone.
var naiveLocalRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})T(\d{2}):(\d{2})(?::(\d{2}))?$`)

// genericLayouts are tried, in order, for strings that do not match the
// naive-local pattern. Layouts without zone information are interpreted
// in the target timezone. Anything outside this list is rejected rather
// than guessed at.
var genericLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339Nano, true},
	{time.RFC3339, true},
	{"2006-01-02T15:04:05.000", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02 15:04", false},
	{"2006-01-02", false},
	{time.RFC1123Z, true},
	{time.RFC1123, true},
}

var errEmptyTime = errors.New("empty time value")

// ParseNaiveLocal resolves a textual date-time into an instant. Naive
// wall-clock strings go through WallTimeToInstant in loc; everything
// else goes through the generic layout list. A string matching no
// accepted form yields a zero time and an error; the caller decides
// whether to flag or drop the record.
func ParseNaiveLocal(input string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, errEmptyTime
	}

	if m := naiveLocalRe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		hour, _ := strconv.Atoi(m[4])
		min, _ := strconv.Atoi(m[5])
		sec := 0
		if m[6] != "" {
			sec, _ = strconv.Atoi(m[6])
		}
		return WallTimeToInstant(year, time.Month(month), day, hour, min, sec, loc), nil
	}

	for _, gl := range genericLayouts {
		if gl.zoned {
			if t, err := time.Parse(gl.layout, s); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(gl.layout, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable date-time %q", input)
}

// ResolveFlex resolves a FlexTime into an instant: already resolved
// values pass through unchanged, raw strings go through ParseNaiveLocal.
func ResolveFlex(ft model.FlexTime, loc *time.Location) (time.Time, error) {
	if !ft.Resolved.IsZero() {
		return ft.Resolved, nil
	}
	return ParseNaiveLocal(ft.Raw, loc)
}
