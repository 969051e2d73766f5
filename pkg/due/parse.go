package due

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// endOfDayHour and endOfDayMinute are used when only a date is given.
const (
	endOfDayHour   = 23
	endOfDayMinute = 59
)

// Parse reads a due date typed by a person, in now's location:
//
//	now, today, tomorrow        (today and tomorrow mean 23:59)
//	today 15:04, tomorrow 9:30
//	+90m, +4h, +3d, +2w         (relative to now)
//	2006-01-02, 2006-01-02 15:04, RFC 3339
func Parse(s string, now time.Time) (time.Time, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	loc := now.Location()

	if in == "" {
		return time.Time{}, fmt.Errorf("due date is required")
	}
	if in == "now" {
		return now, nil
	}
	if strings.HasPrefix(in, "+") {
		return parseOffset(in, now, s)
	}

	day, clock, _ := strings.Cut(in, " ")
	switch day {
	case "today", "tomorrow":
		base := now
		if day == "tomorrow" {
			base = now.AddDate(0, 0, 1)
		}
		hour, minute := endOfDayHour, endOfDayMinute
		if clock != "" {
			t, err := time.ParseInLocation("15:04", strings.TrimSpace(clock), loc)
			if err != nil {
				return time.Time{}, badDue(s)
			}
			hour, minute = t.Hour(), t.Minute()
		}
		y, m, d := base.Date()
		return time.Date(y, m, d, hour, minute, 0, 0, loc), nil
	}

	raw := strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.ParseInLocation("2006-01-02", in, loc); err == nil {
		return t.Add(endOfDayHour*time.Hour + endOfDayMinute*time.Minute), nil
	}
	return time.Time{}, badDue(s)
}

func parseOffset(in string, now time.Time, raw string) (time.Time, error) {
	if len(in) < 3 {
		return time.Time{}, badDue(raw)
	}
	n, err := strconv.Atoi(in[1 : len(in)-1])
	if err != nil || n < 0 {
		return time.Time{}, badDue(raw)
	}
	switch in[len(in)-1] {
	case 'm':
		return now.Add(time.Duration(n) * time.Minute), nil
	case 'h':
		return now.Add(time.Duration(n) * time.Hour), nil
	case 'd':
		return now.AddDate(0, 0, n), nil
	case 'w':
		return now.AddDate(0, 0, 7*n), nil
	}
	return time.Time{}, badDue(raw)
}

func badDue(s string) error {
	return fmt.Errorf("cannot parse due date %q (try today, tomorrow 9:00, +3d, 2006-01-02 or 2006-01-02 15:04)", s)
}
