package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clock24    = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	clock12    = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)$`)
	relative   = regexp.MustCompile(`^in\s+(\d+|an?|one)\s+(minute|minutes|min|mins|hour|hours|hr|hrs|day|days)$`)
	spacedAmPm = regexp.MustCompile(`(\d)\s+(am|pm)\b`)
	weekdays   = map[string]time.Weekday{}
)

// defaultHour is used when only a day is given.
const defaultHour = 9

func init() {
	for d := time.Sunday; d <= time.Saturday; d++ {
		weekdays[strings.ToLower(d.String())] = d
	}
}

// startsWhen reports whether word can open a datetime phrase.
func startsWhen(word string) bool {
	w := strings.ToLower(word)
	switch w {
	case "at", "on", "in", "today", "tonight", "tomorrow", "next", "noon", "midnight":
		return true
	}
	if _, ok := weekdays[w]; ok {
		return true
	}
	return isoDate.MatchString(w) || clock24.MatchString(w) || clock12.MatchString(w)
}

// parseWhen resolves a datetime phrase relative to now. Accepted forms
// combine an optional day (today, tonight, tomorrow, a weekday, next
// weekday, YYYY-MM-DD) with an optional clock time (HH:MM, 3pm, 3:30pm,
// noon, midnight), or a relative offset (in 10 minutes). A bare day means
// 09:00; a bare time means its next occurrence.
func parseWhen(phrase string, now time.Time) (time.Time, error) {
	p := strings.ToLower(strings.TrimSpace(phrase))
	if p == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}
	if m := relative.FindStringSubmatch(p); m != nil {
		return applyOffset(now, m[1], m[2])
	}

	// glue "3 pm" into "3pm" so it stays one word
	p = spacedAmPm.ReplaceAllString(p, "$1$2")

	var (
		day     time.Time
		haveDay bool
		hour    int
		minute  int
		haveClk bool
	)
	words := strings.Fields(p)
	for i := 0; i < len(words); i++ {
		w := words[i]
		wd, isWeekday := weekdays[w]
		switch {
		case w == "at" || w == "on":
			continue
		case w == "today":
			day, haveDay = midnight(now), true
		case w == "tonight":
			day, haveDay = midnight(now), true
			if !haveClk {
				hour, minute, haveClk = 20, 0, true
			}
		case w == "tomorrow":
			day, haveDay = midnight(now).AddDate(0, 0, 1), true
		case w == "next" && i+1 < len(words):
			next, ok := weekdays[words[i+1]]
			if !ok {
				return time.Time{}, fmt.Errorf("unrecognised day %q", words[i+1])
			}
			day, haveDay = nextWeekday(now, next), true
			i++
		case isWeekday:
			day, haveDay = nextWeekday(now, wd), true
		case isoDate.MatchString(w):
			d, err := time.ParseInLocation("2006-01-02", w, now.Location())
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid date %q", w)
			}
			day, haveDay = d, true
		case w == "noon":
			hour, minute, haveClk = 12, 0, true
		case w == "midnight":
			hour, minute, haveClk = 0, 0, true
		default:
			h, m, err := parseClock(w)
			if err != nil {
				return time.Time{}, err
			}
			hour, minute, haveClk = h, m, true
		}
	}

	switch {
	case haveDay && haveClk:
		return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location()), nil
	case haveDay:
		return time.Date(day.Year(), day.Month(), day.Day(), defaultHour, 0, 0, 0, now.Location()), nil
	case haveClk:
		t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("no date or time in %q", phrase)
}

func parseClock(w string) (int, int, error) {
	if m := clock24.FindStringSubmatch(w); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		if h > 23 || mins > 59 {
			return 0, 0, fmt.Errorf("invalid time %q", w)
		}
		return h, mins, nil
	}
	if m := clock12.FindStringSubmatch(w); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins := 0
		if m[2] != "" {
			mins, _ = strconv.Atoi(m[2])
		}
		if h < 1 || h > 12 || mins > 59 {
			return 0, 0, fmt.Errorf("invalid time %q", w)
		}
		h %= 12
		if m[3] == "pm" {
			h += 12
		}
		return h, mins, nil
	}
	return 0, 0, fmt.Errorf("unrecognised time %q", w)
}

func applyOffset(now time.Time, count, unit string) (time.Time, error) {
	n := 1
	if count != "a" && count != "an" && count != "one" {
		var err error
		if n, err = strconv.Atoi(count); err != nil || n <= 0 {
			return time.Time{}, fmt.Errorf("invalid offset %q", count)
		}
	}
	switch {
	case strings.HasPrefix(unit, "min"):
		return now.Add(time.Duration(n) * time.Minute).Truncate(time.Minute), nil
	case strings.HasPrefix(unit, "h"):
		return now.Add(time.Duration(n) * time.Hour).Truncate(time.Minute), nil
	default:
		return now.AddDate(0, 0, n).Truncate(time.Minute), nil
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// nextWeekday returns the start of the next wd strictly after today.
func nextWeekday(now time.Time, wd time.Weekday) time.Time {
	delta := (int(wd) - int(now.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return midnight(now).AddDate(0, 0, delta)
}
