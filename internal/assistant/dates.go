package assistant

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// clockRx matches an "H:MM am/pm" style time of day inside a phrase like
// "tomorrow at 3:30 pm".
var clockRx = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*(am|pm)`)

// genericDateLayouts are tried in order when none of the fixed phrases
// match. Deliberately a short list, not a calendar-expression grammar.
var genericDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"2006/01/02",
}

// ResolveDeadline turns a natural-language deadline into a normalized
// RFC 3339 timestamp. It recognizes a narrow fixed set of phrases
// ("today", "tomorrow", "next week"), an optional clock time, and falls
// back to generic date parsing. Returns false when the input cannot be
// resolved; callers skip the update for that field only.
func ResolveDeadline(input string, now time.Time) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" || s == "none" {
		return "", false
	}

	hour, minute, hasClock := parseClock(s)

	var day time.Time
	switch {
	case strings.Contains(s, "today"):
		day = now
	case strings.Contains(s, "tomorrow"):
		day = now.AddDate(0, 0, 1)
	case strings.Contains(s, "next week"):
		day = now.AddDate(0, 0, 7)
	default:
		for _, layout := range genericDateLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(input)); err == nil {
				return t.Format(time.RFC3339), true
			}
		}
		return "", false
	}

	if !hasClock {
		hour, minute = 0, 0
	}
	resolved := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
	return resolved.Format(time.RFC3339), true
}

func parseClock(s string) (hour, minute int, ok bool) {
	m := clockRx.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil || h < 1 || h > 12 {
		return 0, 0, false
	}
	min, err := strconv.Atoi(m[2])
	if err != nil || min > 59 {
		return 0, 0, false
	}
	if m[3] == "pm" && h != 12 {
		h += 12
	}
	if m[3] == "am" && h == 12 {
		h = 0
	}
	return h, min, true
}
