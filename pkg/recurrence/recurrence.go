package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Occurrence is one concrete session materialized from a recurrence rule.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

// Expand materializes an RRULE between windowStart and windowEnd (both
// inclusive, interpreted as calendar dates). When the rule carries BYHOUR /
// BYMINUTE those are honored per occurrence; otherwise every occurrence is
// placed at defaultHour:defaultMinute and runs for durationMinutes. The
// result depends only on the inputs, so recomputing yields the same
// sequence. A malformed rule returns a parse error, never a silent empty
// expansion.
func Expand(rule string, windowStart, windowEnd time.Time, defaultHour, defaultMinute, durationMinutes int) ([]Occurrence, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil, fmt.Errorf("empty recurrence rule")
	}

	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("parse recurrence rule %q: %w", rule, err)
	}

	hasByHour, hasByMinute := declaredTimeParts(rule)

	loc := windowStart.Location()
	dayStart := time.Date(windowStart.Year(), windowStart.Month(), windowStart.Day(), 0, 0, 0, 0, loc)
	dayEnd := time.Date(windowEnd.Year(), windowEnd.Month(), windowEnd.Day(), 23, 59, 59, 0, loc)
	r.DTStart(dayStart)

	duration := time.Duration(durationMinutes) * time.Minute
	var out []Occurrence
	for _, dt := range r.Between(dayStart, dayEnd, true) {
		hour := defaultHour
		if hasByHour {
			hour = dt.Hour()
		}
		minute := defaultMinute
		if hasByMinute {
			minute = dt.Minute()
		}
		start := time.Date(dt.Year(), dt.Month(), dt.Day(), hour, minute, 0, 0, dt.Location())
		out = append(out, Occurrence{Start: start, End: start.Add(duration)})
	}
	return out, nil
}

// declaredTimeParts reports whether the raw rule text declares BYHOUR and
// BYMINUTE components.
func declaredTimeParts(rule string) (byHour, byMinute bool) {
	for _, chunk := range strings.Split(rule, ";") {
		key, _, ok := strings.Cut(chunk, "=")
		if !ok {
			continue
		}
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "BYHOUR":
			byHour = true
		case "BYMINUTE":
			byMinute = true
		}
	}
	return byHour, byMinute
}
