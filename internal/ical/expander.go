package ical

import (
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/radio-aktywne/showcaster/internal/model"
	"github.com/radio-aktywne/showcaster/internal/showerr"
)

// Expand materializes a (possibly recurring) Event into concrete occurrences
// whose DTSTART falls in [rangeStart, rangeEnd), both given in UTC (§4.2).
// Non-recurring events yield at most one instance. An unresolvable timezone
// is a fatal Validation error; an empty window yields an empty result.
func Expand(event model.Event, rangeStart, rangeEnd time.Time) ([]model.EventInstance, error) {
	loc, err := time.LoadLocation(event.Timezone)
	if err != nil {
		return nil, showerr.New(showerr.Validation, "ical.Expand", fmt.Errorf("unknown timezone %q: %w", event.Timezone, err))
	}

	duration := event.End.Sub(event.Start)
	localStart := rangeStart.In(loc)
	localEnd := rangeEnd.In(loc)

	if event.Recurrence == nil {
		if inWindow(event.Start, localStart, localEnd) {
			return []model.EventInstance{{EventID: event.ID, Start: event.Start, End: event.End}}, nil
		}
		return nil, nil
	}

	var starts []time.Time

	if rule := event.Recurrence.Rule; rule != nil {
		// Until is a UTC instant; it is moved onto the same naive clock as
		// DTSTART below, and occurrences at or after it are dropped, since
		// Until is exclusive while rrule-go treats UNTIL as inclusive.
		clockRule := *rule
		if rule.Until != nil {
			until := asUTCClock(*rule.Until, loc)
			clockRule.Until = &until
		}
		rruleStr, err := EncodeRule(clockRule)
		if err != nil {
			return nil, err
		}

		// rrule-go's Between operates on the wall-clock numbers it is given;
		// recurrence must repeat at the same wall-clock time in the event's
		// zone regardless of DST shifts (§8 scenario 3), so DTSTART and the
		// window bounds are all expressed as naive UTC-tagged clock values
		// and reinterpreted back into loc afterwards.
		r, err := rrule.StrToRRule("DTSTART:" + asUTCClock(event.Start, loc).Format(dateTimeUTCLayout) + "\nRRULE:" + rruleStr)
		if err != nil {
			return nil, showerr.New(showerr.Validation, "ical.Expand", fmt.Errorf("invalid RRULE: %w", err))
		}

		occurrences := r.Between(asUTCClock(localStart, loc), asUTCClock(localEnd, loc), true)
		for _, o := range occurrences {
			s := fromUTCClock(o, loc)
			if rule.Until != nil && !s.Before(*rule.Until) {
				continue
			}
			starts = append(starts, s)
		}
	}

	starts = append(starts, event.Recurrence.Include...)
	starts = excludeDates(starts, event.Recurrence.Exclude)

	var filtered []time.Time
	for _, s := range starts {
		if inWindow(s, localStart, localEnd) {
			filtered = append(filtered, s)
		}
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Before(filtered[j]) })

	instances := make([]model.EventInstance, len(filtered))
	for i, s := range filtered {
		instances[i] = model.EventInstance{EventID: event.ID, Start: s, End: s.Add(duration)}
	}
	return instances, nil
}

// inWindow reports whether s (an instance's DTSTART) falls in [windowStart,
// windowEnd) (§4.2, §8.3) — instance selection is keyed on start time, not
// on whether the instance's interval overlaps the window.
func inWindow(s, windowStart, windowEnd time.Time) bool {
	return !s.Before(windowStart) && s.Before(windowEnd)
}

// asUTCClock strips loc's offset by re-tagging t's wall-clock components
// (as seen in loc) onto time.UTC, so rrule-go's calendar arithmetic (which
// has no notion of IANA zones) operates on the right wall-clock numbers.
func asUTCClock(t time.Time, loc *time.Location) time.Time {
	wall := t.In(loc)
	return time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), time.UTC)
}

// fromUTCClock is asUTCClock's inverse: it reinterprets t's clock components
// as wall-clock time in loc.
func fromUTCClock(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

func excludeDates(instances, exdates []time.Time) []time.Time {
	if len(exdates) == 0 {
		return instances
	}
	excluded := make(map[string]bool, len(exdates))
	for _, d := range exdates {
		excluded[d.UTC().Format(dateTimeUTCLayout)] = true
	}
	var out []time.Time
	for _, inst := range instances {
		if !excluded[inst.UTC().Format(dateTimeUTCLayout)] {
			out = append(out, inst)
		}
	}
	return out
}
