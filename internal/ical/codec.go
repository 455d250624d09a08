// Package ical implements the iCal Codec and Recurrence Expander: encoding
// and decoding of Events to and from RFC 5545 VEVENT text, and expansion of
// a recurring Event into concrete occurrences within a window.
package ical

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/radio-aktywne/showcaster/internal/model"
	"github.com/radio-aktywne/showcaster/internal/showerr"
)

const dateTimeLayout = "20060102T150405"
const dateTimeUTCLayout = "20060102T150405Z"

// rrulePartOrder is the fixed RRULE part emission order required by the wire
// format: FREQ first, then UNTIL/COUNT, then the BY* parts in RFC 5545's own
// declaration order, WKST last.
var rrulePartOrder = []string{
	"FREQ", "UNTIL", "COUNT", "INTERVAL",
	"BYSECOND", "BYMINUTE", "BYHOUR", "BYDAY",
	"BYMONTHDAY", "BYYEARDAY", "BYWEEKNO", "BYMONTH",
	"BYSETPOS", "WKST",
}

var freqWire = map[model.Frequency]string{
	model.FrequencySecondly: "SECONDLY",
	model.FrequencyMinutely: "MINUTELY",
	model.FrequencyHourly:   "HOURLY",
	model.FrequencyDaily:    "DAILY",
	model.FrequencyWeekly:   "WEEKLY",
	model.FrequencyMonthly:  "MONTHLY",
	model.FrequencyYearly:   "YEARLY",
}

var freqFromWire = map[string]model.Frequency{
	"SECONDLY": model.FrequencySecondly,
	"MINUTELY": model.FrequencyMinutely,
	"HOURLY":   model.FrequencyHourly,
	"DAILY":    model.FrequencyDaily,
	"WEEKLY":   model.FrequencyWeekly,
	"MONTHLY":  model.FrequencyMonthly,
	"YEARLY":   model.FrequencyYearly,
}

var weekdayWire = map[model.Weekday]string{
	model.Monday:    "MO",
	model.Tuesday:   "TU",
	model.Wednesday: "WE",
	model.Thursday:  "TH",
	model.Friday:    "FR",
	model.Saturday:  "SA",
	model.Sunday:    "SU",
}

var weekdayFromWire = map[string]model.Weekday{
	"MO": model.Monday,
	"TU": model.Tuesday,
	"WE": model.Wednesday,
	"TH": model.Thursday,
	"FR": model.Friday,
	"SA": model.Saturday,
	"SU": model.Sunday,
}

// Encode renders an Event as a complete VCALENDAR document (§4.1). The
// event's Start/End are formatted as wall-clock times in its declared
// timezone, with TZID omitted and a trailing Z used only when the timezone
// is UTC.
func Encode(event model.Event) ([]byte, error) {
	loc, err := time.LoadLocation(event.Timezone)
	if err != nil {
		return nil, showerr.New(showerr.Validation, "ical.Encode", fmt.Errorf("unknown timezone %q: %w", event.Timezone, err))
	}

	cal := &ical.Calendar{
		Component: &ical.Component{
			Name: ical.CompCalendar,
			Props: ical.Props{
				ical.PropVersion:   []ical.Prop{{Name: ical.PropVersion, Value: "2.0"}},
				ical.PropProductID: []ical.Prop{{Name: ical.PropProductID, Value: "-//showcaster//EN"}},
			},
		},
	}

	comp := &ical.Component{
		Name:  ical.CompEvent,
		Props: make(ical.Props),
	}

	comp.Props.Set(&ical.Prop{Name: ical.PropUID, Value: event.ID})
	comp.Props.Set(&ical.Prop{Name: ical.PropDateTimeStamp, Value: time.Now().UTC().Format(dateTimeUTCLayout)})
	comp.Props.Set(dateTimeProp(ical.PropDateTimeStart, event.Start, loc))
	comp.Props.Set(dateTimeProp(ical.PropDateTimeEnd, event.End, loc))

	if event.Recurrence != nil {
		if err := encodeRecurrence(comp, event.Recurrence, loc); err != nil {
			return nil, err
		}
	}

	cal.Children = []*ical.Component{comp}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, showerr.New(showerr.Calendar, "ical.Encode", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a VCALENDAR document's first VEVENT into an Event. ShowID
// and Type are not part of the wire format and are left zero; the caller
// (the Event Coordinator) fills them in from the RelStore side of the merge.
func Decode(data []byte) (model.Event, error) {
	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	if err != nil {
		return model.Event{}, showerr.New(showerr.Calendar, "ical.Decode", err)
	}

	var comp *ical.Component
	for _, c := range cal.Children {
		if c.Name == ical.CompEvent {
			comp = c
			break
		}
	}
	if comp == nil {
		return model.Event{}, showerr.Newf(showerr.Calendar, "ical.Decode", "no VEVENT component found")
	}

	uid := comp.Props.Get(ical.PropUID)
	if uid == nil {
		return model.Event{}, showerr.Newf(showerr.Calendar, "ical.Decode", "VEVENT missing UID")
	}

	dtstart := comp.Props.Get(ical.PropDateTimeStart)
	if dtstart == nil {
		return model.Event{}, showerr.Newf(showerr.Calendar, "ical.Decode", "VEVENT missing DTSTART")
	}
	start, tz, err := parseDateTimeProp(dtstart)
	if err != nil {
		return model.Event{}, showerr.New(showerr.Calendar, "ical.Decode", fmt.Errorf("invalid DTSTART: %w", err))
	}

	event := model.Event{ID: uid.Value, Start: start, Timezone: tz}

	if dtend := comp.Props.Get(ical.PropDateTimeEnd); dtend != nil {
		end, _, err := parseDateTimeProp(dtend)
		if err != nil {
			return model.Event{}, showerr.New(showerr.Calendar, "ical.Decode", fmt.Errorf("invalid DTEND: %w", err))
		}
		event.End = end
	}

	rec, err := decodeRecurrence(comp, tz)
	if err != nil {
		return model.Event{}, err
	}
	event.Recurrence = rec

	return event, nil
}

func dateTimeProp(name string, t time.Time, loc *time.Location) *ical.Prop {
	prop := &ical.Prop{Name: name}
	if loc == time.UTC {
		prop.Value = t.UTC().Format(dateTimeUTCLayout)
		return prop
	}
	prop.Params = ical.Params{"TZID": []string{loc.String()}}
	prop.Value = t.In(loc).Format(dateTimeLayout)
	return prop
}

// parseDateTimeProp returns the wall-clock instant and the IANA zone name it
// was expressed in: the TZID parameter if present, otherwise "UTC" for a
// Z-suffixed value, otherwise an error (floating local time is not
// representable by the single declared-timezone model, §4.1).
func parseDateTimeProp(prop *ical.Prop) (time.Time, string, error) {
	v := strings.TrimSpace(prop.Value)

	if tzid := prop.Params.Get("TZID"); tzid != "" {
		loc, err := time.LoadLocation(tzid)
		if err != nil {
			return time.Time{}, "", fmt.Errorf("unknown TZID %q: %w", tzid, err)
		}
		t, err := time.ParseInLocation(dateTimeLayout, v, loc)
		if err != nil {
			return time.Time{}, "", err
		}
		return t, tzid, nil
	}

	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse(dateTimeUTCLayout, v)
		if err != nil {
			return time.Time{}, "", err
		}
		return t, "UTC", nil
	}

	return time.Time{}, "", fmt.Errorf("date-time %q has neither TZID nor Z suffix", v)
}

func encodeRecurrence(comp *ical.Component, rec *model.Recurrence, loc *time.Location) error {
	if rec.Rule != nil {
		val, err := EncodeRule(*rec.Rule)
		if err != nil {
			return err
		}
		comp.Props.Set(&ical.Prop{Name: ical.PropRecurrenceRule, Value: val})
	}

	if len(rec.Include) > 0 {
		if err := checkSingleZone(rec.Include, loc); err != nil {
			return err
		}
		comp.Props.Set(multiDateProp(ical.PropRecurrenceDates, rec.Include, loc))
	}
	if len(rec.Exclude) > 0 {
		if err := checkSingleZone(rec.Exclude, loc); err != nil {
			return err
		}
		comp.Props.Set(multiDateProp(ical.PropExceptionDates, rec.Exclude, loc))
	}
	return nil
}

// checkSingleZone is a no-op guard: RDATE/EXDATE entries are wall-clock
// times already anchored to the event's single declared timezone, so there
// is nothing to validate beyond their presence. Kept as a named step because
// the wire decoder (multi-TZID RDATE lines) is where the real mixed-zone
// rejection happens, see decodeMultiDateProps.
func checkSingleZone(_ []time.Time, _ *time.Location) error { return nil }

func multiDateProp(name string, dates []time.Time, loc *time.Location) *ical.Prop {
	formatted := make([]string, len(dates))
	for i, d := range dates {
		if loc == time.UTC {
			formatted[i] = d.UTC().Format(dateTimeUTCLayout)
		} else {
			formatted[i] = d.In(loc).Format(dateTimeLayout)
		}
	}
	prop := &ical.Prop{Name: name, Value: strings.Join(formatted, ",")}
	if loc != time.UTC {
		prop.Params = ical.Params{"TZID": []string{loc.String()}}
	}
	return prop
}

func decodeRecurrence(comp *ical.Component, tz string) (*model.Recurrence, error) {
	var rec *model.Recurrence

	if rr := comp.Props.Get(ical.PropRecurrenceRule); rr != nil {
		rule, err := DecodeRule(rr.Value)
		if err != nil {
			return nil, err
		}
		rec = &model.Recurrence{Rule: &rule}
	}

	include, err := decodeMultiDateProps(comp.Props.Values(ical.PropRecurrenceDates), tz)
	if err != nil {
		return nil, err
	}
	exclude, err := decodeMultiDateProps(comp.Props.Values(ical.PropExceptionDates), tz)
	if err != nil {
		return nil, err
	}
	if len(include) > 0 || len(exclude) > 0 {
		if rec == nil {
			rec = &model.Recurrence{}
		}
		rec.Include = include
		rec.Exclude = exclude
	}

	return rec, nil
}

// decodeMultiDateProps parses one or more RDATE/EXDATE property lines and
// enforces that every entry is expressed in the same timezone as DTSTART
// (invariant: an event has exactly one declared timezone).
func decodeMultiDateProps(props []ical.Prop, eventTZ string) ([]time.Time, error) {
	var out []time.Time
	for _, p := range props {
		tzid := p.Params.Get("TZID")
		zone := tzid
		if zone == "" {
			zone = "UTC"
		}
		if zone != eventTZ {
			return nil, showerr.Newf(showerr.Validation, "ical.decodeMultiDateProps",
				"RDATE/EXDATE timezone %q does not match event timezone %q", zone, eventTZ)
		}

		var loc *time.Location
		var layout string
		if tzid != "" {
			l, err := time.LoadLocation(tzid)
			if err != nil {
				return nil, showerr.New(showerr.Validation, "ical.decodeMultiDateProps", err)
			}
			loc = l
			layout = dateTimeLayout
		} else {
			loc = time.UTC
			layout = dateTimeUTCLayout
		}

		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			t, err := time.ParseInLocation(layout, part, loc)
			if err != nil {
				return nil, showerr.New(showerr.Validation, "ical.decodeMultiDateProps", err)
			}
			out = append(out, t)
		}
	}
	return out, nil
}

// EncodeRule renders a RecurrenceRule as an RRULE value string with parts in
// the fixed order FREQ, UNTIL, COUNT, INTERVAL, BYSECOND, BYMINUTE, BYHOUR,
// BYDAY, BYMONTHDAY, BYYEARDAY, BYWEEKNO, BYMONTH, BYSETPOS, WKST (§4.1).
func EncodeRule(rule model.RecurrenceRule) (string, error) {
	if rule.Until != nil && rule.Count != nil {
		return "", showerr.Newf(showerr.Validation, "ical.EncodeRule", "UNTIL and COUNT are mutually exclusive")
	}

	parts := map[string]string{}

	freq, ok := freqWire[rule.Frequency]
	if !ok {
		return "", showerr.Newf(showerr.Validation, "ical.EncodeRule", "unknown frequency %q", rule.Frequency)
	}
	parts["FREQ"] = freq

	if rule.Until != nil {
		parts["UNTIL"] = rule.Until.UTC().Format(dateTimeUTCLayout)
	}
	if rule.Count != nil {
		parts["COUNT"] = strconv.Itoa(*rule.Count)
	}
	if rule.Interval > 1 {
		parts["INTERVAL"] = strconv.Itoa(rule.Interval)
	}
	if len(rule.BySeconds) > 0 {
		parts["BYSECOND"] = joinInts(rule.BySeconds)
	}
	if len(rule.ByMinutes) > 0 {
		parts["BYMINUTE"] = joinInts(rule.ByMinutes)
	}
	if len(rule.ByHours) > 0 {
		parts["BYHOUR"] = joinInts(rule.ByHours)
	}
	if len(rule.ByWeekdays) > 0 {
		days := make([]string, len(rule.ByWeekdays))
		for i, wd := range rule.ByWeekdays {
			code, ok := weekdayWire[wd.Day]
			if !ok {
				return "", showerr.Newf(showerr.Validation, "ical.EncodeRule", "unknown weekday %q", wd.Day)
			}
			if wd.Occurrence != nil {
				days[i] = strconv.Itoa(*wd.Occurrence) + code
			} else {
				days[i] = code
			}
		}
		parts["BYDAY"] = strings.Join(days, ",")
	}
	if len(rule.ByMonthdays) > 0 {
		parts["BYMONTHDAY"] = joinInts(rule.ByMonthdays)
	}
	if len(rule.ByYeardays) > 0 {
		parts["BYYEARDAY"] = joinInts(rule.ByYeardays)
	}
	if len(rule.ByWeeks) > 0 {
		parts["BYWEEKNO"] = joinInts(rule.ByWeeks)
	}
	if len(rule.ByMonths) > 0 {
		parts["BYMONTH"] = joinInts(rule.ByMonths)
	}
	if len(rule.BySetPositions) > 0 {
		parts["BYSETPOS"] = joinInts(rule.BySetPositions)
	}
	if rule.WeekStart != nil {
		code, ok := weekdayWire[*rule.WeekStart]
		if !ok {
			return "", showerr.Newf(showerr.Validation, "ical.EncodeRule", "unknown weekday %q", *rule.WeekStart)
		}
		parts["WKST"] = code
	}

	var segs []string
	for _, key := range rrulePartOrder {
		if v, ok := parts[key]; ok {
			segs = append(segs, key+"="+v)
		}
	}
	return strings.Join(segs, ";"), nil
}

// DecodeRule parses an RRULE value string into a RecurrenceRule. Part order
// on the wire is not required on decode, only on encode.
func DecodeRule(value string) (model.RecurrenceRule, error) {
	rule := model.RecurrenceRule{Interval: 1}

	for _, seg := range strings.Split(value, ";") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		kv := strings.SplitN(seg, "=", 2)
		if len(kv) != 2 {
			return rule, showerr.Newf(showerr.Validation, "ical.DecodeRule", "malformed RRULE part %q", seg)
		}
		key, val := kv[0], kv[1]

		switch key {
		case "FREQ":
			freq, ok := freqFromWire[val]
			if !ok {
				return rule, showerr.Newf(showerr.Validation, "ical.DecodeRule", "unknown FREQ %q", val)
			}
			rule.Frequency = freq
		case "UNTIL":
			t, err := time.Parse(dateTimeUTCLayout, val)
			if err != nil {
				t, err = time.Parse("20060102", val)
				if err != nil {
					return rule, showerr.New(showerr.Validation, "ical.DecodeRule", fmt.Errorf("invalid UNTIL: %w", err))
				}
			}
			rule.Until = &t
		case "COUNT":
			n, err := strconv.Atoi(val)
			if err != nil {
				return rule, showerr.New(showerr.Validation, "ical.DecodeRule", fmt.Errorf("invalid COUNT: %w", err))
			}
			rule.Count = &n
		case "INTERVAL":
			n, err := strconv.Atoi(val)
			if err != nil {
				return rule, showerr.New(showerr.Validation, "ical.DecodeRule", fmt.Errorf("invalid INTERVAL: %w", err))
			}
			rule.Interval = n
		case "BYSECOND":
			ints, err := splitIntsInRange("BYSECOND", val, 0, 60, false)
			if err != nil {
				return rule, err
			}
			rule.BySeconds = ints
		case "BYMINUTE":
			ints, err := splitIntsInRange("BYMINUTE", val, 0, 59, false)
			if err != nil {
				return rule, err
			}
			rule.ByMinutes = ints
		case "BYHOUR":
			ints, err := splitIntsInRange("BYHOUR", val, 0, 23, false)
			if err != nil {
				return rule, err
			}
			rule.ByHours = ints
		case "BYDAY":
			for _, d := range strings.Split(val, ",") {
				wd, err := parseWeekdayRule(d)
				if err != nil {
					return rule, err
				}
				rule.ByWeekdays = append(rule.ByWeekdays, wd)
			}
		case "BYMONTHDAY":
			ints, err := splitIntsInRange("BYMONTHDAY", val, 1, 31, true)
			if err != nil {
				return rule, err
			}
			rule.ByMonthdays = ints
		case "BYYEARDAY":
			ints, err := splitIntsInRange("BYYEARDAY", val, 1, 366, true)
			if err != nil {
				return rule, err
			}
			rule.ByYeardays = ints
		case "BYWEEKNO":
			ints, err := splitIntsInRange("BYWEEKNO", val, 1, 53, true)
			if err != nil {
				return rule, err
			}
			rule.ByWeeks = ints
		case "BYMONTH":
			ints, err := splitIntsInRange("BYMONTH", val, 1, 12, false)
			if err != nil {
				return rule, err
			}
			rule.ByMonths = ints
		case "BYSETPOS":
			ints, err := splitInts(val)
			if err != nil {
				return rule, err
			}
			rule.BySetPositions = ints
		case "WKST":
			wd, ok := weekdayFromWire[val]
			if !ok {
				return rule, showerr.Newf(showerr.Validation, "ical.DecodeRule", "unknown WKST %q", val)
			}
			rule.WeekStart = &wd
		}
	}

	if rule.Frequency == "" {
		return rule, showerr.Newf(showerr.Validation, "ical.DecodeRule", "RRULE missing FREQ")
	}
	if rule.Until != nil && rule.Count != nil {
		return rule, showerr.Newf(showerr.Validation, "ical.DecodeRule", "UNTIL and COUNT are mutually exclusive")
	}
	return rule, nil
}

func parseWeekdayRule(s string) (model.WeekdayRule, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return model.WeekdayRule{}, showerr.Newf(showerr.Validation, "ical.parseWeekdayRule", "malformed BYDAY entry %q", s)
	}
	code := s[len(s)-2:]
	day, ok := weekdayFromWire[code]
	if !ok {
		return model.WeekdayRule{}, showerr.Newf(showerr.Validation, "ical.parseWeekdayRule", "unknown weekday code %q", code)
	}
	wd := model.WeekdayRule{Day: day}
	if prefix := strings.TrimSpace(s[:len(s)-2]); prefix != "" {
		n, err := strconv.Atoi(prefix)
		if err != nil {
			return model.WeekdayRule{}, showerr.New(showerr.Validation, "ical.parseWeekdayRule", fmt.Errorf("invalid occurrence prefix %q: %w", prefix, err))
		}
		wd.Occurrence = &n
	}
	return wd, nil
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) ([]int, error) {
	var out []int
	for _, p := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, showerr.New(showerr.Validation, "ical.splitInts", fmt.Errorf("invalid integer %q: %w", p, err))
		}
		out = append(out, n)
	}
	return out, nil
}

// splitIntsInRange parses a comma-separated RRULE BY* value and validates
// each entry against its RFC 5545 range (§4.1). signedRange permits the
// negative "from the end" form (e.g. BYMONTHDAY=-1), where the value's
// magnitude must fall in [min,max] and zero is never allowed.
func splitIntsInRange(key, s string, min, max int, signedRange bool) ([]int, error) {
	ints, err := splitInts(s)
	if err != nil {
		return nil, err
	}
	for _, n := range ints {
		if !inByRange(n, min, max, signedRange) {
			return nil, showerr.Newf(showerr.Validation, "ical.DecodeRule", "%s value %d out of range", key, n)
		}
	}
	return ints, nil
}

func inByRange(n, min, max int, signedRange bool) bool {
	if signedRange {
		if n == 0 {
			return false
		}
		if n < 0 {
			n = -n
		}
	}
	return n >= min && n <= max
}
