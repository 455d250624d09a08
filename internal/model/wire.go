package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// The wire DTOs below implement the JSON shapes of §6. Kept separate from
// the domain structs so the domain model never has to carry json tags for
// a transport concern it doesn't own.

type ShowWire struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

func (s Show) Wire() ShowWire {
	return ShowWire{ID: s.ID, Title: s.Title, Description: s.Description}
}

type WeekdayRuleWire struct {
	Day        Weekday `json:"day"`
	Occurrence *int    `json:"occurrence,omitempty"`
}

type RecurrenceRuleWire struct {
	Frequency      Frequency         `json:"frequency"`
	Until          *time.Time        `json:"until,omitempty"`
	Count          *int              `json:"count,omitempty"`
	Interval       int               `json:"interval,omitempty"`
	BySeconds      []int             `json:"bySeconds,omitempty"`
	ByMinutes      []int             `json:"byMinutes,omitempty"`
	ByHours        []int             `json:"byHours,omitempty"`
	ByWeekdays     []WeekdayRuleWire `json:"byWeekdays,omitempty"`
	ByMonthdays    []int             `json:"byMonthdays,omitempty"`
	ByYeardays     []int             `json:"byYeardays,omitempty"`
	ByWeeks        []int             `json:"byWeeks,omitempty"`
	ByMonths       []int             `json:"byMonths,omitempty"`
	BySetPositions []int             `json:"bySetPositions,omitempty"`
	WeekStart      *Weekday          `json:"weekStart,omitempty"`
}

type RecurrenceWire struct {
	Rule    *RecurrenceRuleWire `json:"rule,omitempty"`
	Include []time.Time         `json:"include,omitempty"`
	Exclude []time.Time         `json:"exclude,omitempty"`
}

func (r Recurrence) Wire() RecurrenceWire {
	w := RecurrenceWire{Include: r.Include, Exclude: r.Exclude}
	if r.Rule != nil {
		rule := r.Rule
		rw := &RecurrenceRuleWire{
			Frequency:      rule.Frequency,
			Until:          rule.Until,
			Count:          rule.Count,
			Interval:       rule.Interval,
			BySeconds:      rule.BySeconds,
			ByMinutes:      rule.ByMinutes,
			ByHours:        rule.ByHours,
			ByMonthdays:    rule.ByMonthdays,
			ByYeardays:     rule.ByYeardays,
			ByWeeks:        rule.ByWeeks,
			ByMonths:       rule.ByMonths,
			BySetPositions: rule.BySetPositions,
			WeekStart:      rule.WeekStart,
		}
		for _, wd := range rule.ByWeekdays {
			rw.ByWeekdays = append(rw.ByWeekdays, WeekdayRuleWire{Day: wd.Day, Occurrence: wd.Occurrence})
		}
		w.Rule = rw
	}
	return w
}

func RecurrenceFromWire(w RecurrenceWire) *Recurrence {
	r := &Recurrence{Include: w.Include, Exclude: w.Exclude}
	if w.Rule != nil {
		rule := &RecurrenceRule{
			Frequency:      w.Rule.Frequency,
			Until:          w.Rule.Until,
			Count:          w.Rule.Count,
			Interval:       w.Rule.Interval,
			BySeconds:      w.Rule.BySeconds,
			ByMinutes:      w.Rule.ByMinutes,
			ByHours:        w.Rule.ByHours,
			ByMonthdays:    w.Rule.ByMonthdays,
			ByYeardays:     w.Rule.ByYeardays,
			ByWeeks:        w.Rule.ByWeeks,
			ByMonths:       w.Rule.ByMonths,
			BySetPositions: w.Rule.BySetPositions,
			WeekStart:      w.Rule.WeekStart,
		}
		for _, wd := range w.Rule.ByWeekdays {
			rule.ByWeekdays = append(rule.ByWeekdays, WeekdayRule{Day: wd.Day, Occurrence: wd.Occurrence})
		}
		r.Rule = rule
	}
	return r
}

type EventWire struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	ShowID     string          `json:"showId"`
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	Timezone   string          `json:"timezone"`
	Recurrence *RecurrenceWire `json:"recurrence,omitempty"`
	Show       *ShowWire       `json:"show,omitempty"`
}

func (e Event) Wire() EventWire {
	w := EventWire{
		ID:       e.ID,
		Type:     e.Type,
		ShowID:   e.ShowID,
		Start:    e.Start,
		End:      e.End,
		Timezone: e.Timezone,
	}
	if e.Recurrence != nil {
		rw := e.Recurrence.Wire()
		w.Recurrence = &rw
	}
	if e.Show != nil {
		sw := e.Show.Wire()
		w.Show = &sw
	}
	return w
}

// MarshalJSON encodes the ChangeEvent wire format of §6:
//
//	{ "type": "<tag>", "createdAt": "<ISO-8601 UTC>", "data": {...} }
func (c ChangeEvent) MarshalJSON() ([]byte, error) {
	type envelope struct {
		Type      ChangeEventType `json:"type"`
		CreatedAt time.Time       `json:"createdAt"`
		Data      json.RawMessage `json:"data"`
	}

	var data json.RawMessage
	var err error
	switch {
	case c.Data.Show != nil:
		data, err = json.Marshal(struct {
			Show ShowWire `json:"show"`
		}{Show: c.Data.Show.Wire()})
	case c.Data.Event != nil:
		data, err = json.Marshal(struct {
			Event EventWire `json:"event"`
		}{Event: c.Data.Event.Wire()})
	default:
		return nil, fmt.Errorf("model: change event %q carries no data", c.Type)
	}
	if err != nil {
		return nil, err
	}

	return json.Marshal(envelope{Type: c.Type, CreatedAt: c.CreatedAt.UTC(), Data: data})
}
