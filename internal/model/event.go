package model

import "time"

// Event is a scheduled broadcast occurrence. Identity/type/show come from
// RelStore; start/end/timezone/recurrence come from CalStore. A fully
// merged Event composes both halves, see coordinator.mergeEvent.
type Event struct {
	ID     string
	Type   string
	ShowID string

	// Start and End are wall-clock times, interpreted in Timezone.
	Start time.Time
	End   time.Time
	// Timezone is an IANA zone name, e.g. "Europe/Warsaw".
	Timezone string

	Recurrence *Recurrence

	// Show is populated only when an Include directive requests it.
	Show *Show
}

// EventWhere is a predicate over events.
type EventWhere struct {
	ID     *string
	Type   *string
	ShowID *ShowIDFilter
	IDIn   []string
	And    []EventWhere
}

// ShowIDFilter constrains the ShowID field of an event.
type ShowIDFilter struct {
	Equals string
}

// EventWhereUnique identifies exactly one event.
type EventWhereUnique struct {
	ID string
}

// EventOrderField is one of the SQL-sortable event fields. Temporal fields
// (start/end/timezone) are deliberately absent: they are not indexed in
// RelStore and are sorted in memory by the coordinator.
type EventOrderField string

const (
	EventOrderID     EventOrderField = "id"
	EventOrderType   EventOrderField = "type"
	EventOrderShowID EventOrderField = "show_id"
)

// TemporalOrderField is one of the in-memory-only sortable event fields.
type TemporalOrderField string

const (
	TemporalOrderStart    TemporalOrderField = "start"
	TemporalOrderEnd      TemporalOrderField = "end"
	TemporalOrderTimezone TemporalOrderField = "timezone"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// EventOrder is a single ordering key, either SQL-backed or temporal.
type EventOrder struct {
	Field         EventOrderField
	TemporalField TemporalOrderField
	Direction     SortDirection
}

func (o EventOrder) IsTemporal() bool {
	return o.TemporalField != ""
}

// EventInclude selects which relations to hydrate on read.
type EventInclude struct {
	Show bool
}

// EventCreateInput is the payload for creating an event.
type EventCreateInput struct {
	ID         *string
	Type       string
	ShowID     *string
	Start      time.Time
	End        time.Time
	Timezone   string
	Recurrence *Recurrence
}

// EventUpdateInput carries only the fields to change; absent fields (nil
// pointers, nil Recurrence-holder) mean "leave as-is". RecurrenceSet
// distinguishes "no change" from "clear the recurrence".
type EventUpdateInput struct {
	ID            *string
	Type          *string
	ShowID        *string
	Start         *time.Time
	End           *time.Time
	Timezone      *string
	Recurrence    *Recurrence
	RecurrenceSet bool
}

// EventInstance is a materialized occurrence of a (possibly recurring)
// event: wall-clock start/end in the source event's declared timezone.
type EventInstance struct {
	EventID string
	Start   time.Time
	End     time.Time
}
