package model

import "time"

// Query is the tagged variant accepted by the Query Planner (§4.4). Exactly
// one of TimeRange/Recurring is populated; Type names the wire discriminator.
type Query struct {
	Type string // "time-range" | "recurring"

	TimeRange *TimeRangeQuery
	Recurring *RecurringQuery
}

// TimeRangeQuery selects events whose CalDAV window overlaps [Start, End).
// Either bound may be nil, meaning unbounded in that direction.
type TimeRangeQuery struct {
	Start *time.Time
	End   *time.Time
}

// RecurringQuery selects events whose RRULE is present (true) or absent
// (false).
type RecurringQuery struct {
	Recurring bool
}
