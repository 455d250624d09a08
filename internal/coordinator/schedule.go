package coordinator

import (
	"context"
	"time"

	"github.com/radio-aktywne/showcaster/internal/ical"
	"github.com/radio-aktywne/showcaster/internal/model"
)

// ScheduleOptions narrows the schedule window and, like List, accepts a
// Where/Order/Limit/Offset over the candidate events before expansion.
type ScheduleOptions struct {
	Start  model.TimeRangeQuery
	Where  *model.EventWhere
	Order  []model.EventOrder
	Limit  *int
	Offset *int
}

// Schedule resolves the candidate events for the window (fusing a
// time-range CalStore query the same way List does, §4.4), then expands
// each one's recurrence into concrete instances whose start falls in
// [start, end) (§4.6 composes C2's Expand over the Coordinator's merged
// events).
func (c *EventCoordinator) Schedule(ctx context.Context, opts ScheduleOptions) ([]model.EventInstance, error) {
	start := opts.Start
	events, err := c.List(ctx, ListEventsOptions{
		Where:  opts.Where,
		Query:  &model.Query{Type: "time-range", TimeRange: &start},
		Order:  opts.Order,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
	if err != nil {
		return nil, err
	}

	rangeStart, rangeEnd := windowBounds(start)

	var instances []model.EventInstance
	for _, event := range events {
		expanded, err := ical.Expand(event, rangeStart, rangeEnd)
		if err != nil {
			return nil, err
		}
		instances = append(instances, expanded...)
	}
	return instances, nil
}

func windowBounds(tr model.TimeRangeQuery) (start, end time.Time) {
	if tr.Start != nil {
		start = *tr.Start
	}
	if tr.End != nil {
		end = *tr.End
	} else {
		end = start
	}
	return start, end
}
