package coordinator

import (
	"context"
	"time"

	"github.com/radio-aktywne/showcaster/internal/model"
	"github.com/radio-aktywne/showcaster/internal/relstore"
	"github.com/radio-aktywne/showcaster/internal/showerr"
)

// ListEventsOptions is the combined predicate/pagination/ordering/include
// input to List. Query, when set, is resolved against CalStore first and
// fused into Where (§4.4) before the RelStore page is fetched.
type ListEventsOptions struct {
	Where   *model.EventWhere
	Query   *model.Query
	Order   []model.EventOrder
	Limit   *int
	Offset  *int
	Include *model.EventInclude
}

func (c *EventCoordinator) Count(ctx context.Context, where *model.EventWhere, query *model.Query) (int, error) {
	if query != nil {
		ids, err := c.queryIDs(ctx, *query)
		if err != nil {
			return 0, err
		}
		where = fuseQueryIDs(where, ids)
	}
	return c.deps.Rel.Events().Count(ctx, where)
}

// List pages through RelStore on the SQL-sortable order keys, merges each
// row with its VEVENT, then applies any temporal order keys in memory.
// Limit/offset apply to the RelStore page, before the CalStore merge —
// they bound rows fetched, not instances expanded.
func (c *EventCoordinator) List(ctx context.Context, opts ListEventsOptions) ([]model.Event, error) {
	where := opts.Where
	if opts.Query != nil {
		ids, err := c.queryIDs(ctx, *opts.Query)
		if err != nil {
			return nil, err
		}
		where = fuseQueryIDs(where, ids)
	}

	sqlOrder, temporalOrder := splitOrder(opts.Order)

	rows, err := c.deps.Rel.Events().FindMany(ctx, where, sqlOrder, opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0, len(rows))
	for _, row := range rows {
		calEvent, err := c.deps.Cal.Get(ctx, row.ID)
		if err != nil {
			if showerr.Is(err, showerr.NotFound) {
				return nil, showerr.Newf(showerr.InvariantViolation, "coordinator.Event.List", "relstore row %q has no matching VEVENT", row.ID)
			}
			return nil, err
		}
		events = append(events, mergeEvent(row, calEvent))
	}

	applyTemporalOrder(events, temporalOrder)

	if opts.Include != nil && opts.Include.Show {
		for i := range events {
			if err := c.hydrateShow(ctx, &events[i]); err != nil {
				return nil, err
			}
		}
	}
	return events, nil
}

func (c *EventCoordinator) Get(ctx context.Context, where model.EventWhereUnique, include *model.EventInclude) (*model.Event, error) {
	row, err := c.deps.Rel.Events().FindUnique(ctx, where)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	calEvent, err := c.deps.Cal.Get(ctx, row.ID)
	if err != nil {
		if showerr.Is(err, showerr.NotFound) {
			return nil, showerr.Newf(showerr.InvariantViolation, "coordinator.Event.Get", "relstore row %q has no matching VEVENT", row.ID)
		}
		return nil, err
	}

	event := mergeEvent(*row, calEvent)
	if include != nil && include.Show {
		if err := c.hydrateShow(ctx, &event); err != nil {
			return nil, err
		}
	}
	return &event, nil
}

// Create inserts the RelStore row and PUTs the VEVENT within one RelStore
// transaction. If the PUT fails, a best-effort compensating DELETE is
// attempted against CalStore before the error is returned and the SQL
// insert rolled back (§4.6).
func (c *EventCoordinator) Create(ctx context.Context, input model.EventCreateInput) (model.Event, error) {
	if err := validateEventTimeRange(input.Start, input.End); err != nil {
		return model.Event{}, err
	}

	var row relstore.EventRow
	err := c.deps.Rel.Transaction(ctx, func(ctx context.Context, tx relstore.Tx) error {
		var err error
		row, err = tx.Events().Create(ctx, relstore.EventRowInput{ID: input.ID, Type: input.Type, ShowID: input.ShowID})
		if err != nil {
			return err
		}

		calEvent := model.Event{
			ID:         row.ID,
			Start:      input.Start,
			End:        input.End,
			Timezone:   input.Timezone,
			Recurrence: input.Recurrence,
		}
		if err := c.deps.Cal.Put(ctx, calEvent); err != nil {
			if delErr := c.deps.Cal.Delete(ctx, row.ID); delErr != nil {
				c.deps.Logger.Warn().Err(delErr).Str("event_id", row.ID).
					Msg("compensating CalStore delete failed after a failed Put")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return model.Event{}, err
	}

	event := mergeEvent(row, model.Event{Start: input.Start, End: input.End, Timezone: input.Timezone, Recurrence: input.Recurrence})
	c.deps.publish(model.EventCreated, model.ChangeEventData{Event: &event})
	return event, nil
}

// Update runs the state machine Begin -> SqlUpdated -> OldCalFetched ->
// CalReconciled -> Published -> End. A missing row short-circuits at Begin
// and returns (nil, nil). Any failure from SqlUpdated onward rolls back the
// SQL transaction and returns before Published, so no ChangeEvent is ever
// published for a change that didn't fully commit.
func (c *EventCoordinator) Update(ctx context.Context, where model.EventWhereUnique, input model.EventUpdateInput) (*model.Event, error) {
	var (
		newRow relstore.EventRow
		newCal model.Event
		found  bool
	)

	err := c.deps.Rel.Transaction(ctx, func(ctx context.Context, tx relstore.Tx) error {
		oldRow, err := tx.Events().FindUnique(ctx, where)
		if err != nil {
			return err
		}
		if oldRow == nil {
			return nil
		}
		found = true

		newRow, err = tx.Events().Update(ctx, where, relstore.EventRowUpdate{ID: input.ID, Type: input.Type, ShowID: input.ShowID})
		if err != nil {
			return err
		}

		oldCal, err := c.deps.Cal.Get(ctx, oldRow.ID)
		if err != nil {
			if showerr.Is(err, showerr.NotFound) {
				return showerr.Newf(showerr.InvariantViolation, "coordinator.Event.Update", "relstore row %q has no matching VEVENT", oldRow.ID)
			}
			return err
		}

		newCal = oldCal
		newCal.ID = newRow.ID
		if input.Start != nil {
			newCal.Start = *input.Start
		}
		if input.End != nil {
			newCal.End = *input.End
		}
		if input.Timezone != nil {
			newCal.Timezone = *input.Timezone
		}
		if input.RecurrenceSet {
			newCal.Recurrence = input.Recurrence
		}
		if err := validateEventTimeRange(newCal.Start, newCal.End); err != nil {
			return err
		}

		if newRow.ID != oldRow.ID {
			if err := c.deps.Cal.Delete(ctx, oldRow.ID); err != nil {
				return err
			}
		}
		return c.deps.Cal.Put(ctx, newCal)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	event := mergeEvent(newRow, newCal)
	c.deps.publish(model.EventUpdated, model.ChangeEventData{Event: &event})
	return &event, nil
}

// Delete removes the RelStore row first, then reads and deletes the VEVENT
// (§5: CalStore delete follows RelStore delete). A row with no matching
// VEVENT is an invariant violation, not a no-op.
func (c *EventCoordinator) Delete(ctx context.Context, where model.EventWhereUnique) (*model.Event, error) {
	existing, err := c.deps.Rel.Events().FindUnique(ctx, where)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	row, err := c.deps.Rel.Events().Delete(ctx, where)
	if err != nil {
		return nil, err
	}

	calEvent, err := c.deps.Cal.Get(ctx, row.ID)
	if err != nil {
		if showerr.Is(err, showerr.NotFound) {
			return nil, showerr.Newf(showerr.InvariantViolation, "coordinator.Event.Delete", "relstore row %q has no matching VEVENT", row.ID)
		}
		return nil, err
	}
	if err := c.deps.Cal.Delete(ctx, row.ID); err != nil {
		return nil, err
	}

	event := mergeEvent(row, calEvent)
	c.deps.publish(model.EventDeleted, model.ChangeEventData{Event: &event})
	return &event, nil
}

func (c *EventCoordinator) queryIDs(ctx context.Context, q model.Query) ([]string, error) {
	events, err := c.deps.Cal.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids, nil
}

func (c *EventCoordinator) hydrateShow(ctx context.Context, event *model.Event) error {
	show, err := c.deps.Rel.Shows().FindUnique(ctx, model.ShowWhereUnique{ID: event.ShowID})
	if err != nil {
		return err
	}
	event.Show = show
	return nil
}

func validateEventTimeRange(start, end time.Time) error {
	if end.Before(start) {
		return showerr.Newf(showerr.Validation, "coordinator.Event", "end must not be before start")
	}
	return nil
}
