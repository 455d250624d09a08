package coordinator

import (
	"context"

	"github.com/radio-aktywne/showcaster/internal/model"
	"github.com/radio-aktywne/showcaster/internal/relstore"
	"github.com/radio-aktywne/showcaster/internal/showerr"
)

type ListShowsOptions struct {
	Where   *model.ShowWhere
	Order   []model.ShowOrder
	Limit   *int
	Offset  *int
	Include *model.ShowInclude
}

func (c *ShowCoordinator) Count(ctx context.Context, where *model.ShowWhere) (int, error) {
	return c.deps.Rel.Shows().Count(ctx, where)
}

func (c *ShowCoordinator) List(ctx context.Context, opts ListShowsOptions) ([]model.Show, error) {
	shows, err := c.deps.Rel.Shows().FindMany(ctx, opts.Where, opts.Order, opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	if opts.Include != nil && opts.Include.Events {
		for i := range shows {
			if err := c.hydrateEvents(ctx, &shows[i]); err != nil {
				return nil, err
			}
		}
	}
	return shows, nil
}

func (c *ShowCoordinator) Get(ctx context.Context, where model.ShowWhereUnique, include *model.ShowInclude) (*model.Show, error) {
	show, err := c.deps.Rel.Shows().FindUnique(ctx, where)
	if err != nil {
		return nil, err
	}
	if show == nil {
		return nil, nil
	}
	if include != nil && include.Events {
		if err := c.hydrateEvents(ctx, show); err != nil {
			return nil, err
		}
	}
	return show, nil
}

func (c *ShowCoordinator) Create(ctx context.Context, input model.ShowCreateInput) (model.Show, error) {
	show, err := c.deps.Rel.Shows().Create(ctx, input)
	if err != nil {
		return model.Show{}, err
	}
	c.deps.publish(model.ShowCreated, model.ChangeEventData{Show: &show})
	return show, nil
}

// Update applies the show's own field changes and, when the update changes
// the show's id, cascades that rename onto every event referencing it in
// one RelStore transaction: snapshot the affected rows, delete them,
// re-create them under the new show id preserving their own ids and
// types, then re-read them by id to get canonical rows back (§4.7).
//
// A show-updated notification is published first, followed by one
// event-updated per affected event — never a duplicate for the same event,
// since this cascade writes the event rows directly and never calls the
// per-event Update path.
func (c *ShowCoordinator) Update(ctx context.Context, where model.ShowWhereUnique, input model.ShowUpdateInput) (*model.Show, error) {
	var (
		newShow model.Show
		rows    []relstore.EventRow
		found   bool
	)

	err := c.deps.Rel.Transaction(ctx, func(ctx context.Context, tx relstore.Tx) error {
		oldShow, err := tx.Shows().FindUnique(ctx, where)
		if err != nil {
			return err
		}
		if oldShow == nil {
			return nil
		}
		found = true

		newShow, err = tx.Shows().Update(ctx, where, input)
		if err != nil {
			return err
		}
		if newShow.ID == oldShow.ID {
			return nil
		}

		affected, err := tx.Events().FindMany(ctx, &model.EventWhere{ShowID: &model.ShowIDFilter{Equals: oldShow.ID}}, nil, nil, nil)
		if err != nil {
			return err
		}
		if len(affected) == 0 {
			return nil
		}

		ids := make([]string, len(affected))
		for i, r := range affected {
			ids[i] = r.ID
		}
		if _, err := tx.Events().DeleteMany(ctx, ids); err != nil {
			return err
		}

		inputs := make([]relstore.EventRowInput, len(affected))
		for i, r := range affected {
			id := r.ID
			showID := newShow.ID
			inputs[i] = relstore.EventRowInput{ID: &id, Type: r.Type, ShowID: &showID}
		}
		if _, err := tx.Events().CreateMany(ctx, inputs); err != nil {
			return err
		}

		rows, err = tx.Events().FindMany(ctx, &model.EventWhere{IDIn: ids}, nil, nil, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	c.deps.publish(model.ShowUpdated, model.ChangeEventData{Show: &newShow})

	for _, row := range rows {
		calEvent, err := c.deps.Cal.Get(ctx, row.ID)
		if err != nil {
			if showerr.Is(err, showerr.NotFound) {
				return nil, showerr.Newf(showerr.InvariantViolation, "coordinator.Show.Update", "relstore row %q has no matching VEVENT", row.ID)
			}
			return nil, err
		}
		event := mergeEvent(row, calEvent)
		c.deps.publish(model.EventUpdated, model.ChangeEventData{Event: &event})
	}

	return &newShow, nil
}

// Delete removes the show and every event referencing it from RelStore in
// one transaction, then deletes each event's VEVENT from CalStore, then
// publishes show-deleted followed by one event-deleted per cascaded
// event (§4.7).
func (c *ShowCoordinator) Delete(ctx context.Context, where model.ShowWhereUnique) (*model.Show, error) {
	var (
		show  model.Show
		rows  []relstore.EventRow
		found bool
	)

	err := c.deps.Rel.Transaction(ctx, func(ctx context.Context, tx relstore.Tx) error {
		existing, err := tx.Shows().FindUnique(ctx, where)
		if err != nil {
			return err
		}
		if existing == nil {
			return nil
		}
		found = true

		rows, err = tx.Events().FindMany(ctx, &model.EventWhere{ShowID: &model.ShowIDFilter{Equals: existing.ID}}, nil, nil, nil)
		if err != nil {
			return err
		}

		if len(rows) > 0 {
			ids := make([]string, len(rows))
			for i, r := range rows {
				ids[i] = r.ID
			}
			if _, err := tx.Events().DeleteMany(ctx, ids); err != nil {
				return err
			}
		}

		show, err = tx.Shows().Delete(ctx, where)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var deletedEvents []model.Event
	for _, row := range rows {
		calEvent, err := c.deps.Cal.Get(ctx, row.ID)
		if err != nil {
			if showerr.Is(err, showerr.NotFound) {
				return nil, showerr.Newf(showerr.InvariantViolation, "coordinator.Show.Delete", "relstore row %q has no matching VEVENT", row.ID)
			}
			return nil, err
		}
		if err := c.deps.Cal.Delete(ctx, row.ID); err != nil {
			return nil, err
		}
		deletedEvents = append(deletedEvents, mergeEvent(row, calEvent))
	}

	c.deps.publish(model.ShowDeleted, model.ChangeEventData{Show: &show})
	for i := range deletedEvents {
		c.deps.publish(model.EventDeleted, model.ChangeEventData{Event: &deletedEvents[i]})
	}
	return &show, nil
}

func (c *ShowCoordinator) hydrateEvents(ctx context.Context, show *model.Show) error {
	rows, err := c.deps.Rel.Events().FindMany(ctx, &model.EventWhere{ShowID: &model.ShowIDFilter{Equals: show.ID}}, nil, nil, nil)
	if err != nil {
		return err
	}
	events := make([]model.Event, 0, len(rows))
	for _, row := range rows {
		calEvent, err := c.deps.Cal.Get(ctx, row.ID)
		if err != nil {
			if showerr.Is(err, showerr.NotFound) {
				return showerr.Newf(showerr.InvariantViolation, "coordinator.Show.hydrateEvents", "relstore row %q has no matching VEVENT", row.ID)
			}
			return err
		}
		events = append(events, mergeEvent(row, calEvent))
	}
	show.Events = events
	return nil
}
