package coordinator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radio-aktywne/showcaster/internal/coordinator"
	"github.com/radio-aktywne/showcaster/internal/eventbus"
	"github.com/radio-aktywne/showcaster/internal/model"
	"github.com/radio-aktywne/showcaster/internal/showerr"
)

func newEventCoordinator() (*coordinator.EventCoordinator, *fakeRelStore, *fakeCalStore, *eventbus.Bus) {
	rel := newFakeRelStore()
	cal := newFakeCalStore()
	bus := eventbus.New()
	deps := coordinator.Deps{Rel: rel, Cal: cal, Bus: bus}
	return coordinator.NewEventCoordinator(deps), rel, cal, bus
}

func TestEventCreatePublishesEventCreated(t *testing.T) {
	ctx := context.Background()
	c, _, cal, bus := newEventCoordinator()
	sub, unsub := bus.Subscribe()
	defer unsub()

	start := time.Date(2030, 3, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	id := "ev-1"
	event, err := c.Create(ctx, model.EventCreateInput{ID: &id, Type: "broadcast", Start: start, End: end, Timezone: "UTC"})
	require.NoError(t, err)
	assert.Equal(t, "ev-1", event.ID)

	stored, err := cal.Get(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, start, stored.Start)

	select {
	case got := <-sub:
		assert.Equal(t, model.EventCreated, got.Type)
		assert.Equal(t, "ev-1", got.Data.Event.ID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event-created notification")
	}
}

func TestEventCreateRejectsEndBeforeStart(t *testing.T) {
	ctx := context.Background()
	c, _, _, _ := newEventCoordinator()

	start := time.Date(2030, 3, 1, 18, 0, 0, 0, time.UTC)
	_, err := c.Create(ctx, model.EventCreateInput{Type: "broadcast", Start: start, End: start.Add(-time.Minute), Timezone: "UTC"})
	require.Error(t, err)
	assert.Equal(t, showerr.Validation, showerr.KindOf(err))
}

// TestEventCreateAllowsZeroDurationEvent exercises invariant 3 (end >= start):
// an instantaneous event where end equals start is valid, only end < start
// is a validation error.
func TestEventCreateAllowsZeroDurationEvent(t *testing.T) {
	ctx := context.Background()
	c, _, _, _ := newEventCoordinator()

	start := time.Date(2030, 3, 1, 18, 0, 0, 0, time.UTC)
	event, err := c.Create(ctx, model.EventCreateInput{Type: "broadcast", Start: start, End: start, Timezone: "UTC"})
	require.NoError(t, err)
	assert.Equal(t, start, event.End)
}

func TestEventGetReturnsNilForMissingID(t *testing.T) {
	ctx := context.Background()
	c, _, _, _ := newEventCoordinator()

	event, err := c.Get(ctx, model.EventWhereUnique{ID: "missing"}, nil)
	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestEventUpdateAppliesStateMachineAndPublishesOnce(t *testing.T) {
	ctx := context.Background()
	c, _, cal, bus := newEventCoordinator()
	sub, unsub := bus.Subscribe()
	defer unsub()

	start := time.Date(2030, 3, 1, 18, 0, 0, 0, time.UTC)
	id := "ev-1"
	_, err := c.Create(ctx, model.EventCreateInput{ID: &id, Type: "broadcast", Start: start, End: start.Add(time.Hour), Timezone: "UTC"})
	require.NoError(t, err)
	<-sub // drain the create notification

	newStart := start.Add(24 * time.Hour)
	updated, err := c.Update(ctx, model.EventWhereUnique{ID: "ev-1"}, model.EventUpdateInput{Start: &newStart})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, newStart, updated.Start)

	stored, err := cal.Get(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, newStart, stored.Start)

	select {
	case got := <-sub:
		assert.Equal(t, model.EventUpdated, got.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event-updated notification")
	}
	select {
	case <-sub:
		t.Fatal("received a second notification for one update")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventUpdateChangingIDMovesVEVENT(t *testing.T) {
	ctx := context.Background()
	c, _, cal, _ := newEventCoordinator()

	start := time.Date(2030, 3, 1, 18, 0, 0, 0, time.UTC)
	id := "ev-1"
	_, err := c.Create(ctx, model.EventCreateInput{ID: &id, Type: "broadcast", Start: start, End: start.Add(time.Hour), Timezone: "UTC"})
	require.NoError(t, err)

	newID := "ev-2"
	updated, err := c.Update(ctx, model.EventWhereUnique{ID: "ev-1"}, model.EventUpdateInput{ID: &newID})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "ev-2", updated.ID)

	_, err = cal.Get(ctx, "ev-1")
	require.Error(t, err)
	_, err = cal.Get(ctx, "ev-2")
	require.NoError(t, err)
}

func TestEventUpdateReturnsNilForMissingEvent(t *testing.T) {
	ctx := context.Background()
	c, _, _, _ := newEventCoordinator()

	updated, err := c.Update(ctx, model.EventWhereUnique{ID: "missing"}, model.EventUpdateInput{})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestEventDeleteRemovesBothHalvesAndPublishes(t *testing.T) {
	ctx := context.Background()
	c, _, cal, bus := newEventCoordinator()
	sub, unsub := bus.Subscribe()
	defer unsub()

	start := time.Date(2030, 3, 1, 18, 0, 0, 0, time.UTC)
	id := "ev-1"
	_, err := c.Create(ctx, model.EventCreateInput{ID: &id, Type: "broadcast", Start: start, End: start.Add(time.Hour), Timezone: "UTC"})
	require.NoError(t, err)
	<-sub

	deleted, err := c.Delete(ctx, model.EventWhereUnique{ID: "ev-1"})
	require.NoError(t, err)
	require.NotNil(t, deleted)

	_, err = cal.Get(ctx, "ev-1")
	require.Error(t, err)

	select {
	case got := <-sub:
		assert.Equal(t, model.EventDeleted, got.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event-deleted notification")
	}
}

func TestEventListFusesQueryIntoWhere(t *testing.T) {
	ctx := context.Background()
	c, _, _, _ := newEventCoordinator()

	base := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)
	mkID := func(id string, start time.Time) {
		id2 := id
		_, err := c.Create(ctx, model.EventCreateInput{ID: &id2, Type: "broadcast", Start: start, End: start.Add(time.Hour), Timezone: "UTC"})
		require.NoError(t, err)
	}
	mkID("in-range", base.Add(time.Hour))
	mkID("out-of-range", base.Add(48*time.Hour))

	qStart := base
	qEnd := base.Add(24 * time.Hour)
	events, err := c.List(ctx, coordinator.ListEventsOptions{
		Query: &model.Query{Type: "time-range", TimeRange: &model.TimeRangeQuery{Start: &qStart, End: &qEnd}},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "in-range", events[0].ID)
}

func TestEventListAppliesTemporalOrder(t *testing.T) {
	ctx := context.Background()
	c, _, _, _ := newEventCoordinator()

	base := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"later", "earlier"} {
		start := base.Add(time.Duration(2-i) * time.Hour)
		localID := id
		_, err := c.Create(ctx, model.EventCreateInput{ID: &localID, Type: "broadcast", Start: start, End: start.Add(time.Minute), Timezone: "UTC"})
		require.NoError(t, err)
	}

	events, err := c.List(ctx, coordinator.ListEventsOptions{
		Order: []model.EventOrder{{TemporalField: model.TemporalOrderStart, Direction: model.SortAsc}},
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].Start.Before(events[1].Start))
}
