// Package coordinator implements the Event Coordinator (C6) and Show
// Coordinator (C7): the public operations that keep RelStore and CalStore
// consistent, fuse CalDAV query results with SQL predicates, and publish
// ChangeEvents after a successful commit.
package coordinator

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/radio-aktywne/showcaster/internal/eventbus"
	"github.com/radio-aktywne/showcaster/internal/model"
	"github.com/radio-aktywne/showcaster/internal/relstore"
)

// CalStore is the subset of the CalStore Client (C3) the coordinators use.
// Narrowed to an interface here so tests can substitute a fake.
type CalStore interface {
	Get(ctx context.Context, id string) (model.Event, error)
	Put(ctx context.Context, event model.Event) error
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, q model.Query) ([]model.Event, error)
}

// Deps are the dependencies shared by both coordinators.
type Deps struct {
	Rel    relstore.Store
	Cal    CalStore
	Bus    *eventbus.Bus
	Logger zerolog.Logger
}

// EventCoordinator implements §4.6.
type EventCoordinator struct {
	deps Deps
}

func NewEventCoordinator(deps Deps) *EventCoordinator {
	return &EventCoordinator{deps: deps}
}

// ShowCoordinator implements §4.7.
type ShowCoordinator struct {
	deps Deps
}

func NewShowCoordinator(deps Deps) *ShowCoordinator {
	return &ShowCoordinator{deps: deps}
}

func (d Deps) publish(changeType model.ChangeEventType, data model.ChangeEventData) {
	d.Bus.Publish(model.ChangeEvent{Type: changeType, CreatedAt: time.Now().UTC(), Data: data})
}
