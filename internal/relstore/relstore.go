// Package relstore defines the RelStore Gateway (C5): typed CRUD access to
// the transactional SQL store backing Show rows and Event identity rows
// (id/type/show_id only — start/end/timezone/recurrence live in CalStore),
// independent of any particular SQL driver.
package relstore

import (
	"context"

	"github.com/radio-aktywne/showcaster/internal/model"
)

// EventRow is the RelStore-resident slice of an Event: identity, type, and
// show membership. The Event Coordinator merges this with the CalStore
// VEVENT to produce a full model.Event (§4.5, §4.6).
type EventRow struct {
	ID     string
	Type   string
	ShowID string
}

// EventRowInput is the payload for creating an event row. ID is optional;
// when nil the gateway generates one.
type EventRowInput struct {
	ID     *string
	Type   string
	ShowID *string
}

// EventRowUpdate carries only the fields to change.
type EventRowUpdate struct {
	ID     *string
	Type   *string
	ShowID *string
}

// Tx scopes a sequence of operations to one SQL transaction. Implementations
// commit on a nil return from the callback and roll back otherwise.
type Tx interface {
	Shows() ShowStore
	Events() EventStore
}

// Store is the top-level RelStore Gateway: direct access to both tables plus
// a transaction scope for callers that must make several writes atomically
// (the Event Coordinator's update flow, the Show Coordinator's rename
// cascade, §4.6/§4.7).
type Store interface {
	Shows() ShowStore
	Events() EventStore

	// Transaction runs fn within one SQL transaction, passing a Tx whose
	// Shows()/Events() read-your-writes within the same transaction.
	Transaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	Close()
}

// ShowStore is the Show half of the RelStore Gateway (§4.5).
type ShowStore interface {
	Count(ctx context.Context, where *model.ShowWhere) (int, error)
	FindMany(ctx context.Context, where *model.ShowWhere, order []model.ShowOrder, limit, offset *int) ([]model.Show, error)
	FindUnique(ctx context.Context, where model.ShowWhereUnique) (*model.Show, error)
	Create(ctx context.Context, input model.ShowCreateInput) (model.Show, error)
	Update(ctx context.Context, where model.ShowWhereUnique, input model.ShowUpdateInput) (model.Show, error)
	Delete(ctx context.Context, where model.ShowWhereUnique) (model.Show, error)
}

// EventStore is the Event half of the RelStore Gateway (§4.5). CreateMany and
// DeleteMany exist only to serve the Show Coordinator's cascades (rename and
// delete, §4.7); ordinary callers use Create/Delete.
type EventStore interface {
	Count(ctx context.Context, where *model.EventWhere) (int, error)
	FindMany(ctx context.Context, where *model.EventWhere, order []model.EventOrder, limit, offset *int) ([]EventRow, error)
	FindUnique(ctx context.Context, where model.EventWhereUnique) (*EventRow, error)
	Create(ctx context.Context, input EventRowInput) (EventRow, error)
	Update(ctx context.Context, where model.EventWhereUnique, input EventRowUpdate) (EventRow, error)
	Delete(ctx context.Context, where model.EventWhereUnique) (EventRow, error)
	CreateMany(ctx context.Context, inputs []EventRowInput) ([]EventRow, error)
	DeleteMany(ctx context.Context, ids []string) ([]EventRow, error)
}
