package httpapi_test

import (
	"context"
	"strconv"
	"sync"

	"github.com/radio-aktywne/showcaster/internal/model"
	"github.com/radio-aktywne/showcaster/internal/relstore"
	"github.com/radio-aktywne/showcaster/internal/showerr"
)

// fakeRelStore is a minimal in-memory relstore.Store, enough to drive the
// coordinators behind the HTTP layer without a live Postgres instance.
type fakeRelStore struct {
	mu     sync.Mutex
	shows  map[string]model.Show
	events map[string]relstore.EventRow
	nextID int
}

func newFakeRelStore() *fakeRelStore {
	return &fakeRelStore{shows: map[string]model.Show{}, events: map[string]relstore.EventRow{}}
}

func (f *fakeRelStore) genID() string {
	f.nextID++
	return "gen-" + strconv.Itoa(f.nextID)
}

func (f *fakeRelStore) Shows() relstore.ShowStore   { return &fakeShowStore{f} }
func (f *fakeRelStore) Events() relstore.EventStore { return &fakeEventStore{f} }
func (f *fakeRelStore) Close()                      {}

func (f *fakeRelStore) Transaction(ctx context.Context, fn func(ctx context.Context, tx relstore.Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(ctx, &fakeTx{f})
}

type fakeTx struct{ f *fakeRelStore }

func (t *fakeTx) Shows() relstore.ShowStore   { return &fakeShowStore{t.f} }
func (t *fakeTx) Events() relstore.EventStore { return &fakeEventStore{t.f} }

type fakeShowStore struct{ f *fakeRelStore }

func (s *fakeShowStore) Count(ctx context.Context, where *model.ShowWhere) (int, error) {
	n := 0
	for _, sh := range s.f.shows {
		if matchShow(where, sh) {
			n++
		}
	}
	return n, nil
}

func (s *fakeShowStore) FindMany(ctx context.Context, where *model.ShowWhere, order []model.ShowOrder, limit, offset *int) ([]model.Show, error) {
	var out []model.Show
	for _, sh := range s.f.shows {
		if matchShow(where, sh) {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (s *fakeShowStore) FindUnique(ctx context.Context, where model.ShowWhereUnique) (*model.Show, error) {
	sh, ok := s.f.shows[where.ID]
	if !ok {
		return nil, nil
	}
	return &sh, nil
}

func (s *fakeShowStore) Create(ctx context.Context, input model.ShowCreateInput) (model.Show, error) {
	id := input.ID
	if id == nil {
		generated := s.f.genID()
		id = &generated
	}
	sh := model.Show{ID: *id, Title: input.Title, Description: input.Description}
	s.f.shows[sh.ID] = sh
	return sh, nil
}

func (s *fakeShowStore) Update(ctx context.Context, where model.ShowWhereUnique, input model.ShowUpdateInput) (model.Show, error) {
	sh, ok := s.f.shows[where.ID]
	if !ok {
		return model.Show{}, showerr.Newf(showerr.NotFound, "fake.Show.Update", "show %q not found", where.ID)
	}
	delete(s.f.shows, where.ID)
	if input.ID != nil {
		sh.ID = *input.ID
	}
	if input.Title != nil {
		sh.Title = *input.Title
	}
	if input.Description != nil {
		sh.Description = input.Description
	}
	s.f.shows[sh.ID] = sh
	return sh, nil
}

func (s *fakeShowStore) Delete(ctx context.Context, where model.ShowWhereUnique) (model.Show, error) {
	sh, ok := s.f.shows[where.ID]
	if !ok {
		return model.Show{}, showerr.Newf(showerr.NotFound, "fake.Show.Delete", "show %q not found", where.ID)
	}
	delete(s.f.shows, where.ID)
	return sh, nil
}

func matchShow(where *model.ShowWhere, sh model.Show) bool {
	if where == nil {
		return true
	}
	if where.ID != nil && *where.ID != sh.ID {
		return false
	}
	if where.Title != nil && *where.Title != sh.Title {
		return false
	}
	for _, and := range where.And {
		if !matchShow(&and, sh) {
			return false
		}
	}
	return true
}

type fakeEventStore struct{ f *fakeRelStore }

func (e *fakeEventStore) Count(ctx context.Context, where *model.EventWhere) (int, error) {
	n := 0
	for _, row := range e.f.events {
		if matchEvent(where, row) {
			n++
		}
	}
	return n, nil
}

func (e *fakeEventStore) FindMany(ctx context.Context, where *model.EventWhere, order []model.EventOrder, limit, offset *int) ([]relstore.EventRow, error) {
	var out []relstore.EventRow
	for _, row := range e.f.events {
		if matchEvent(where, row) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (e *fakeEventStore) FindUnique(ctx context.Context, where model.EventWhereUnique) (*relstore.EventRow, error) {
	row, ok := e.f.events[where.ID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (e *fakeEventStore) Create(ctx context.Context, input relstore.EventRowInput) (relstore.EventRow, error) {
	id := input.ID
	if id == nil {
		generated := e.f.genID()
		id = &generated
	}
	var showID string
	if input.ShowID != nil {
		showID = *input.ShowID
	}
	row := relstore.EventRow{ID: *id, Type: input.Type, ShowID: showID}
	e.f.events[row.ID] = row
	return row, nil
}

func (e *fakeEventStore) Update(ctx context.Context, where model.EventWhereUnique, input relstore.EventRowUpdate) (relstore.EventRow, error) {
	row, ok := e.f.events[where.ID]
	if !ok {
		return relstore.EventRow{}, showerr.Newf(showerr.NotFound, "fake.Event.Update", "event %q not found", where.ID)
	}
	delete(e.f.events, where.ID)
	if input.ID != nil {
		row.ID = *input.ID
	}
	if input.Type != nil {
		row.Type = *input.Type
	}
	if input.ShowID != nil {
		row.ShowID = *input.ShowID
	}
	e.f.events[row.ID] = row
	return row, nil
}

func (e *fakeEventStore) Delete(ctx context.Context, where model.EventWhereUnique) (relstore.EventRow, error) {
	row, ok := e.f.events[where.ID]
	if !ok {
		return relstore.EventRow{}, showerr.Newf(showerr.NotFound, "fake.Event.Delete", "event %q not found", where.ID)
	}
	delete(e.f.events, where.ID)
	return row, nil
}

func (e *fakeEventStore) CreateMany(ctx context.Context, inputs []relstore.EventRowInput) ([]relstore.EventRow, error) {
	out := make([]relstore.EventRow, 0, len(inputs))
	for _, input := range inputs {
		row, err := e.Create(ctx, input)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (e *fakeEventStore) DeleteMany(ctx context.Context, ids []string) ([]relstore.EventRow, error) {
	out := make([]relstore.EventRow, 0, len(ids))
	for _, id := range ids {
		row, err := e.Delete(ctx, model.EventWhereUnique{ID: id})
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func matchEvent(where *model.EventWhere, row relstore.EventRow) bool {
	if where == nil {
		return true
	}
	if where.ID != nil && *where.ID != row.ID {
		return false
	}
	if where.Type != nil && *where.Type != row.Type {
		return false
	}
	if where.ShowID != nil && where.ShowID.Equals != row.ShowID {
		return false
	}
	if len(where.IDIn) > 0 {
		found := false
		for _, id := range where.IDIn {
			if id == row.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, and := range where.And {
		if !matchEvent(&and, row) {
			return false
		}
	}
	return true
}

// fakeCalStore is a minimal in-memory coordinator.CalStore.
type fakeCalStore struct {
	mu     sync.Mutex
	events map[string]model.Event
}

func newFakeCalStore() *fakeCalStore {
	return &fakeCalStore{events: map[string]model.Event{}}
}

func (c *fakeCalStore) Get(ctx context.Context, id string) (model.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev, ok := c.events[id]
	if !ok {
		return model.Event{}, showerr.Newf(showerr.NotFound, "fake.Cal.Get", "event %q not found", id)
	}
	return ev, nil
}

func (c *fakeCalStore) Put(ctx context.Context, event model.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events[event.ID] = event
	return nil
}

func (c *fakeCalStore) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.events[id]; !ok {
		return showerr.Newf(showerr.NotFound, "fake.Cal.Delete", "event %q not found", id)
	}
	delete(c.events, id)
	return nil
}

func (c *fakeCalStore) Query(ctx context.Context, q model.Query) ([]model.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []model.Event
	for _, ev := range c.events {
		if q.TimeRange != nil {
			if q.TimeRange.Start != nil && ev.End.Before(*q.TimeRange.Start) {
				continue
			}
			if q.TimeRange.End != nil && !ev.Start.Before(*q.TimeRange.End) {
				continue
			}
		}
		out = append(out, ev)
	}
	return out, nil
}
