package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/radio-aktywne/showcaster/internal/model"
	"github.com/radio-aktywne/showcaster/internal/showerr"
)

func intParam(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, showerr.Newf(showerr.Validation, "httpapi", "%s must be an integer", name)
	}
	return &n, nil
}

func timeParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, showerr.Newf(showerr.Validation, "httpapi", "%s must be an RFC3339 timestamp", name)
	}
	utc := t.UTC()
	return &utc, nil
}

func decodeJSONParam[T any](r *http.Request, name string) (*T, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, showerr.Newf(showerr.Validation, "httpapi", "%s is not valid JSON: %v", name, err)
	}
	return &v, nil
}

// eventWhereDTO mirrors model.EventWhere with JSON tags for the `where`
// query parameter.
type eventWhereDTO struct {
	ID     *string        `json:"id"`
	Type   *string        `json:"type"`
	ShowID *string        `json:"showId"`
	IDIn   []string       `json:"idIn"`
	And    []eventWhereDTO `json:"and"`
}

func (d eventWhereDTO) toModel() model.EventWhere {
	w := model.EventWhere{ID: d.ID, Type: d.Type, IDIn: d.IDIn}
	if d.ShowID != nil {
		w.ShowID = &model.ShowIDFilter{Equals: *d.ShowID}
	}
	for _, and := range d.And {
		w.And = append(w.And, and.toModel())
	}
	return w
}

type queryDTO struct {
	Type      string `json:"type"`
	TimeRange *struct {
		Start *time.Time `json:"start"`
		End   *time.Time `json:"end"`
	} `json:"timeRange"`
	Recurring *struct {
		Recurring bool `json:"recurring"`
	} `json:"recurring"`
}

func (d queryDTO) toModel() model.Query {
	q := model.Query{Type: d.Type}
	if d.TimeRange != nil {
		q.TimeRange = &model.TimeRangeQuery{Start: d.TimeRange.Start, End: d.TimeRange.End}
	}
	if d.Recurring != nil {
		q.Recurring = &model.RecurringQuery{Recurring: d.Recurring.Recurring}
	}
	return q
}

type eventOrderDTO struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

var temporalEventFields = map[string]model.TemporalOrderField{
	string(model.TemporalOrderStart):    model.TemporalOrderStart,
	string(model.TemporalOrderEnd):      model.TemporalOrderEnd,
	string(model.TemporalOrderTimezone): model.TemporalOrderTimezone,
}

func (d eventOrderDTO) toModel() model.EventOrder {
	dir := model.SortAsc
	if d.Direction == string(model.SortDesc) {
		dir = model.SortDesc
	}
	if temporal, ok := temporalEventFields[d.Field]; ok {
		return model.EventOrder{TemporalField: temporal, Direction: dir}
	}
	return model.EventOrder{Field: model.EventOrderField(d.Field), Direction: dir}
}

type eventIncludeDTO struct {
	Show bool `json:"show"`
}

func (d eventIncludeDTO) toModel() model.EventInclude {
	return model.EventInclude{Show: d.Show}
}

type showWhereDTO struct {
	ID          *string        `json:"id"`
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	And         []showWhereDTO `json:"and"`
}

func (d showWhereDTO) toModel() model.ShowWhere {
	w := model.ShowWhere{ID: d.ID, Title: d.Title, Description: d.Description}
	for _, and := range d.And {
		w.And = append(w.And, and.toModel())
	}
	return w
}

type showOrderDTO struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

func (d showOrderDTO) toModel() model.ShowOrder {
	dir := model.SortAsc
	if d.Direction == string(model.SortDesc) {
		dir = model.SortDesc
	}
	return model.ShowOrder{Field: model.ShowOrderField(d.Field), Direction: dir}
}

type showIncludeDTO struct {
	Events bool `json:"events"`
}

func (d showIncludeDTO) toModel() model.ShowInclude {
	return model.ShowInclude{Events: d.Events}
}
