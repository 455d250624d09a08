package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/radio-aktywne/showcaster/internal/coordinator"
	"github.com/radio-aktywne/showcaster/internal/model"
	"github.com/radio-aktywne/showcaster/internal/showerr"
)

func (h *Handlers) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	if limit == nil {
		ten := 10
		limit = &ten
	}
	offset, err := intParam(r, "offset")
	if err != nil {
		writeError(w, err)
		return
	}

	whereDTO, err := decodeJSONParam[eventWhereDTO](r, "where")
	if err != nil {
		writeError(w, err)
		return
	}
	var where *model.EventWhere
	if whereDTO != nil {
		m := whereDTO.toModel()
		where = &m
	}

	queryDTOVal, err := decodeJSONParam[queryDTO](r, "query")
	if err != nil {
		writeError(w, err)
		return
	}
	var query *model.Query
	if queryDTOVal != nil {
		q := queryDTOVal.toModel()
		query = &q
	}

	includeDTO, err := decodeJSONParam[eventIncludeDTO](r, "include")
	if err != nil {
		writeError(w, err)
		return
	}
	var include *model.EventInclude
	if includeDTO != nil {
		inc := includeDTO.toModel()
		include = &inc
	}

	orderDTOs, err := decodeJSONParam[[]eventOrderDTO](r, "order")
	if err != nil {
		writeError(w, err)
		return
	}
	var order []model.EventOrder
	if orderDTOs != nil {
		for _, o := range *orderDTOs {
			order = append(order, o.toModel())
		}
	}

	events, err := h.events.List(r.Context(), coordinator.ListEventsOptions{
		Where: where, Query: query, Order: order, Limit: limit, Offset: offset, Include: include,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	wires := make([]model.EventWire, len(events))
	for i, e := range events {
		wires[i] = e.Wire()
	}
	writeJSON(w, http.StatusOK, wires)
}

func (h *Handlers) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	includeDTO, err := decodeJSONParam[eventIncludeDTO](r, "include")
	if err != nil {
		writeError(w, err)
		return
	}
	var include *model.EventInclude
	if includeDTO != nil {
		inc := includeDTO.toModel()
		include = &inc
	}

	event, err := h.events.Get(r.Context(), model.EventWhereUnique{ID: id}, include)
	if err != nil {
		writeError(w, err)
		return
	}
	if event == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, event.Wire())
}

type createEventRequestDTO struct {
	ID         *string               `json:"id"`
	Type       string                `json:"type"`
	ShowID     *string               `json:"showId"`
	Start      time.Time             `json:"start"`
	End        time.Time             `json:"end"`
	Timezone   string                `json:"timezone"`
	Recurrence *model.RecurrenceWire `json:"recurrence"`
}

func (h *Handlers) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var dto createEventRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, showerr.Newf(showerr.Validation, "httpapi.Event.Create", "invalid request body: %v", err))
		return
	}

	input := model.EventCreateInput{ID: dto.ID, Type: dto.Type, ShowID: dto.ShowID, Start: dto.Start, End: dto.End, Timezone: dto.Timezone}
	if dto.Recurrence != nil {
		input.Recurrence = model.RecurrenceFromWire(*dto.Recurrence)
	}

	event, err := h.events.Create(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event.Wire())
}

type updateEventRequestDTO struct {
	ID         *string               `json:"id"`
	Type       *string               `json:"type"`
	ShowID     *string               `json:"showId"`
	Start      *time.Time            `json:"start"`
	End        *time.Time            `json:"end"`
	Timezone   *string               `json:"timezone"`
	Recurrence *model.RecurrenceWire `json:"recurrence"`
}

// handleUpdateEvent probes the raw JSON for a "recurrence" key to
// distinguish "leave recurrence as-is" (key absent) from "clear it"
// (key present with a null value), matching model.EventUpdateInput's
// RecurrenceSet convention.
func (h *Handlers) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, showerr.Newf(showerr.Validation, "httpapi.Event.Update", "invalid request body: %v", err))
		return
	}

	var dto updateEventRequestDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		writeError(w, showerr.Newf(showerr.Validation, "httpapi.Event.Update", "invalid request body: %v", err))
		return
	}
	var probe map[string]json.RawMessage
	_ = json.Unmarshal(raw, &probe)
	_, recurrenceSet := probe["recurrence"]

	input := model.EventUpdateInput{
		ID: dto.ID, Type: dto.Type, ShowID: dto.ShowID,
		Start: dto.Start, End: dto.End, Timezone: dto.Timezone,
		RecurrenceSet: recurrenceSet,
	}
	if recurrenceSet && dto.Recurrence != nil {
		input.Recurrence = model.RecurrenceFromWire(*dto.Recurrence)
	}

	event, err := h.events.Update(r.Context(), model.EventWhereUnique{ID: id}, input)
	if err != nil {
		writeError(w, err)
		return
	}
	if event == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, event.Wire())
}

func (h *Handlers) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	event, err := h.events.Delete(r.Context(), model.EventWhereUnique{ID: id})
	if err != nil {
		writeError(w, err)
		return
	}
	if event == nil {
		writeNotFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
