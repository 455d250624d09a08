package httpapi

import (
	"net/http"
	"time"

	"github.com/radio-aktywne/showcaster/internal/coordinator"
	"github.com/radio-aktywne/showcaster/internal/model"
)

type eventInstanceWire struct {
	EventID string    `json:"eventId"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// handleSchedule returns expanded event instances over a UTC window.
// start/end default to "now" (an empty window), per §6.
func (h *Handlers) handleSchedule(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()

	start, err := timeParam(r, "start")
	if err != nil {
		writeError(w, err)
		return
	}
	if start == nil {
		start = &now
	}
	end, err := timeParam(r, "end")
	if err != nil {
		writeError(w, err)
		return
	}
	if end == nil {
		end = &now
	}

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

	instances, err := h.events.Schedule(r.Context(), coordinator.ScheduleOptions{
		Start:  model.TimeRangeQuery{Start: start, End: end},
		Where:  where,
		Order:  order,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	wires := make([]eventInstanceWire, len(instances))
	for i, inst := range instances {
		wires[i] = eventInstanceWire{EventID: inst.EventID, Start: inst.Start, End: inst.End}
	}
	writeJSON(w, http.StatusOK, wires)
}
