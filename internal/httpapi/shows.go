package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/radio-aktywne/showcaster/internal/coordinator"
	"github.com/radio-aktywne/showcaster/internal/model"
	"github.com/radio-aktywne/showcaster/internal/showerr"
)

func (h *Handlers) handleListShows(w http.ResponseWriter, r *http.Request) {
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

	whereDTO, err := decodeJSONParam[showWhereDTO](r, "where")
	if err != nil {
		writeError(w, err)
		return
	}
	var where *model.ShowWhere
	if whereDTO != nil {
		m := whereDTO.toModel()
		where = &m
	}

	includeDTO, err := decodeJSONParam[showIncludeDTO](r, "include")
	if err != nil {
		writeError(w, err)
		return
	}
	var include *model.ShowInclude
	if includeDTO != nil {
		inc := includeDTO.toModel()
		include = &inc
	}

	orderDTOs, err := decodeJSONParam[[]showOrderDTO](r, "order")
	if err != nil {
		writeError(w, err)
		return
	}
	var order []model.ShowOrder
	if orderDTOs != nil {
		for _, o := range *orderDTOs {
			order = append(order, o.toModel())
		}
	}

	shows, err := h.shows.List(r.Context(), coordinator.ListShowsOptions{
		Where: where, Order: order, Limit: limit, Offset: offset, Include: include,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	wires := make([]model.ShowWire, len(shows))
	for i, s := range shows {
		wires[i] = s.Wire()
	}
	writeJSON(w, http.StatusOK, wires)
}

func (h *Handlers) handleGetShow(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	includeDTO, err := decodeJSONParam[showIncludeDTO](r, "include")
	if err != nil {
		writeError(w, err)
		return
	}
	var include *model.ShowInclude
	if includeDTO != nil {
		inc := includeDTO.toModel()
		include = &inc
	}

	show, err := h.shows.Get(r.Context(), model.ShowWhereUnique{ID: id}, include)
	if err != nil {
		writeError(w, err)
		return
	}
	if show == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, show.Wire())
}

type createShowRequestDTO struct {
	ID          *string `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

func (h *Handlers) handleCreateShow(w http.ResponseWriter, r *http.Request) {
	var dto createShowRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, showerr.Newf(showerr.Validation, "httpapi.Show.Create", "invalid request body: %v", err))
		return
	}

	show, err := h.shows.Create(r.Context(), model.ShowCreateInput{ID: dto.ID, Title: dto.Title, Description: dto.Description})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, show.Wire())
}

type updateShowRequestDTO struct {
	ID          *string `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (h *Handlers) handleUpdateShow(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var dto updateShowRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, showerr.Newf(showerr.Validation, "httpapi.Show.Update", "invalid request body: %v", err))
		return
	}

	show, err := h.shows.Update(r.Context(), model.ShowWhereUnique{ID: id}, model.ShowUpdateInput{ID: dto.ID, Title: dto.Title, Description: dto.Description})
	if err != nil {
		writeError(w, err)
		return
	}
	if show == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, show.Wire())
}

func (h *Handlers) handleDeleteShow(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	show, err := h.shows.Delete(r.Context(), model.ShowWhereUnique{ID: id})
	if err != nil {
		writeError(w, err)
		return
	}
	if show == nil {
		writeNotFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
