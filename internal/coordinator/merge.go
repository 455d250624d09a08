package coordinator

import (
	"sort"

	"github.com/radio-aktywne/showcaster/internal/model"
	"github.com/radio-aktywne/showcaster/internal/relstore"
)

// mergeEvent composes a RelStore row's identity/type/show with a CalStore
// VEVENT's start/end/timezone/recurrence into one model.Event (§4.6).
func mergeEvent(row relstore.EventRow, cal model.Event) model.Event {
	return model.Event{
		ID:         row.ID,
		Type:       row.Type,
		ShowID:     row.ShowID,
		Start:      cal.Start,
		End:        cal.End,
		Timezone:   cal.Timezone,
		Recurrence: cal.Recurrence,
	}
}

// fuseQueryIDs conjoins an `id IN {ids}` clause onto where under an outer
// AND: appended to an existing And list when the caller already supplied
// one, otherwise set as a new one (§4.4).
func fuseQueryIDs(where *model.EventWhere, ids []string) *model.EventWhere {
	idFilter := model.EventWhere{IDIn: ids}
	if where == nil {
		return &model.EventWhere{And: []model.EventWhere{idFilter}}
	}

	fused := *where
	if len(fused.And) > 0 {
		fused.And = append(append([]model.EventWhere{}, fused.And...), idFilter)
	} else {
		fused.And = []model.EventWhere{idFilter}
	}
	return &fused
}

// splitOrder separates a caller's order list into the SQL-sortable keys
// (pushed down to RelStore.FindMany, in their declared relative order) and the temporal keys deferred to an
// in-memory pass once CalStore data is merged in (§4.6).
func splitOrder(order []model.EventOrder) (sqlOrder, temporalOrder []model.EventOrder) {
	for _, o := range order {
		if o.IsTemporal() {
			temporalOrder = append(temporalOrder, o)
		} else {
			sqlOrder = append(sqlOrder, o)
		}
	}
	return sqlOrder, temporalOrder
}

// applyTemporalOrder stable-sorts events by each temporal key in turn,
// processing the keys in reverse declared order so that, by the time the
// last pass runs (the first declared key), it dominates as primary with
// every later key acting as a tie-breaker beneath it. Any ordering already
// established by RelStore (for non-temporal keys) survives as the final
// tie-break fallback, since every pass is stable.
func applyTemporalOrder(events []model.Event, order []model.EventOrder) {
	for i := len(order) - 1; i >= 0; i-- {
		o := order[i]
		sort.SliceStable(events, func(a, b int) bool {
			var av, bv int64
			switch o.TemporalField {
			case model.TemporalOrderStart:
				av, bv = events[a].Start.UnixNano(), events[b].Start.UnixNano()
			case model.TemporalOrderEnd:
				av, bv = events[a].End.UnixNano(), events[b].End.UnixNano()
			case model.TemporalOrderTimezone:
				return lessDirection(events[a].Timezone < events[b].Timezone, events[a].Timezone > events[b].Timezone, o.Direction)
			}
			return lessDirection(av < bv, av > bv, o.Direction)
		})
	}
}

func lessDirection(asc, desc bool, dir model.SortDirection) bool {
	if dir == model.SortDesc {
		return desc
	}
	return asc
}
