package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/radio-aktywne/showcaster/internal/model"
	"github.com/radio-aktywne/showcaster/internal/relstore"
)

type eventStore struct {
	q querier
}

var eventOrderColumns = map[string]string{
	string(model.EventOrderID):     "id",
	string(model.EventOrderType):   "type",
	string(model.EventOrderShowID): "show_id",
}

func (e *eventStore) Count(ctx context.Context, where *model.EventWhere) (int, error) {
	clause, args := buildEventWhere(where)
	sql := "SELECT count(*) FROM events" + clause
	var n int
	if err := e.q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, storeErr("postgres.Event.Count", err)
	}
	return n, nil
}

func (e *eventStore) FindMany(ctx context.Context, where *model.EventWhere, order []model.EventOrder, limit, offset *int) ([]relstore.EventRow, error) {
	clause, args := buildEventWhere(where)

	fields := make([]string, 0, len(order))
	dirs := make([]string, 0, len(order))
	for _, o := range order {
		if o.IsTemporal() {
			// temporal fields are not RelStore columns; the coordinator
			// sorts by them in memory after merging with CalStore (§4.6).
			continue
		}
		fields = append(fields, string(o.Field))
		dirs = append(dirs, string(o.Direction))
	}
	orderBy, err := buildOrderBy(eventOrderColumns, fields, dirs)
	if err != nil {
		return nil, fmt.Errorf("postgres.Event.FindMany: %w", err)
	}

	sql := "SELECT id, type, show_id FROM events" + clause + orderBy
	if limit != nil {
		args = append(args, *limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset != nil {
		args = append(args, *offset)
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := e.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, storeErr("postgres.Event.FindMany", err)
	}
	defer rows.Close()

	var out []relstore.EventRow
	for rows.Next() {
		var row relstore.EventRow
		if err := rows.Scan(&row.ID, &row.Type, &row.ShowID); err != nil {
			return nil, storeErr("postgres.Event.FindMany", err)
		}
		out = append(out, row)
	}
	return out, storeErr("postgres.Event.FindMany", rows.Err())
}

func (e *eventStore) FindUnique(ctx context.Context, where model.EventWhereUnique) (*relstore.EventRow, error) {
	var row relstore.EventRow
	err := e.q.QueryRow(ctx, "SELECT id, type, show_id FROM events WHERE id = $1", where.ID).Scan(&row.ID, &row.Type, &row.ShowID)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("postgres.Event.FindUnique", err)
	}
	return &row, nil
}

func (e *eventStore) Create(ctx context.Context, input relstore.EventRowInput) (relstore.EventRow, error) {
	id := input.ID
	if id == nil {
		generated := newID()
		id = &generated
	}
	var showID string
	if input.ShowID != nil {
		showID = *input.ShowID
	}

	var row relstore.EventRow
	err := e.q.QueryRow(ctx,
		"INSERT INTO events (id, type, show_id) VALUES ($1, $2, $3) RETURNING id, type, show_id",
		*id, input.Type, showID,
	).Scan(&row.ID, &row.Type, &row.ShowID)
	if err != nil {
		return relstore.EventRow{}, storeErr("postgres.Event.Create", err)
	}
	return row, nil
}

func (e *eventStore) Update(ctx context.Context, where model.EventWhereUnique, input relstore.EventRowUpdate) (relstore.EventRow, error) {
	sets := []string{}
	args := []any{}

	if input.ID != nil {
		args = append(args, *input.ID)
		sets = append(sets, fmt.Sprintf("id = $%d", len(args)))
	}
	if input.Type != nil {
		args = append(args, *input.Type)
		sets = append(sets, fmt.Sprintf("type = $%d", len(args)))
	}
	if input.ShowID != nil {
		args = append(args, *input.ShowID)
		sets = append(sets, fmt.Sprintf("show_id = $%d", len(args)))
	}
	if len(sets) == 0 {
		row, err := e.FindUnique(ctx, where)
		if err != nil {
			return relstore.EventRow{}, err
		}
		if row == nil {
			return relstore.EventRow{}, notFound("postgres.Event.Update", "event", where.ID)
		}
		return *row, nil
	}

	args = append(args, where.ID)
	sql := fmt.Sprintf("UPDATE events SET %s WHERE id = $%d RETURNING id, type, show_id", strings.Join(sets, ", "), len(args))

	var row relstore.EventRow
	err := e.q.QueryRow(ctx, sql, args...).Scan(&row.ID, &row.Type, &row.ShowID)
	if err == pgx.ErrNoRows {
		return relstore.EventRow{}, notFound("postgres.Event.Update", "event", where.ID)
	}
	if err != nil {
		return relstore.EventRow{}, storeErr("postgres.Event.Update", err)
	}
	return row, nil
}

func (e *eventStore) Delete(ctx context.Context, where model.EventWhereUnique) (relstore.EventRow, error) {
	var row relstore.EventRow
	err := e.q.QueryRow(ctx, "DELETE FROM events WHERE id = $1 RETURNING id, type, show_id", where.ID).Scan(&row.ID, &row.Type, &row.ShowID)
	if err == pgx.ErrNoRows {
		return relstore.EventRow{}, notFound("postgres.Event.Delete", "event", where.ID)
	}
	if err != nil {
		return relstore.EventRow{}, storeErr("postgres.Event.Delete", err)
	}
	return row, nil
}

func (e *eventStore) CreateMany(ctx context.Context, inputs []relstore.EventRowInput) ([]relstore.EventRow, error) {
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

func (e *eventStore) DeleteMany(ctx context.Context, ids []string) ([]relstore.EventRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	sql := fmt.Sprintf("DELETE FROM events WHERE id IN (%s) RETURNING id, type, show_id", strings.Join(placeholders, ", "))
	rows, err := e.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, storeErr("postgres.Event.DeleteMany", err)
	}
	defer rows.Close()

	var out []relstore.EventRow
	for rows.Next() {
		var row relstore.EventRow
		if err := rows.Scan(&row.ID, &row.Type, &row.ShowID); err != nil {
			return nil, storeErr("postgres.Event.DeleteMany", err)
		}
		out = append(out, row)
	}
	return out, storeErr("postgres.Event.DeleteMany", rows.Err())
}

func buildEventWhere(where *model.EventWhere) (string, []any) {
	var conds []string
	var args []any
	appendEventWhere(where, &conds, &args)
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func appendEventWhere(where *model.EventWhere, conds *[]string, args *[]any) {
	if where == nil {
		return
	}
	if where.ID != nil {
		*args = append(*args, *where.ID)
		*conds = append(*conds, fmt.Sprintf("id = $%d", len(*args)))
	}
	if where.Type != nil {
		*args = append(*args, *where.Type)
		*conds = append(*conds, fmt.Sprintf("type = $%d", len(*args)))
	}
	if where.ShowID != nil {
		*args = append(*args, where.ShowID.Equals)
		*conds = append(*conds, fmt.Sprintf("show_id = $%d", len(*args)))
	}
	if where.IDIn != nil && len(where.IDIn) == 0 {
		// an empty, non-nil id set (e.g. a CalStore query with no hits)
		// matches no rows
		*conds = append(*conds, "FALSE")
	}
	if len(where.IDIn) > 0 {
		placeholders := make([]string, len(where.IDIn))
		for i, id := range where.IDIn {
			*args = append(*args, id)
			placeholders[i] = fmt.Sprintf("$%d", len(*args))
		}
		*conds = append(*conds, fmt.Sprintf("id IN (%s)", strings.Join(placeholders, ", ")))
	}
	for i := range where.And {
		appendEventWhere(&where.And[i], conds, args)
	}
}
