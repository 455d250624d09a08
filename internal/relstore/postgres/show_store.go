package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/radio-aktywne/showcaster/internal/model"
)

type showStore struct {
	q querier
}

var showOrderColumns = map[string]string{
	string(model.ShowOrderID):          "id",
	string(model.ShowOrderTitle):       "title",
	string(model.ShowOrderDescription): "description",
}

func (s *showStore) Count(ctx context.Context, where *model.ShowWhere) (int, error) {
	clause, args := buildShowWhere(where)
	sql := "SELECT count(*) FROM shows" + clause
	var n int
	if err := s.q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, storeErr("postgres.Show.Count", err)
	}
	return n, nil
}

func (s *showStore) FindMany(ctx context.Context, where *model.ShowWhere, order []model.ShowOrder, limit, offset *int) ([]model.Show, error) {
	clause, args := buildShowWhere(where)

	fields := make([]string, len(order))
	dirs := make([]string, len(order))
	for i, o := range order {
		fields[i] = string(o.Field)
		dirs[i] = string(o.Direction)
	}
	orderBy, err := buildOrderBy(showOrderColumns, fields, dirs)
	if err != nil {
		return nil, fmt.Errorf("postgres.Show.FindMany: %w", err)
	}

	sql := "SELECT id, title, description FROM shows" + clause + orderBy
	if limit != nil {
		args = append(args, *limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset != nil {
		args = append(args, *offset)
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, storeErr("postgres.Show.FindMany", err)
	}
	defer rows.Close()

	var out []model.Show
	for rows.Next() {
		var sh model.Show
		if err := rows.Scan(&sh.ID, &sh.Title, &sh.Description); err != nil {
			return nil, storeErr("postgres.Show.FindMany", err)
		}
		out = append(out, sh)
	}
	return out, storeErr("postgres.Show.FindMany", rows.Err())
}

func (s *showStore) FindUnique(ctx context.Context, where model.ShowWhereUnique) (*model.Show, error) {
	var sh model.Show
	err := s.q.QueryRow(ctx, "SELECT id, title, description FROM shows WHERE id = $1", where.ID).Scan(&sh.ID, &sh.Title, &sh.Description)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("postgres.Show.FindUnique", err)
	}
	return &sh, nil
}

func (s *showStore) Create(ctx context.Context, input model.ShowCreateInput) (model.Show, error) {
	id := input.ID
	if id == nil {
		generated := newID()
		id = &generated
	}

	var sh model.Show
	err := s.q.QueryRow(ctx,
		"INSERT INTO shows (id, title, description) VALUES ($1, $2, $3) RETURNING id, title, description",
		*id, input.Title, input.Description,
	).Scan(&sh.ID, &sh.Title, &sh.Description)
	if err != nil {
		return model.Show{}, storeErr("postgres.Show.Create", err)
	}
	return sh, nil
}

func (s *showStore) Update(ctx context.Context, where model.ShowWhereUnique, input model.ShowUpdateInput) (model.Show, error) {
	sets := []string{}
	args := []any{}

	if input.ID != nil {
		args = append(args, *input.ID)
		sets = append(sets, fmt.Sprintf("id = $%d", len(args)))
	}
	if input.Title != nil {
		args = append(args, *input.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if input.Description != nil {
		args = append(args, *input.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if len(sets) == 0 {
		return s.mustFind(ctx, where)
	}

	args = append(args, where.ID)
	sql := fmt.Sprintf("UPDATE shows SET %s WHERE id = $%d RETURNING id, title, description", strings.Join(sets, ", "), len(args))

	var sh model.Show
	err := s.q.QueryRow(ctx, sql, args...).Scan(&sh.ID, &sh.Title, &sh.Description)
	if err == pgx.ErrNoRows {
		return model.Show{}, notFound("postgres.Show.Update", "show", where.ID)
	}
	if err != nil {
		return model.Show{}, storeErr("postgres.Show.Update", err)
	}
	return sh, nil
}

func (s *showStore) Delete(ctx context.Context, where model.ShowWhereUnique) (model.Show, error) {
	var sh model.Show
	err := s.q.QueryRow(ctx, "DELETE FROM shows WHERE id = $1 RETURNING id, title, description", where.ID).Scan(&sh.ID, &sh.Title, &sh.Description)
	if err == pgx.ErrNoRows {
		return model.Show{}, notFound("postgres.Show.Delete", "show", where.ID)
	}
	if err != nil {
		return model.Show{}, storeErr("postgres.Show.Delete", err)
	}
	return sh, nil
}

func (s *showStore) mustFind(ctx context.Context, where model.ShowWhereUnique) (model.Show, error) {
	sh, err := s.FindUnique(ctx, where)
	if err != nil {
		return model.Show{}, err
	}
	if sh == nil {
		return model.Show{}, notFound("postgres.Show.Update", "show", where.ID)
	}
	return *sh, nil
}

// buildShowWhere renders a predicate clause and its positional args. Nested
// And groups are flattened into the same conjunction; each leaf field
// becomes an equality check.
func buildShowWhere(where *model.ShowWhere) (string, []any) {
	var conds []string
	var args []any
	appendShowWhere(where, &conds, &args)
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func appendShowWhere(where *model.ShowWhere, conds *[]string, args *[]any) {
	if where == nil {
		return
	}
	if where.ID != nil {
		*args = append(*args, *where.ID)
		*conds = append(*conds, fmt.Sprintf("id = $%d", len(*args)))
	}
	if where.Title != nil {
		*args = append(*args, *where.Title)
		*conds = append(*conds, fmt.Sprintf("title = $%d", len(*args)))
	}
	if where.Description != nil {
		*args = append(*args, *where.Description)
		*conds = append(*conds, fmt.Sprintf("description = $%d", len(*args)))
	}
	for i := range where.And {
		appendShowWhere(&where.And[i], conds, args)
	}
}
