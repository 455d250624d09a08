// Package postgres implements the RelStore Gateway (C5) against PostgreSQL
// via pgx, mirroring the query style of a straightforward pgxpool store:
// explicit column lists, positional parameters, no query builder or ORM.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/radio-aktywne/showcaster/internal/relstore"
	"github.com/radio-aktywne/showcaster/internal/showerr"
)

const schema = `
CREATE TABLE IF NOT EXISTS shows (
	id          text PRIMARY KEY,
	title       text NOT NULL UNIQUE,
	description text
);

CREATE TABLE IF NOT EXISTS events (
	id      text PRIMARY KEY,
	type    text NOT NULL,
	show_id text NOT NULL REFERENCES shows(id)
);
`

// Store is the Postgres-backed RelStore Gateway.
type Store struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// New connects to dsn and ensures the schema exists.
func New(ctx context.Context, dsn string, logger zerolog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, showerr.New(showerr.Store, "postgres.New", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, showerr.New(showerr.Store, "postgres.New", fmt.Errorf("ensure schema: %w", err))
	}
	return &Store{pool: pool, logger: logger}, nil
}

func (s *Store) Close() { s.pool.Close() }

func (s *Store) Shows() relstore.ShowStore { return &showStore{q: s.pool} }
func (s *Store) Events() relstore.EventStore { return &eventStore{q: s.pool} }

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, letting showStore
// and eventStore run identically inside or outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context, tx relstore.Tx) error) error {
	pgtx, err := s.pool.Begin(ctx)
	if err != nil {
		return showerr.New(showerr.Store, "postgres.Transaction", err)
	}

	t := &txn{shows: &showStore{q: pgtx}, events: &eventStore{q: pgtx}}
	if err := fn(ctx, t); err != nil {
		if rbErr := pgtx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("postgres: rollback failed")
		}
		return err
	}
	if err := pgtx.Commit(ctx); err != nil {
		return showerr.New(showerr.Store, "postgres.Transaction", err)
	}
	return nil
}

type txn struct {
	shows  *showStore
	events *eventStore
}

func (t *txn) Shows() relstore.ShowStore   { return t.shows }
func (t *txn) Events() relstore.EventStore { return t.events }

func newID() string { return uuid.NewString() }

func notFound(op, kind, id string) error {
	return showerr.Newf(showerr.NotFound, op, "%s %q not found", kind, id)
}

func storeErr(op string, err error) error {
	if err == pgx.ErrNoRows {
		return err
	}
	return showerr.New(showerr.Store, op, err)
}

// buildOrderBy renders a SQL ORDER BY clause from field/direction pairs,
// rejecting anything not in the allowed set so no caller-controlled string
// ever reaches raw SQL.
func buildOrderBy(allowed map[string]string, fields []string, dirs []string) (string, error) {
	if len(fields) == 0 {
		return "", nil
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		col, ok := allowed[f]
		if !ok {
			return "", fmt.Errorf("unknown order field %q", f)
		}
		dir := "ASC"
		if i < len(dirs) && strings.EqualFold(dirs[i], "desc") {
			dir = "DESC"
		}
		parts[i] = col + " " + dir
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}
