package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radio-aktywne/showcaster/internal/model"
)

func TestBuildShowWhereFlattensAnd(t *testing.T) {
	title := "Morning Show"
	id := "show-1"
	clause, args := buildShowWhere(&model.ShowWhere{
		And: []model.ShowWhere{
			{Title: &title},
			{ID: &id},
		},
	})
	assert.Equal(t, " WHERE title = $1 AND id = $2", clause)
	assert.Equal(t, []any{"Morning Show", "show-1"}, args)
}

func TestBuildShowWhereNil(t *testing.T) {
	clause, args := buildShowWhere(nil)
	assert.Empty(t, clause)
	assert.Nil(t, args)
}

func TestBuildEventWhereIDIn(t *testing.T) {
	clause, args := buildEventWhere(&model.EventWhere{IDIn: []string{"a", "b", "c"}})
	assert.Equal(t, " WHERE id IN ($1, $2, $3)", clause)
	assert.Equal(t, []any{"a", "b", "c"}, args)
}

func TestBuildEventWhereShowID(t *testing.T) {
	clause, args := buildEventWhere(&model.EventWhere{ShowID: &model.ShowIDFilter{Equals: "show-9"}})
	assert.Equal(t, " WHERE show_id = $1", clause)
	assert.Equal(t, []any{"show-9"}, args)
}

func TestBuildOrderByRejectsUnknownField(t *testing.T) {
	_, err := buildOrderBy(showOrderColumns, []string{"bogus"}, []string{"asc"})
	require.Error(t, err)
}

func TestBuildOrderByRendersDirection(t *testing.T) {
	clause, err := buildOrderBy(showOrderColumns, []string{"title", "id"}, []string{"desc", "asc"})
	require.NoError(t, err)
	assert.Equal(t, " ORDER BY title DESC, id ASC", clause)
}
