package model

// Show is a broadcast show. Title is unique across all shows.
type Show struct {
	ID          string
	Title       string
	Description *string

	// Events is populated only when an Include directive requests it.
	Events []Event
}

// ShowWhere is a predicate over shows, fields left nil are unconstrained.
type ShowWhere struct {
	ID          *string
	Title       *string
	Description *string
	And         []ShowWhere
}

// ShowWhereUnique identifies exactly one show.
type ShowWhereUnique struct {
	ID string
}

// ShowOrderField is one of the SQL-sortable show fields.
type ShowOrderField string

const (
	ShowOrderID          ShowOrderField = "id"
	ShowOrderTitle       ShowOrderField = "title"
	ShowOrderDescription ShowOrderField = "description"
)

type ShowOrder struct {
	Field     ShowOrderField
	Direction SortDirection
}

// ShowInclude selects which relations to hydrate on read.
type ShowInclude struct {
	Events bool
}

// ShowCreateInput is the payload for creating a show.
type ShowCreateInput struct {
	ID          *string
	Title       string
	Description *string
}

// ShowUpdateInput carries only the fields to change; absent means "leave as-is".
type ShowUpdateInput struct {
	ID          *string
	Title       *string
	Description *string
}
