package model

import "time"

// ChangeEventType is the tag discriminating the kind of domain notification
// (§3, §4.8). The wire discriminator is the JSON "type" field.
type ChangeEventType string

const (
	ShowCreated  ChangeEventType = "show-created"
	ShowUpdated  ChangeEventType = "show-updated"
	ShowDeleted  ChangeEventType = "show-deleted"
	EventCreated ChangeEventType = "event-created"
	EventUpdated ChangeEventType = "event-updated"
	EventDeleted ChangeEventType = "event-deleted"
)

// ChangeEvent is a domain-level notification published on the Event Bus
// after a successful mutation. It is never persisted by the core.
type ChangeEvent struct {
	Type      ChangeEventType
	CreatedAt time.Time
	Data      ChangeEventData
}

// ChangeEventData carries exactly one of Show or Event, matching the tag.
type ChangeEventData struct {
	Show  *Show
	Event *Event
}
