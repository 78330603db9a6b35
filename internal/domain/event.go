package domain

import "github.com/google/uuid"

// EventType classifies a log entry.
type EventType string

const (
	EventNarrative    EventType = "narrative"
	EventCritical     EventType = "critical"
	EventCrime        EventType = "crime"
	EventHidden       EventType = "hidden"
	EventPlayerAction EventType = "player_action"
	EventNPCAction    EventType = "npc_action"
	EventSystem       EventType = "system"
)

// Metadata keys used by projections over the event log.
const (
	MetaVictim = "victim"
	MetaKiller = "killer"
)

// GameEvent is one append-only entry of the shared event log. Events are
// never mutated after creation.
type GameEvent struct {
	ID       string            `json:"id"`
	Type     EventType         `json:"type"`
	Text     string            `json:"text"`
	Round    int               `json:"round"`
	Actor    string            `json:"actor,omitempty"`
	Location string            `json:"location,omitempty"` // empty means globally visible
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewEvent creates a log entry with a fresh ID.
func NewEvent(t EventType, text string, round int) GameEvent {
	return GameEvent{
		ID:    uuid.NewString(),
		Type:  t,
		Text:  text,
		Round: round,
	}
}

// At scopes the event to a room; witnesses elsewhere never see it.
func (e GameEvent) At(roomID string) GameEvent {
	e.Location = roomID
	return e
}

// By tags the acting participant.
func (e GameEvent) By(actorID string) GameEvent {
	e.Actor = actorID
	return e
}

// With attaches a metadata key/value pair.
func (e GameEvent) With(key, value string) GameEvent {
	meta := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		meta[k] = v
	}
	meta[key] = value
	e.Metadata = meta
	return e
}
