package model

import "time"

// EventType тип события жизненного цикла заметки
type EventType string

const (
	EventSubscribed EventType = "subscribed" // приветственное сообщение стрима
	EventCreated    EventType = "created"
	EventUpdated    EventType = "updated"
	EventDeleted    EventType = "deleted"
)

// NoteEvent событие об изменении коллекции заметок
type NoteEvent struct {
	Type       EventType `json:"type"`
	NoteIDs    []string  `json:"noteIds,omitempty"`
	Note       *Note     `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Key возвращает ключ партиционирования события (ID первой затронутой заметки)
func (e NoteEvent) Key() string {
	if len(e.NoteIDs) == 0 {
		return ""
	}
	return e.NoteIDs[0]
}
