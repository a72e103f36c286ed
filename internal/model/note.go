package model

import (
	"time"
)

// DefaultTitle подставляется, когда заметка создается без заголовка
const DefaultTitle = "Sin título"

// Note представляет заметку (доменная модель)
type Note struct {
	ID        string    `json:"id" yaml:"id"`               // UUID заметки
	Title     string    `json:"title" yaml:"title"`         // Заголовок заметки
	Body      string    `json:"body" yaml:"body"`           // Текст заметки
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"` // Дата создания
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"` // Дата последнего обновления
}

// NoteSummary представление заметки для списка.
// Поля Body нет: список никогда не раскрывает содержимое заметок
type NoteSummary struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// NoteInput содержит поля, переданные при создании заметки
type NoteInput struct {
	Title string
	Body  string
}

// NotePatch описывает частичное обновление: nil-поля сохраняют прежнее значение
type NotePatch struct {
	Title *string
	Body  *string
}

// Summary возвращает представление заметки для списка
func (n Note) Summary() NoteSummary {
	return NoteSummary{
		ID:        n.ID,
		Title:     n.Title,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// Summarize проецирует заметки в представление для списка, сохраняя порядок
func Summarize(notes []Note) []NoteSummary {
	summaries := make([]NoteSummary, len(notes))
	for i, n := range notes {
		summaries[i] = n.Summary()
	}
	return summaries
}

// WithDefaults подставляет значения по умолчанию для пустых полей
func (in NoteInput) WithDefaults() NoteInput {
	if in.Title == "" {
		in.Title = DefaultTitle
	}
	return in
}

// Apply переносит в n только переданные поля.
// UpdatedAt выставляет вызывающая сторона
func (p NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Body != nil {
		n.Body = *p.Body
	}
}
