package service

import (
	"context"
	"errors"
	"fmt"

	"notes-store/internal/model"
)

// ErrNoteNotFound сигнализирует, что заметка с запрошенным ID не существует
var ErrNoteNotFound = errors.New("note not found")

// NotFoundError доменная ошибка "заметка не найдена", содержит запрошенный ID
type NotFoundError struct {
	ID  string
	Msg string
}

// NewNotFoundError создает ошибку для поиска по ID
func NewNotFoundError(id string) error {
	return &NotFoundError{ID: id, Msg: fmt.Sprintf("note with ID %s was not found", id)}
}

// NewUpdateFailedError создает ошибку для заметки, исчезнувшей между проверкой и записью
func NewUpdateFailedError(id string) error {
	return &NotFoundError{ID: id, Msg: fmt.Sprintf("failed to update note with ID %s", id)}
}

func (e *NotFoundError) Error() string {
	return e.Msg
}

// Is позволяет сравнивать через errors.Is(err, ErrNoteNotFound)
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNoteNotFound
}

// NoteService интерфейс для бизнес-логики работы с заметками
type NoteService interface {
	// Create создает новую заметку
	Create(ctx context.Context, in model.NoteInput) (model.Note, error)

	// Get возвращает заметку по её ID или NotFoundError
	Get(ctx context.Context, id string) (model.Note, error)

	// List возвращает список всех заметок без содержимого
	List(ctx context.Context) ([]model.NoteSummary, error)

	// Update обновляет только переданные поля заметки
	Update(ctx context.Context, id string, patch model.NotePatch) (model.Note, error)

	// DeleteMany удаляет заметки по списку ID, неизвестные ID игнорируются
	DeleteMany(ctx context.Context, ids []string) error
}

// EventPublisher получатель событий об изменении заметок
type EventPublisher interface {
	Publish(ctx context.Context, event model.NoteEvent) error
}
