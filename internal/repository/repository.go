package repository

import (
	"context"
	"errors"
	"fmt"

	"notes-store/internal/model"
)

// ErrStorage возвращается (через errors.Is) при любом сбое носителя данных
var ErrStorage = errors.New("note storage failure")

// NoteRepository интерфейс для работы с заметками в хранилище.
// Отсутствие заметки не считается ошибкой: GetByID и Update сообщают о нем через ok == false
type NoteRepository interface {
	// List возвращает все заметки в порядке хранения, без поля Body
	List(ctx context.Context) ([]model.NoteSummary, error)

	// GetByID возвращает заметку целиком по её ID
	GetByID(ctx context.Context, id string) (model.Note, bool, error)

	// Create создает новую заметку, назначая ID и временные метки
	Create(ctx context.Context, in model.NoteInput) (model.Note, error)

	// Update переносит в заметку переданные поля и обновляет UpdatedAt
	Update(ctx context.Context, id string, patch model.NotePatch) (model.Note, bool, error)

	// DeleteMany удаляет заметки с указанными ID, неизвестные ID игнорируются
	DeleteMany(ctx context.Context, ids []string) error
}

// StorageError описывает сбой чтения или записи хранилища
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError оборачивает err в StorageError для операции op
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("note storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is позволяет сопоставлять любую StorageError с ErrStorage
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
