package memory

import (
	"context"
	"sync"
	"time"

	"notes-store/internal/model"
	"notes-store/internal/repository"

	"github.com/google/uuid"
)

var _ repository.NoteRepository = (*repo)(nil)

type repo struct {
	mu    sync.RWMutex
	notes map[string]model.Note
	order []string // ID в порядке создания
}

// NewRepository создает новый экземпляр in-memory репозитория на основе map
func NewRepository() repository.NoteRepository {
	return &repo{
		notes: make(map[string]model.Note),
	}
}

// List возвращает список всех заметок без поля Body
func (r *repo) List(ctx context.Context) ([]model.NoteSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]model.NoteSummary, 0, len(r.order))
	for _, id := range r.order {
		summaries = append(summaries, r.notes[id].Summary())
	}

	return summaries, nil
}

// GetByID возвращает заметку по её ID
func (r *repo) GetByID(ctx context.Context, id string) (model.Note, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, exists := r.notes[id]
	return note, exists, nil
}

// Create создает новую заметку и возвращает созданную заметку с ID
func (r *repo) Create(ctx context.Context, in model.NoteInput) (model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	in = in.WithDefaults()

	// Генерируем UUID, пока не получим свободный
	id := uuid.NewString()
	for _, taken := r.notes[id]; taken; _, taken = r.notes[id] {
		id = uuid.NewString()
	}

	now := time.Now().UTC()
	note := model.Note{
		ID:        id,
		Title:     in.Title,
		Body:      in.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.notes[id] = note
	r.order = append(r.order, id)

	return note, nil
}

// Update обновляет существующую заметку и возвращает обновленную заметку
func (r *repo) Update(ctx context.Context, id string, patch model.NotePatch) (model.Note, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, exists := r.notes[id]
	if !exists {
		return model.Note{}, false, nil
	}

	patch.Apply(&note)

	// Обновляем временную метку, она не должна стоять на месте
	now := time.Now().UTC()
	if !now.After(note.UpdatedAt) {
		now = note.UpdatedAt.Add(time.Nanosecond)
	}
	note.UpdatedAt = now

	r.notes[id] = note

	return note, true, nil
}

// DeleteMany удаляет заметки по ID, отсутствующие ID пропускаются
func (r *repo) DeleteMany(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		delete(r.notes, id)
	}

	kept := r.order[:0]
	for _, id := range r.order {
		if _, ok := r.notes[id]; ok {
			kept = append(kept, id)
		}
	}
	r.order = kept

	return nil
}
