// Package collection реализует репозиторий, который хранит всю коллекцию
// заметок одним JSON-документом: каждая операция читает документ целиком,
// изменяет его в памяти и перезаписывает полностью.
//
// Блокировок нет: два конкурентных изменения одного документа могут
// затереть друг друга (последняя запись побеждает).
package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"notes-store/internal/model"
	"notes-store/internal/repository"

	"github.com/google/uuid"
)

// ErrNotExist возвращается носителем, если документ еще ни разу не записывался
var ErrNotExist = errors.New("collection document does not exist")

// Medium хранит сериализованную коллекцию заметок одним документом
type Medium interface {
	// Load возвращает документ целиком или ErrNotExist
	Load(ctx context.Context) ([]byte, error)

	// Save полностью перезаписывает документ
	Save(ctx context.Context, data []byte) error
}

var _ repository.NoteRepository = (*repo)(nil)

type repo struct {
	medium Medium
	now    func() time.Time
	newID  func() string
}

// Option настраивает репозиторий
type Option func(*repo)

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(r *repo) {
		r.now = now
	}
}

// WithIDGenerator подменяет генератор идентификаторов
func WithIDGenerator(newID func() string) Option {
	return func(r *repo) {
		r.newID = newID
	}
}

// NewRepository создает репозиторий поверх носителя medium
func NewRepository(medium Medium, opts ...Option) repository.NoteRepository {
	r := &repo{
		medium: medium,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List возвращает все заметки без поля Body
func (r *repo) List(ctx context.Context) ([]model.NoteSummary, error) {
	notes, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return model.Summarize(notes), nil
}

// GetByID возвращает заметку по её ID
func (r *repo) GetByID(ctx context.Context, id string) (model.Note, bool, error) {
	notes, err := r.load(ctx)
	if err != nil {
		return model.Note{}, false, err
	}

	i := indexOf(notes, id)
	if i < 0 {
		return model.Note{}, false, nil
	}
	return notes[i], true, nil
}

// Create создает новую заметку и дописывает её в конец коллекции
func (r *repo) Create(ctx context.Context, in model.NoteInput) (model.Note, error) {
	notes, err := r.load(ctx)
	if err != nil {
		return model.Note{}, err
	}

	in = in.WithDefaults()
	now := r.timestamp()
	note := model.Note{
		ID:        r.uniqueID(notes),
		Title:     in.Title,
		Body:      in.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	notes = append(notes, note)
	if err := r.store(ctx, notes); err != nil {
		return model.Note{}, err
	}

	return note, nil
}

// Update обновляет переданные поля заметки
func (r *repo) Update(ctx context.Context, id string, patch model.NotePatch) (model.Note, bool, error) {
	notes, err := r.load(ctx)
	if err != nil {
		return model.Note{}, false, err
	}

	i := indexOf(notes, id)
	if i < 0 {
		return model.Note{}, false, nil
	}

	patch.Apply(&notes[i])
	notes[i].UpdatedAt = r.touch(notes[i].UpdatedAt)

	if err := r.store(ctx, notes); err != nil {
		return model.Note{}, false, err
	}

	return notes[i], true, nil
}

// DeleteMany удаляет заметки с указанными ID
func (r *repo) DeleteMany(ctx context.Context, ids []string) error {
	notes, err := r.load(ctx)
	if err != nil {
		return err
	}

	remove := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		remove[id] = struct{}{}
	}

	kept := notes[:0]
	for _, n := range notes {
		if _, ok := remove[n.ID]; !ok {
			kept = append(kept, n)
		}
	}

	return r.store(ctx, kept)
}

// load читает и разбирает документ; отсутствующий или пустой документ это пустая коллекция
func (r *repo) load(ctx context.Context) ([]model.Note, error) {
	data, err := r.medium.Load(ctx)
	if errors.Is(err, ErrNotExist) {
		return []model.Note{}, nil
	}
	if err != nil {
		return nil, repository.NewStorageError("load", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []model.Note{}, nil
	}

	var notes []model.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, repository.NewStorageError("decode", err)
	}
	if notes == nil {
		notes = []model.Note{}
	}

	return notes, nil
}

// store сериализует коллекцию целиком и перезаписывает документ
func (r *repo) store(ctx context.Context, notes []model.Note) error {
	data, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return repository.NewStorageError("encode", err)
	}

	if err := r.medium.Save(ctx, data); err != nil {
		return repository.NewStorageError("save", err)
	}
	return nil
}

// timestamp возвращает текущее время в UTC без монотонной составляющей
func (r *repo) timestamp() time.Time {
	return r.now().UTC()
}

// touch возвращает новое значение UpdatedAt, строго большее предыдущего
func (r *repo) touch(prev time.Time) time.Time {
	now := r.timestamp()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

func (r *repo) uniqueID(notes []model.Note) string {
	for {
		id := r.newID()
		if id != "" && indexOf(notes, id) < 0 {
			return id
		}
	}
}

func indexOf(notes []model.Note, id string) int {
	for i, n := range notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
