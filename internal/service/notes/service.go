package notes

import (
	"context"
	"time"

	"notes-store/internal/model"
	"notes-store/internal/repository"
	svc "notes-store/internal/service"

	"github.com/sirupsen/logrus"
)

var _ svc.NoteService = (*service)(nil)

type service struct {
	noteRepository repository.NoteRepository
	publishers     []svc.EventPublisher
	now            func() time.Time
}

// Option настраивает сервис заметок
type Option func(*service)

// WithPublishers подключает получателей событий об изменениях
func WithPublishers(publishers ...svc.EventPublisher) Option {
	return func(s *service) {
		s.publishers = append(s.publishers, publishers...)
	}
}

// NewNoteService создает новый экземпляр сервиса для работы с заметками
func NewNoteService(noteRepository repository.NoteRepository, opts ...Option) svc.NoteService {
	s := &service{
		noteRepository: noteRepository,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create создает новую заметку. ID и временные метки назначает репозиторий
func (s *service) Create(ctx context.Context, in model.NoteInput) (model.Note, error) {
	note, err := s.noteRepository.Create(ctx, in)
	if err != nil {
		return model.Note{}, err
	}

	s.publish(ctx, model.EventCreated, &note, note.ID)
	return note, nil
}

// Get возвращает заметку по её ID
func (s *service) Get(ctx context.Context, id string) (model.Note, error) {
	note, ok, err := s.noteRepository.GetByID(ctx, id)
	if err != nil {
		return model.Note{}, err
	}
	if !ok {
		return model.Note{}, svc.NewNotFoundError(id)
	}

	return note, nil
}

// List возвращает список всех заметок
func (s *service) List(ctx context.Context) ([]model.NoteSummary, error) {
	return s.noteRepository.List(ctx)
}

// Update обновляет заметку, предварительно проверив её существование
func (s *service) Update(ctx context.Context, id string, patch model.NotePatch) (model.Note, error) {
	_, ok, err := s.noteRepository.GetByID(ctx, id)
	if err != nil {
		return model.Note{}, err
	}
	if !ok {
		return model.Note{}, svc.NewNotFoundError(id)
	}

	updated, ok, err := s.noteRepository.Update(ctx, id, patch)
	if err != nil {
		return model.Note{}, err
	}
	// Заметка исчезла между проверкой и записью
	if !ok {
		return model.Note{}, svc.NewUpdateFailedError(id)
	}

	s.publish(ctx, model.EventUpdated, &updated, id)
	return updated, nil
}

// DeleteMany удаляет заметки по списку ID.
// Событие содержит только ID, которые были в хранилище; если таких нет, событие не отправляется
func (s *service) DeleteMany(ctx context.Context, ids []string) error {
	var existing []string
	if len(ids) > 0 && len(s.publishers) > 0 {
		summaries, err := s.noteRepository.List(ctx)
		if err != nil {
			return err
		}
		existing = storedIDs(summaries, ids)
	}

	if err := s.noteRepository.DeleteMany(ctx, ids); err != nil {
		return err
	}

	if len(existing) > 0 {
		s.publish(ctx, model.EventDeleted, nil, existing...)
	}
	return nil
}

// storedIDs возвращает ID из ids, которые есть в summaries, в порядке запроса
func storedIDs(summaries []model.NoteSummary, ids []string) []string {
	stored := make(map[string]struct{}, len(summaries))
	for _, n := range summaries {
		stored[n.ID] = struct{}{}
	}

	var out []string
	for _, id := range ids {
		if _, ok := stored[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// publish рассылает событие. Запись уже произошла, поэтому ошибки только логируются
func (s *service) publish(ctx context.Context, typ model.EventType, note *model.Note, ids ...string) {
	if len(s.publishers) == 0 {
		return
	}

	event := model.NoteEvent{
		Type:       typ,
		NoteIDs:    ids,
		Note:       note,
		OccurredAt: s.now().UTC(),
	}

	for _, p := range s.publishers {
		if err := p.Publish(ctx, event); err != nil {
			logrus.WithFields(logrus.Fields{
				"event": typ,
				"ids":   ids,
			}).WithError(err).Warn("failed to publish note event")
		}
	}
}
