package notes

import (
	"context"
	"sync"

	"notes-store/internal/model"
	svc "notes-store/internal/service"
)

// subscriberBuffer размер буфера канала подписчика
const subscriberBuffer = 10

var _ svc.EventPublisher = (*EventService)(nil)

// EventService управляет подписчиками на события изменения заметок
type EventService struct {
	subscribers map[chan model.NoteEvent]bool
	mu          sync.RWMutex
}

// NewEventService создает новый экземпляр EventService
func NewEventService() *EventService {
	return &EventService{
		subscribers: make(map[chan model.NoteEvent]bool),
	}
}

// Subscribe добавляет нового подписчика и возвращает канал для получения событий
func (s *EventService) Subscribe() chan model.NoteEvent {
	ch := make(chan model.NoteEvent, subscriberBuffer)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers[ch] = true
	return ch
}

// Unsubscribe удаляет подписчика и закрывает его канал
func (s *EventService) Unsubscribe(ch chan model.NoteEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; ok {
		close(ch)
		delete(s.subscribers, ch)
	}
}

// Subscribers возвращает текущее число подписчиков
func (s *EventService) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

// Publish отправляет событие всем подписчикам.
// Если канал подписчика переполнен, событие пропускается
func (s *EventService) Publish(_ context.Context, event model.NoteEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Канал переполнен, пропускаем
		}
	}
	return nil
}
