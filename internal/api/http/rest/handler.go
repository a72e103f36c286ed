package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"notes-store/internal/api/dto"
	"notes-store/internal/api/http/response"
	"notes-store/internal/converter"
	"notes-store/internal/model"
	"notes-store/internal/repository"
	svc "notes-store/internal/service"

	"github.com/sirupsen/logrus"
)

// maxBodyBytes ограничение размера тела запроса
const maxBodyBytes = 1 << 20

// EventSource источник событий для стрима /notes/events
type EventSource interface {
	Subscribe() chan model.NoteEvent
	Unsubscribe(ch chan model.NoteEvent)
}

// Handler обработчики REST API заметок
type Handler struct {
	noteService svc.NoteService
	events      EventSource
	// serverCtx отменяется при остановке сервера, чтобы завершить открытые стримы
	serverCtx context.Context
}

// NewHandler создает обработчики поверх сервиса заметок.
// serverCtx отменяется при остановке сервера; events может быть nil
func NewHandler(serverCtx context.Context, noteService svc.NoteService, events EventSource) *Handler {
	return &Handler{
		noteService: noteService,
		events:      events,
		serverCtx:   serverCtx,
	}
}

// CreateNote POST /notes
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req dto.CreateNoteRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := dto.Validate(req); err != nil {
		h.writeError(w, err)
		return
	}

	note, err := h.noteService.Create(r.Context(), converter.CreateRequestToInput(req))
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, note)
}

// ListNotes GET /notes
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	notes, err := h.noteService.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if notes == nil {
		notes = []model.NoteSummary{}
	}

	response.JSON(w, http.StatusOK, notes)
}

// GetNote GET /notes/{id}
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request, params map[string]string) {
	note, err := h.noteService.Get(r.Context(), params["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, note)
}

// UpdateNote PATCH /notes/{id}
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var req dto.UpdateNoteRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := dto.Validate(req); err != nil {
		h.writeError(w, err)
		return
	}

	note, err := h.noteService.Update(r.Context(), params["id"], converter.UpdateRequestToPatch(req))
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, note)
}

// DeleteNotes DELETE /notes/bulk
func (h *Handler) DeleteNotes(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req dto.DeleteNotesRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := dto.Validate(req); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.noteService.DeleteMany(r.Context(), converter.UniqueIDs(req.IDs)); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// StreamEvents GET /notes/events отдает события построчно в формате NDJSON.
// Первое сообщение приветственное. Через WebSocket тот же поток доступен благодаря wsproxy
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path))
		return
	}
	if h.events == nil {
		response.Error(w, http.StatusNotFound, "event stream is not enabled")
		return
	}

	rc := http.NewResponseController(w)
	// Стрим живет дольше WriteTimeout сервера
	_ = rc.SetWriteDeadline(time.Time{})

	ch := h.events.Subscribe()
	defer h.events.Unsubscribe(ch)

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	send := func(event model.NoteEvent) error {
		if err := enc.Encode(event); err != nil {
			return err
		}
		_ = rc.Flush()
		return nil
	}

	if err := send(model.NoteEvent{Type: model.EventSubscribed, OccurredAt: time.Now().UTC()}); err != nil {
		return
	}

	log := logrus.WithField("remote", r.RemoteAddr)
	log.Debug("event stream opened")
	defer log.Debug("event stream closed")

	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.serverCtx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := send(event); err != nil {
				log.WithError(err).Debug("event stream write failed")
				return
			}
		}
	}
}

// decode читает ровно одно JSON значение из тела, запрещая неизвестные поля
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil {
		// После объекта допускаются только пробелы
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return dto.NewValidationError("", "request body is not valid JSON")
		}
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return dto.NewValidationError("", "request body is empty")
	case errors.As(err, &typeErr):
		if typeErr.Field == "title" {
			return dto.NewValidationError("title", "El título debe ser un texto")
		}
		return dto.NewValidationError(typeErr.Field, fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type))
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return dto.NewValidationError("", "request body is not valid JSON")
	case errors.As(err, &maxErr):
		return dto.NewValidationError("", "request body is too large")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return dto.NewValidationError(field, fmt.Sprintf("property %s should not exist", field))
	default:
		return dto.NewValidationError("", err.Error())
	}
}

// writeError переводит ошибку в HTTP статус и тело ответа
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *dto.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error(w, http.StatusBadRequest, verr.Messages())
	case errors.Is(err, svc.ErrNoteNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	default:
		entry := logrus.WithError(err)
		if errors.Is(err, repository.ErrStorage) {
			entry = entry.WithField("kind", "storage")
		}
		entry.Error("request failed")
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
