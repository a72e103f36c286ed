package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notes-store/internal/api/dto"
	"notes-store/internal/api/grpc/interceptors"
	"notes-store/internal/converter"
	"notes-store/internal/model"
	"notes-store/internal/repository"
	svc "notes-store/internal/service"

	"github.com/sirupsen/logrus"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"
	"google.golang.org/protobuf/types/known/emptypb"
)

const errorDomain = "notes.v1"

// EventSource источник событий для SubscribeToEvents
type EventSource interface {
	Subscribe() chan model.NoteEvent
	Unsubscribe(ch chan model.NoteEvent)
}

var _ NotesServiceServer = (*Handler)(nil)

// Handler реализует gRPC сервер для NotesService
type Handler struct {
	noteService svc.NoteService
	events      EventSource
	// serverCtx отменяется при shutdown. В отличие от unary методов,
	// стримы должны слушать его явно, иначе GracefulStop будет ждать их завершения
	serverCtx context.Context
}

// NewHandler создает новый экземпляр gRPC хэндлера. events может быть nil
func NewHandler(serverCtx context.Context, noteService svc.NoteService, events EventSource) *Handler {
	return &Handler{
		noteService: noteService,
		events:      events,
		serverCtx:   serverCtx,
	}
}

// CreateNote создает новую заметку
func (h *Handler) CreateNote(ctx context.Context, req *CreateNoteRequest) (*NoteResponse, error) {
	note, err := h.noteService.Create(ctx, converter.CreateRequestToInput(*req))
	if err != nil {
		return nil, handleError(err)
	}
	return &NoteResponse{Note: &note}, nil
}

// ListNotes возвращает список всех заметок без содержимого
func (h *Handler) ListNotes(ctx context.Context, _ *emptypb.Empty) (*ListNotesResponse, error) {
	notes, err := h.noteService.List(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	if notes == nil {
		notes = []model.NoteSummary{}
	}
	return &ListNotesResponse{Notes: notes}, nil
}

// GetNote возвращает заметку по её ID
func (h *Handler) GetNote(ctx context.Context, req *GetNoteRequest) (*NoteResponse, error) {
	note, err := h.noteService.Get(ctx, req.ID)
	if err != nil {
		return nil, handleError(err)
	}
	return &NoteResponse{Note: &note}, nil
}

// UpdateNote обновляет переданные поля существующей заметки
func (h *Handler) UpdateNote(ctx context.Context, req *UpdateNoteRequest) (*NoteResponse, error) {
	note, err := h.noteService.Update(ctx, req.ID, converter.UpdateRequestToPatch(req.UpdateNoteRequest))
	if err != nil {
		return nil, handleError(err)
	}
	return &NoteResponse{Note: &note}, nil
}

// DeleteNotes удаляет заметки по списку ID
func (h *Handler) DeleteNotes(ctx context.Context, req *DeleteNotesRequest) (*emptypb.Empty, error) {
	if err := h.noteService.DeleteMany(ctx, converter.UniqueIDs(req.IDs)); err != nil {
		return nil, handleError(err)
	}
	return &emptypb.Empty{}, nil
}

// SubscribeToEvents отправляет приветственное событие, затем все изменения заметок
func (h *Handler) SubscribeToEvents(_ *emptypb.Empty, stream grpc.ServerStreamingServer[model.NoteEvent]) error {
	if h.events == nil {
		return status.Error(codes.Unimplemented, "event stream is not enabled")
	}

	ch := h.events.Subscribe()
	defer h.events.Unsubscribe(ch)

	welcome := &model.NoteEvent{Type: model.EventSubscribed, OccurredAt: time.Now().UTC()}
	if err := stream.Send(welcome); err != nil {
		return err
	}

	for {
		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		case <-h.serverCtx.Done():
			logrus.Debug("server is shutting down, closing event stream")
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := stream.Send(&event); err != nil {
				return err
			}
		}
	}
}

// handleError конвертирует внутренние ошибки в gRPC статусы с детализацией
func handleError(err error) error {
	if err == nil {
		return nil
	}

	var nf *svc.NotFoundError
	if errors.As(err, &nf) {
		return withDetails(codes.NotFound, nf.Error(), &errdetails.ResourceInfo{
			ResourceType: "note",
			ResourceName: nf.ID,
			Description:  fmt.Sprintf("Note with ID %s was searched but not found", nf.ID),
		})
	}

	var verr *dto.ValidationError
	if errors.As(err, &verr) {
		return interceptors.ValidationStatus(verr).Err()
	}

	reason := "INTERNAL_ERROR"
	if errors.Is(err, repository.ErrStorage) {
		reason = "STORAGE_FAILURE"
	}
	logrus.WithError(err).WithField("reason", reason).Error("grpc request failed")
	return withDetails(codes.Internal, "internal error", &errdetails.ErrorInfo{
		Reason: reason,
		Domain: errorDomain,
	})
}

func withDetails(code codes.Code, msg string, details protoadapt.MessageV1) error {
	st := status.New(code, msg)
	if withDet, err := st.WithDetails(details); err == nil {
		return withDet.Err()
	}
	return st.Err()
}
