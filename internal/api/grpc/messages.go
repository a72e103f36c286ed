package grpc

import (
	"notes-store/internal/api/dto"
	"notes-store/internal/model"
)

// CreateNoteRequest запрос CreateNote
type CreateNoteRequest = dto.CreateNoteRequest

// DeleteNotesRequest запрос DeleteNotes
type DeleteNotesRequest = dto.DeleteNotesRequest

// GetNoteRequest запрос GetNote
type GetNoteRequest struct {
	ID string `json:"id" validate:"required"`
}

// UpdateNoteRequest запрос UpdateNote: ID и поля частичного обновления
type UpdateNoteRequest struct {
	ID string `json:"id" validate:"required"`
	dto.UpdateNoteRequest
}

// NoteResponse ответ с полной заметкой
type NoteResponse struct {
	Note *model.Note `json:"note"`
}

// ListNotesResponse ответ ListNotes, заметки без содержимого
type ListNotesResponse struct {
	Notes []model.NoteSummary `json:"notes"`
}
