package converter

import (
	"notes-store/internal/api/dto"
	"notes-store/internal/model"
)

// CreateRequestToInput конвертирует запрос на создание в доменные поля заметки
func CreateRequestToInput(req dto.CreateNoteRequest) model.NoteInput {
	var in model.NoteInput
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Body != nil {
		in.Body = *req.Body
	}
	return in
}

// UpdateRequestToPatch конвертирует запрос на обновление в частичное изменение.
// Указатели копируются, чтобы патч не ссылался на запрос
func UpdateRequestToPatch(req dto.UpdateNoteRequest) model.NotePatch {
	var patch model.NotePatch
	if req.Title != nil {
		title := *req.Title
		patch.Title = &title
	}
	if req.Body != nil {
		body := *req.Body
		patch.Body = &body
	}
	return patch
}

// UniqueIDs убирает повторы, сохраняя порядок
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
