package dto

// CreateNoteRequest тело запроса на создание заметки
type CreateNoteRequest struct {
	Title *string `json:"title" validate:"required,min=3"`
	Body  *string `json:"body" validate:"required"`
}

// UpdateNoteRequest тело запроса на частичное обновление. Отсутствующие поля не меняются
type UpdateNoteRequest struct {
	Title *string `json:"title,omitempty" validate:"omitnil,min=3"`
	Body  *string `json:"body,omitempty"`
}

// DeleteNotesRequest тело запроса на массовое удаление
type DeleteNotesRequest struct {
	IDs []string `json:"ids" validate:"required,dive,required"`
}
