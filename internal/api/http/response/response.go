package response

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// ErrorBody формат тела ответа с ошибкой
type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    any    `json:"message"` // строка или список строк для ошибок валидации
	Error      string `json:"error"`
}

// JSON пишет v в формате JSON с указанным статусом
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("failed to write response body")
	}
}

// Error пишет тело ошибки. Поле error содержит текст статуса
func Error(w http.ResponseWriter, status int, message any) {
	JSON(w, status, ErrorBody{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}
