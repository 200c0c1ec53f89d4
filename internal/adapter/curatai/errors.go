package curatai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/GoArmGo/CuratAI/internal/domain"
)

// APIError - ответ бэкенда со статусом вне 2xx.
// Message пуст, если тело не содержит полей message / detail.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, msg)
}

func (e *APIError) BackendMessage() string { return e.Message }
func (e *APIError) HTTPStatus() int        { return e.StatusCode }

// newAPIError достает сообщение из полей message / detail тела ответа.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: strings.TrimSpace(string(body))}

	var payload struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" && len(payload.Detail) > 0 {
			var detail string
			if json.Unmarshal(payload.Detail, &detail) == nil {
				apiErr.Message = detail
			} else {
				apiErr.Message = string(payload.Detail)
			}
		}
	}
	return apiErr
}

// MessageOf возвращает сообщение из тела ответа бэкенда, если err содержит APIError.
// Пустая строка означает, что бэкенд сообщения не прислал.
func MessageOf(err error) string {
	return domain.MessageOf(err)
}

// IsStatus проверяет код ответа бэкенда.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
