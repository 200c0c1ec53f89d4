package domain

import (
	"errors"
	"sort"
	"strings"
)

// Sentinel-ошибки клиента.
var (
	ErrUnauthenticated  = errors.New("not logged in")
	ErrNoProject        = errors.New("no project selected")
	ErrUploadInProgress = errors.New("please wait until the upload is complete")
	ErrBusy             = errors.New("operation already in progress")
	ErrNotZip           = errors.New("please upload a ZIP file")
	ErrUnsupported      = errors.New("capability is not supported")
	ErrAlbumNotFound    = errors.New("album not found")
	ErrValidation       = errors.New("validation failed")
)

// FieldErrors - ошибки валидации формы, ключ - имя поля ("general" для общих).
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error { return ErrValidation }

// MessageOf возвращает сообщение бэкенда из цепочки ошибок.
// Пустая строка означает, что бэкенд сообщения не прислал.
func MessageOf(err error) string {
	var be interface{ BackendMessage() string }
	if errors.As(err, &be) {
		return be.BackendMessage()
	}
	return ""
}

// StatusOf возвращает HTTP-статус ответа бэкенда из цепочки ошибок или 0.
func StatusOf(err error) int {
	var se interface{ HTTPStatus() int }
	if errors.As(err, &se) {
		return se.HTTPStatus()
	}
	return 0
}
