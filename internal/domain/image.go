package domain

import (
	"fmt"
	"time"
)

// Image - изображение проекта.
// Local выставляется для записей, чей ID синтезирован клиентом после загрузки архива:
// такой ID живет только в рамках текущей сессии и не сохраняется.
type Image struct {
	ID         string    `json:"id"`
	CreatedAt  Timestamp `json:"created_at"`
	ImageURL   string    `json:"image_url"`
	ProjectID  string    `json:"project_id"`
	PersonName string    `json:"person_name,omitempty"`
	AlbumID    string    `json:"album_id,omitempty"`
	Local      bool      `json:"-"`
}

// LocalImageID формирует сессионный ID вида <projectId>-<index>-<unixMillis>.
// Между перезапусками возможны коллизии, поэтому на такие ID нельзя ссылаться после перезагрузки.
func LocalImageID(projectID string, index int, at time.Time) string {
	return fmt.Sprintf("%s-%d-%d", projectID, index, at.UnixMilli())
}
