package ports

import (
	"context"
	"io"
)

// FileStorage - внешнее файловое хранилище (S3 / MinIO) для экспорта альбомов
type FileStorage interface {
	// UploadFile загружает файл и возвращает его URL.
	UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}
