package ports

import (
	"context"
	"encoding/json"
	"io"

	"github.com/GoArmGo/CuratAI/internal/domain"
)

// ProjectsAPI определяет операции бэкенда над проектами
type ProjectsAPI interface {
	GetAll(ctx context.Context, userID string) ([]domain.Project, error)
	Create(ctx context.Context, name, userID string) (string, error)
	Delete(ctx context.Context, projectID string) error
	Validate(ctx context.Context, projectID string) (*domain.Project, error)
}

// UploadResult - ответ загрузки архива: карта URL -> данные файла.
// Значения передаются в распознавание лиц без изменений.
type UploadResult struct {
	ProjectID  string                     `json:"project_id"`
	ImagesData map[string]json.RawMessage `json:"images_data"`
}

// FaceMatch - аннотация изображения, найденная распознаванием лиц.
type FaceMatch struct {
	ImageURL   string `json:"image_url"`
	PersonName string `json:"person_name"`
	AlbumID    string `json:"album_id"`
}

// SearchResult - результат поиска на естественном языке.
type SearchResult struct {
	ImageLinks []string `json:"image_links"`
	ImageIDs   []string `json:"image_ids"`
}

// ImagesAPI определяет операции бэкенда над изображениями
type ImagesAPI interface {
	UploadZip(ctx context.Context, projectID, filename string, file io.Reader, size int64, onProgress func(int)) (*UploadResult, error)
	FaceRecognition(ctx context.Context, projectID string, imagesData map[string]json.RawMessage) ([]FaceMatch, error)
	GetProjectImages(ctx context.Context, projectID string) ([]domain.Image, error)
	DeleteImage(ctx context.Context, projectID, imageID string) error
	SearchImages(ctx context.Context, projectID, query string) (*SearchResult, error)
}

// AlbumImages - содержимое альбома для детального просмотра.
type AlbumImages struct {
	Album      *domain.Album `json:"album,omitempty"`
	ImageLinks []string      `json:"image_links"`
}

// AlbumsAPI определяет операции бэкенда над альбомами
type AlbumsAPI interface {
	GetAll(ctx context.Context, projectID string) ([]domain.Album, error)
	GetAlbumImages(ctx context.Context, albumID string) (*AlbumImages, error)
	Delete(ctx context.Context, albumID string) error
	Generate(ctx context.Context, projectID, personName string, face *domain.CroppedFile) ([]string, error)
}

// ImageFetcher скачивает изображение целиком (для вырезания лица и экспорта).
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) ([]byte, string, error)
}
