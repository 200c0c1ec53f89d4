package curatai

import (
	"encoding/json"
	"fmt"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
)

type projectsResponse struct {
	Projects []domain.Project `json:"projects"`
}

type createProjectRequest struct {
	ProjectName string `json:"project_name"`
	UserID      string `json:"user_id"`
}

type createProjectResponse struct {
	ProjectID string `json:"project_id"`
	Message   string `json:"message,omitempty"`
}

type imagesResponse struct {
	Images []domain.Image `json:"images"`
}

type faceRecognitionRequest struct {
	ProjectID  string                     `json:"project_id"`
	ImagesData map[string]json.RawMessage `json:"images_data"`
}

type faceRecognitionResponse struct {
	Images []ports.FaceMatch `json:"images"`
}

type deleteAlbumRequest struct {
	AlbumID string `json:"album_id"`
}

type generateAlbumResponse struct {
	AlbumIDs []string `json:"album_ids"`
}

// albumList принимает как голый массив, так и обертку {"albums": [...]}.
type albumList []domain.Album

func (l *albumList) UnmarshalJSON(data []byte) error {
	var list []domain.Album
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var wrapped struct {
		Albums []domain.Album `json:"albums"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("unexpected albums payload: %w", err)
	}
	*l = wrapped.Albums
	return nil
}
