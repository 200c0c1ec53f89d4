package curatai

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
)

// Albums - обертка над ресурсом /albums. Реализует ports.AlbumsAPI.
type Albums struct{ c *Client }

// Albums возвращает API альбомов.
func (c *Client) Albums() *Albums { return &Albums{c: c} }

func (a *Albums) GetAll(ctx context.Context, projectID string) ([]domain.Album, error) {
	var out albumList
	path := "/albums/get-albums-list?project_id=" + url.QueryEscape(projectID)
	if err := a.c.call(ctx, http.MethodGet, path, "albums_list", nil, &out); err != nil {
		a.c.logger.Error("error fetching albums", "project_id", projectID, "error", err)
		return nil, fmt.Errorf("fetch albums: %w", err)
	}
	if out == nil {
		return []domain.Album{}, nil
	}
	return out, nil
}

func (a *Albums) GetAlbumImages(ctx context.Context, albumID string) (*ports.AlbumImages, error) {
	var out ports.AlbumImages
	path := "/albums/get-album-images?album_id=" + url.QueryEscape(albumID)
	if err := a.c.call(ctx, http.MethodGet, path, "albums_images", nil, &out); err != nil {
		a.c.logger.Error("error fetching album images", "album_id", albumID, "error", err)
		return nil, fmt.Errorf("fetch album images: %w", err)
	}
	if out.ImageLinks == nil {
		out.ImageLinks = []string{}
	}
	return &out, nil
}

// Delete удаляет альбом. album_id передается в JSON-теле DELETE-запроса.
func (a *Albums) Delete(ctx context.Context, albumID string) error {
	body := deleteAlbumRequest{AlbumID: albumID}
	if err := a.c.call(ctx, http.MethodDelete, "/albums/delete-album", "albums_delete", body, nil); err != nil {
		a.c.logger.Error("error deleting album", "album_id", albumID, "error", err)
		return fmt.Errorf("delete album %s: %w", albumID, err)
	}
	a.c.logger.Info("album deleted", "album_id", albumID)
	return nil
}

// Generate создает альбом по вырезанному лицу и имени человека.
func (a *Albums) Generate(ctx context.Context, projectID, personName string, face *domain.CroppedFile) ([]string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("project_id", projectID); err != nil {
		return nil, fmt.Errorf("write project_id field: %w", err)
	}
	if err := mw.WriteField("person_name", personName); err != nil {
		return nil, fmt.Errorf("write person_name field: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, face.Name))
	header.Set("Content-Type", face.ContentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(face.Data); err != nil {
		return nil, fmt.Errorf("write image part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := a.c.newRequest(ctx, http.MethodPost, "/albums/generate-albums", &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	if err := a.c.authorize(req); err != nil {
		return nil, err
	}

	var out generateAlbumResponse
	if err := a.c.do(a.c.uploadClient, req, "albums_generate", &out); err != nil {
		a.c.logger.Error("error generating album", "project_id", projectID, "person_name", personName, "error", err)
		return nil, fmt.Errorf("generate album: %w", err)
	}

	a.c.logger.Info("album generated", "project_id", projectID, "person_name", personName, "album_ids", out.AlbumIDs)
	return out.AlbumIDs, nil
}
