package curatai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
)

// Images - обертка над ресурсами изображений. Реализует ports.ImagesAPI.
type Images struct{ c *Client }

// Images возвращает API изображений.
func (c *Client) Images() *Images { return &Images{c: c} }

// UploadZip загружает архив multipart-запросом. Тело собирается потоково:
// префикс с полем project_id и заголовком файла, сам файл, закрывающая граница.
// Content-Length известен заранее, поэтому прогресс считается от точного размера тела.
func (i *Images) UploadZip(ctx context.Context, projectID, filename string, file io.Reader, size int64, onProgress func(int)) (*ports.UploadResult, error) {
	var prefix bytes.Buffer
	mw := multipart.NewWriter(&prefix)

	if err := mw.WriteField("project_id", projectID); err != nil {
		return nil, fmt.Errorf("write project_id field: %w", err)
	}
	if _, err := mw.CreateFormFile("file", filename); err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	prefixLen := prefix.Len()

	// Close дописывает закрывающую границу в тот же буфер.
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}
	raw := prefix.Bytes()
	head, tail := raw[:prefixLen], raw[prefixLen:]

	total := int64(len(head)) + size + int64(len(tail))
	body := newProgressReader(io.MultiReader(bytes.NewReader(head), file, bytes.NewReader(tail)), total, onProgress)

	req, err := i.c.newRequest(ctx, http.MethodPost, "/images/upload/zip", body, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	req.ContentLength = total
	if err := i.c.authorize(req); err != nil {
		return nil, err
	}

	i.c.logger.Info("uploading archive", "project_id", projectID, "filename", filename, "size_bytes", size)

	var out ports.UploadResult
	if err := i.c.do(i.c.uploadClient, req, "images_upload_zip", &out); err != nil {
		i.c.logger.Error("error uploading archive", "project_id", projectID, "filename", filename, "error", err)
		return nil, fmt.Errorf("upload zip: %w", err)
	}
	if out.ProjectID == "" {
		out.ProjectID = projectID
	}
	if out.ImagesData == nil {
		out.ImagesData = map[string]json.RawMessage{}
	}

	i.c.logger.Info("archive uploaded", "project_id", projectID, "images", len(out.ImagesData))
	return &out, nil
}

// FaceRecognition отправляет карту загруженных изображений на распознавание лиц.
func (i *Images) FaceRecognition(ctx context.Context, projectID string, imagesData map[string]json.RawMessage) ([]ports.FaceMatch, error) {
	body := faceRecognitionRequest{ProjectID: projectID, ImagesData: imagesData}

	var raw json.RawMessage
	if err := i.c.call(ctx, http.MethodPost, "/face_recognition", "face_recognition", body, &raw); err != nil {
		i.c.logger.Error("error running face recognition", "project_id", projectID, "error", err)
		return nil, fmt.Errorf("face recognition: %w", err)
	}

	matches, err := decodeFaceMatches(raw)
	if err != nil {
		return nil, fmt.Errorf("face recognition: %w", err)
	}
	return matches, nil
}

// decodeFaceMatches принимает голый массив или обертку {"images": [...]}.
func decodeFaceMatches(raw json.RawMessage) ([]ports.FaceMatch, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var list []ports.FaceMatch
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped faceRecognitionResponse
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("unexpected face recognition payload: %w", err)
	}
	return wrapped.Images, nil
}

func (i *Images) GetProjectImages(ctx context.Context, projectID string) ([]domain.Image, error) {
	var out imagesResponse
	path := "/images/" + url.PathEscape(projectID)
	if err := i.c.call(ctx, http.MethodGet, path, "images_list", nil, &out); err != nil {
		i.c.logger.Error("error fetching images", "project_id", projectID, "error", err)
		return nil, fmt.Errorf("fetch images: %w", err)
	}
	if out.Images == nil {
		return []domain.Image{}, nil
	}
	return out.Images, nil
}

func (i *Images) DeleteImage(ctx context.Context, projectID, imageID string) error {
	path := "/images/" + url.PathEscape(projectID) + "/" + url.PathEscape(imageID)
	if err := i.c.call(ctx, http.MethodDelete, path, "images_delete", nil, nil); err != nil {
		i.c.logger.Error("error deleting image", "project_id", projectID, "image_id", imageID, "error", err)
		return fmt.Errorf("delete image %s: %w", imageID, err)
	}
	i.c.logger.Info("image deleted", "project_id", projectID, "image_id", imageID)
	return nil
}

// SearchImages выполняет поиск на естественном языке. Тело - form-urlencoded.
func (i *Images) SearchImages(ctx context.Context, projectID, query string) (*ports.SearchResult, error) {
	form := url.Values{}
	form.Set("project_id", projectID)
	form.Set("search_query", query)

	req, err := i.c.newRequest(ctx, http.MethodPost, "/image_searching/", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}
	if err := i.c.authorize(req); err != nil {
		return nil, err
	}

	var out ports.SearchResult
	if err := i.c.do(i.c.httpClient, req, "image_searching", &out); err != nil {
		i.c.logger.Error("error searching images", "project_id", projectID, "query", query, "error", err)
		return nil, fmt.Errorf("search images: %w", err)
	}
	if out.ImageLinks == nil {
		out.ImageLinks = []string{}
	}
	return &out, nil
}
