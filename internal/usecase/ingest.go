package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
)

// IngestUseCase загружает ZIP-архивы и превращает ответ бэкенда в список изображений
type IngestUseCase interface {
	// UploadFile открывает архив на диске и загружает его.
	UploadFile(ctx context.Context, projectID, path string, onProgress func(int)) ([]domain.Image, error)

	// Upload загружает архив из reader. size - точный размер архива в байтах.
	Upload(ctx context.Context, projectID, filename string, r io.Reader, size int64, onProgress func(int)) ([]domain.Image, error)
}

type ingestUseCase struct {
	images ports.ImagesAPI
	logger *slog.Logger
	now    func() time.Time
}

// NewIngestUseCase создает новый экземпляр IngestUseCase
func NewIngestUseCase(images ports.ImagesAPI, logger *slog.Logger) IngestUseCase {
	return &ingestUseCase{images: images, logger: logger, now: time.Now}
}

// IsZip проверяет расширение имени файла.
func IsZip(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

func (uc *ingestUseCase) UploadFile(ctx context.Context, projectID, path string, onProgress func(int)) ([]domain.Image, error) {
	if !IsZip(path) {
		return nil, domain.ErrNotZip
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	return uc.Upload(ctx, projectID, filepath.Base(path), f, info.Size(), onProgress)
}

func (uc *ingestUseCase) Upload(ctx context.Context, projectID, filename string, r io.Reader, size int64, onProgress func(int)) ([]domain.Image, error) {
	if projectID == "" {
		return nil, domain.ErrNoProject
	}
	if !IsZip(filename) {
		return nil, domain.ErrNotZip
	}

	start := uc.now()
	res, err := uc.images.UploadZip(ctx, projectID, filename, r, size, onProgress)
	if err != nil {
		return nil, err
	}

	images := uc.synthesize(res)

	// Распознавание лиц - дополнительный шаг: его ошибка не отменяет загрузку.
	matches, err := uc.images.FaceRecognition(ctx, res.ProjectID, res.ImagesData)
	if err != nil {
		uc.logger.Warn("face recognition failed, returning unannotated images",
			"project_id", res.ProjectID,
			"error", err,
		)
		return images, nil
	}
	annotate(images, matches)

	uc.logger.Info("archive ingested",
		"project_id", res.ProjectID,
		"images", len(images),
		"matches", len(matches),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return images, nil
}

// synthesize строит записи изображений по карте URL из ответа загрузки.
// URL сортируются, чтобы индексы внутри пачки были детерминированы.
func (uc *ingestUseCase) synthesize(res *ports.UploadResult) []domain.Image {
	urls := make([]string, 0, len(res.ImagesData))
	for u := range res.ImagesData {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	now := uc.now()
	images := make([]domain.Image, 0, len(urls))
	for i, u := range urls {
		images = append(images, domain.Image{
			ID:        domain.LocalImageID(res.ProjectID, i, now),
			CreatedAt: domain.NewTimestamp(now.UTC()),
			ImageURL:  u,
			ProjectID: res.ProjectID,
			Local:     true,
		})
	}
	return images
}

// annotate переносит person_name / album_id на изображения с тем же URL.
func annotate(images []domain.Image, matches []ports.FaceMatch) {
	byURL := make(map[string]ports.FaceMatch, len(matches))
	for _, m := range matches {
		byURL[m.ImageURL] = m
	}
	for i := range images {
		m, ok := byURL[images[i].ImageURL]
		if !ok {
			continue
		}
		if m.PersonName != "" {
			images[i].PersonName = m.PersonName
		}
		if m.AlbumID != "" {
			images[i].AlbumID = m.AlbumID
		}
	}
}
