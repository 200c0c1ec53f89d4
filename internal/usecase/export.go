package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
)

// AlbumExporter выгружает изображения альбома на диск или во внешнее хранилище.
// Скачивание ограничено по частоте, чтобы не забивать хранилище бэкенда.
type AlbumExporter struct {
	albums  ports.AlbumsAPI
	fetcher ports.ImageFetcher
	storage ports.FileStorage
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewAlbumExporter создает AlbumExporter. storage может быть nil, тогда экспорт в бакет недоступен.
func NewAlbumExporter(albums ports.AlbumsAPI, fetcher ports.ImageFetcher, storage ports.FileStorage, perSecond float64, logger *slog.Logger) *AlbumExporter {
	return &AlbumExporter{
		albums:  albums,
		fetcher: fetcher,
		storage: storage,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		logger:  logger,
	}
}

// StorageEnabled сообщает, настроено ли внешнее хранилище.
func (e *AlbumExporter) StorageEnabled() bool { return e.storage != nil }

// ToDir сохраняет изображения альбома в dir и возвращает пути файлов.
func (e *AlbumExporter) ToDir(ctx context.Context, albumID, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	return e.export(ctx, albumID, func(ctx context.Context, name string, data []byte, _ string) (string, error) {
		dst := filepath.Join(dir, name)
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", dst, err)
		}
		return dst, nil
	})
}

// ToStorage загружает изображения альбома в бакет и возвращает их URL.
func (e *AlbumExporter) ToStorage(ctx context.Context, albumID string) ([]string, error) {
	if e.storage == nil {
		return nil, fmt.Errorf("object storage is not configured: %w", domain.ErrUnsupported)
	}

	return e.export(ctx, albumID, func(ctx context.Context, name string, data []byte, contentType string) (string, error) {
		key := path.Join("albums", albumID, name)
		return e.storage.UploadFile(ctx, key, bytes.NewReader(data), contentType)
	})
}

type sinkFunc func(ctx context.Context, name string, data []byte, contentType string) (string, error)

func (e *AlbumExporter) export(ctx context.Context, albumID string, sink sinkFunc) ([]string, error) {
	start := time.Now()

	res, err := e.albums.GetAlbumImages(ctx, albumID)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(res.ImageLinks))
	for i, link := range res.ImageLinks {
		if err := e.limiter.Wait(ctx); err != nil {
			return out, err
		}

		data, contentType, err := e.fetcher.FetchImage(ctx, link)
		if err != nil {
			return out, fmt.Errorf("export image %d of album %s: %w", i, albumID, err)
		}

		dst, err := sink(ctx, exportName(i, link), data, contentType)
		if err != nil {
			return out, err
		}
		out = append(out, dst)
	}

	e.logger.Info("album exported",
		"album_id", albumID,
		"images", len(out),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// exportName строит имя файла вида 003-name.jpg из ссылки на изображение.
func exportName(index int, link string) string {
	base := ""
	if u, err := url.Parse(link); err == nil {
		base = path.Base(u.Path)
	}
	if base == "" || base == "." || base == "/" {
		base = "image.jpg"
	}
	return fmt.Sprintf("%03d-%s", index, base)
}
