package usecase

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"math"

	"github.com/nfnt/resize"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
)

const (
	faceFileName    = "face.jpg"
	faceJPEGQuality = 92

	MinZoom = 1.0
	MaxZoom = 3.0
)

// CropView - положение квадратной рамки кадрирования.
// OffsetX / OffsetY сдвигают центр рамки от центра изображения (в пикселях исходника),
// Zoom уменьшает сторону рамки: side = min(w, h) / Zoom.
type CropView struct {
	OffsetX float64
	OffsetY float64
	Zoom    float64
}

// Area переводит рамку в прямоугольник в пикселях изображения w×h.
// Рамка всегда квадратная и целиком лежит внутри изображения.
func (v CropView) Area(w, h int) domain.CropArea {
	if w <= 0 || h <= 0 {
		return domain.CropArea{}
	}

	zoom := math.Min(math.Max(v.Zoom, MinZoom), MaxZoom)
	side := int(math.Round(float64(min(w, h)) / zoom))
	if side < 1 {
		side = 1
	}

	cx := float64(w)/2 + v.OffsetX
	cy := float64(h)/2 + v.OffsetY
	x := clampInt(int(math.Round(cx-float64(side)/2)), 0, w-side)
	y := clampInt(int(math.Round(cy-float64(side)/2)), 0, h-side)

	return domain.CropArea{X: x, Y: y, Width: side, Height: side}
}

// FaceCropper вырезает лицо из изображения проекта и кодирует его в JPEG.
type FaceCropper struct {
	fetcher ports.ImageFetcher
	maxSize uint
	logger  *slog.Logger
}

// NewFaceCropper создает FaceCropper. maxSize == 0 отключает уменьшение.
func NewFaceCropper(fetcher ports.ImageFetcher, maxSize uint, logger *slog.Logger) *FaceCropper {
	return &FaceCropper{fetcher: fetcher, maxSize: maxSize, logger: logger}
}

// Dimensions скачивает изображение и возвращает его размер (для расчета рамки).
func (fc *FaceCropper) Dimensions(ctx context.Context, imageURL string) (int, int, error) {
	data, _, err := fc.fetcher.FetchImage(ctx, imageURL)
	if err != nil {
		return 0, 0, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Crop скачивает изображение в полном разрешении и вырезает area.
func (fc *FaceCropper) Crop(ctx context.Context, imageURL string, area domain.CropArea) (*domain.CroppedFile, error) {
	if area.Empty() {
		return nil, fmt.Errorf("crop area is not set: %w", domain.ErrValidation)
	}

	data, _, err := fc.fetcher.FetchImage(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	out, err := fc.CropImage(src, area)
	if err != nil {
		return nil, err
	}

	fc.logger.Debug("face cropped",
		"source_format", format,
		"area", fmt.Sprintf("%dx%d+%d+%d", area.Width, area.Height, area.X, area.Y),
		"bytes", len(out.Data),
	)
	return out, nil
}

// CropImage рисует прямоугольник area на отдельном холсте и кодирует результат.
func (fc *FaceCropper) CropImage(src image.Image, area domain.CropArea) (*domain.CroppedFile, error) {
	rect := image.Rect(area.X, area.Y, area.X+area.Width, area.Y+area.Height).
		Add(src.Bounds().Min).
		Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("crop area lies outside the image: %w", domain.ErrValidation)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(canvas, canvas.Bounds(), src, rect.Min, draw.Src)

	var result image.Image = canvas
	if fc.maxSize > 0 && (uint(rect.Dx()) > fc.maxSize || uint(rect.Dy()) > fc.maxSize) {
		result = resize.Thumbnail(fc.maxSize, fc.maxSize, canvas, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, result, &jpeg.Options{Quality: faceJPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode face jpeg: %w", err)
	}

	return &domain.CroppedFile{
		Name:        faceFileName,
		ContentType: "image/jpeg",
		Data:        buf.Bytes(),
	}, nil
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
