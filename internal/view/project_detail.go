package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
	"github.com/GoArmGo/CuratAI/internal/usecase"
)

// ProjectDetail - страница одного проекта: проверка проекта, список изображений, загрузка.
type ProjectDetail struct {
	projects ports.ProjectsAPI
	images   ports.ImagesAPI
	ingest   usecase.IngestUseCase
	notifier ports.Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	project  *domain.Project
	list     []domain.Image
	loading  bool
	redirect string
}

func NewProjectDetail(projects ports.ProjectsAPI, images ports.ImagesAPI, ingest usecase.IngestUseCase, notifier ports.Notifier, logger *slog.Logger) *ProjectDetail {
	return &ProjectDetail{projects: projects, images: images, ingest: ingest, notifier: notifier, logger: logger}
}

// Open проверяет проект и загружает его изображения.
// Если проект не найден, уведомляет и перенаправляет на /projects.
func (d *ProjectDetail) Open(ctx context.Context, projectID string) error {
	d.mu.Lock()
	d.loading = true
	d.redirect = ""
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.loading = false
		d.mu.Unlock()
	}()

	project, err := d.projects.Validate(ctx, projectID)
	if err != nil {
		d.notifier.Notify(ports.LevelError, "Project not found")
		d.mu.Lock()
		d.project = nil
		d.list = nil
		d.redirect = "/projects"
		d.mu.Unlock()
		return err
	}

	d.mu.Lock()
	d.project = project
	d.mu.Unlock()

	return d.fetchImages(ctx)
}

func (d *ProjectDetail) fetchImages(ctx context.Context) error {
	project := d.Project()
	if project == nil {
		return domain.ErrNoProject
	}

	images, err := d.images.GetProjectImages(ctx, project.ID)
	if err != nil {
		d.notifier.Notify(ports.LevelError, "Failed to load images")
		return err
	}

	d.mu.Lock()
	d.list = images
	d.mu.Unlock()
	return nil
}

// Upload загружает архив в открытый проект и перечитывает изображения.
func (d *ProjectDetail) Upload(ctx context.Context, path string, onProgress func(int)) error {
	project := d.Project()
	if project == nil {
		return domain.ErrNoProject
	}
	if !usecase.IsZip(path) {
		d.notifier.Notify(ports.LevelError, "Please upload a ZIP file")
		return domain.ErrNotZip
	}

	if _, err := d.ingest.UploadFile(ctx, project.ID, path, onProgress); err != nil {
		d.notifier.Notify(ports.LevelError, "Failed to upload images")
		return err
	}
	d.notifier.Notify(ports.LevelSuccess, "Images uploaded successfully!")
	return d.fetchImages(ctx)
}

func (d *ProjectDetail) Project() *domain.Project {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.project == nil {
		return nil
	}
	cp := *d.project
	return &cp
}

func (d *ProjectDetail) Images() []domain.Image {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Image(nil), d.list...)
}

func (d *ProjectDetail) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

func (d *ProjectDetail) Redirect() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.redirect
}
