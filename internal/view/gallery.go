package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
	"github.com/GoArmGo/CuratAI/internal/state"
	"github.com/GoArmGo/CuratAI/internal/usecase"
)

var inAlbumPattern = regexp.MustCompile(`(?i)^\s*in album:\s*(.+)$`)

// GalleryDeps - зависимости галереи.
type GalleryDeps struct {
	Images   ports.ImagesAPI
	Albums   ports.AlbumsAPI
	Ingest   usecase.IngestUseCase
	Fetcher  ports.ImageFetcher
	Store    *state.Store
	Notifier ports.Notifier
	Logger   *slog.Logger

	// OnProgress получает процент загрузки архива (для отрисовки прогресса).
	OnProgress func(int)
}

// Gallery - изображения выбранного проекта и лента загрузок и поисковых запросов.
// Лента живет только в памяти.
type Gallery struct {
	deps   GalleryDeps
	loader *loader
	now    func() time.Time

	mu        sync.Mutex
	projectID string
	messages  []domain.Message
	loading   bool
	progress  int
	deleting  map[string]bool
}

// NewGallery создает галерею и подписывает ее на смену выбранного проекта.
func NewGallery(ctx context.Context, deps GalleryDeps) *Gallery {
	g := &Gallery{
		deps:     deps,
		loader:   newLoader(ctx),
		now:      time.Now,
		deleting: map[string]bool{},
	}
	deps.Store.Subscribe(func(ev state.Event, st *state.Store) {
		if ev == state.ProjectChanged {
			g.SetProject(st.SelectedProject())
		}
	})
	if id := deps.Store.SelectedProject(); id != "" {
		g.SetProject(id)
	}
	return g
}

// SetProject сбрасывает состояние, отменяет загрузки прошлого проекта и грузит новый.
func (g *Gallery) SetProject(projectID string) {
	ctx, gen := g.loader.reset()

	g.mu.Lock()
	g.projectID = projectID
	g.messages = nil
	g.loading = projectID != ""
	g.deleting = map[string]bool{}
	g.mu.Unlock()

	if projectID == "" {
		return
	}
	g.loader.run(ctx, func(ctx context.Context) error {
		return g.loadImages(ctx, gen, projectID)
	})
}

// loadImages заменяет ленту одной записью upload с изображениями проекта с сервера.
func (g *Gallery) loadImages(ctx context.Context, gen uint64, projectID string) error {
	images, err := g.deps.Images.GetProjectImages(ctx, projectID)

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.loader.current(gen) {
		return nil
	}
	g.loading = false

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			g.deps.Notifier.Notify(ports.LevelError, "Failed to load project images")
		}
		return err
	}
	if len(images) > 0 {
		g.messages = []domain.Message{g.uploadMessage(images)}
	}
	return nil
}

func (g *Gallery) uploadMessage(images []domain.Image) domain.Message {
	return domain.Message{
		ID:        "upload-" + uuid.NewString(),
		Type:      domain.MessageUpload,
		Images:    images,
		Timestamp: g.now().UTC(),
	}
}

// Wait ждет завершения фоновых загрузок.
func (g *Gallery) Wait() { g.loader.wait() }

// Close отменяет фоновые загрузки.
func (g *Gallery) Close() { g.loader.close() }

func (g *Gallery) ProjectID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.projectID
}

func (g *Gallery) Loading() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loading
}

func (g *Gallery) Progress() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.progress
}

// Messages возвращает копию ленты.
func (g *Gallery) Messages() []domain.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.Message(nil), g.messages...)
}

// Images возвращает изображения из всех записей upload в порядке ленты.
func (g *Gallery) Images() []domain.Image {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []domain.Image
	for _, m := range g.messages {
		if m.Type == domain.MessageUpload {
			out = append(out, m.Images...)
		}
	}
	return out
}

// Upload загружает ZIP-архив в выбранный проект.
func (g *Gallery) Upload(path string) error {
	ctx, gen := g.loader.snapshot()
	projectID := g.ProjectID()

	if projectID == "" {
		g.deps.Notifier.Notify(ports.LevelError, "No project selected")
		return domain.ErrNoProject
	}
	if !usecase.IsZip(path) {
		g.deps.Notifier.Notify(ports.LevelError, "Please upload a ZIP file")
		return domain.ErrNotZip
	}
	if !g.deps.Store.BeginUpload() {
		g.deps.Notifier.Notify(ports.LevelError, msgWaitForUpload)
		return domain.ErrUploadInProgress
	}
	defer g.deps.Store.EndUpload()

	g.setProgress(0)
	images, err := g.deps.Ingest.UploadFile(ctx, projectID, path, func(p int) {
		g.setProgress(p)
		if g.deps.OnProgress != nil {
			g.deps.OnProgress(p)
		}
	})
	if err != nil {
		g.deps.Notifier.Notify(ports.LevelError, "Failed to upload images")
		return err
	}

	g.mu.Lock()
	stale := !g.loader.current(gen)
	if !stale && len(images) > 0 {
		g.messages = append(g.messages, g.uploadMessage(images))
	}
	g.mu.Unlock()

	g.deps.Notifier.Notify(ports.LevelSuccess, fmt.Sprintf("Uploaded %d images", len(images)))
	if stale {
		return nil
	}

	// обновление с сервера подтягивает результаты распознавания лиц
	_ = g.loadImages(ctx, gen, projectID)
	return nil
}

func (g *Gallery) setProgress(p int) {
	g.mu.Lock()
	g.progress = p
	g.mu.Unlock()
}

// Deleting сообщает, идет ли удаление изображения.
func (g *Gallery) Deleting(imageID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.deleting[imageID]
}

func (g *Gallery) findImage(imageID string) (domain.Image, bool) {
	for _, img := range g.Images() {
		if img.ID == imageID {
			return img, true
		}
	}
	return domain.Image{}, false
}

// DeleteImage удаляет изображение на сервере и из ленты.
// Изображения с сессионным id еще не известны серверу под этим id и не удаляются.
func (g *Gallery) DeleteImage(imageID string) error {
	ctx, gen := g.loader.snapshot()

	img, ok := g.findImage(imageID)
	if !ok {
		return fmt.Errorf("image %s: %w", imageID, domain.ErrValidation)
	}
	if img.Local {
		g.deps.Notifier.Notify(ports.LevelError, "Image is still syncing, reload the project first")
		return fmt.Errorf("image %s has a session-local id: %w", imageID, domain.ErrValidation)
	}

	g.mu.Lock()
	if g.deleting[imageID] {
		g.mu.Unlock()
		return domain.ErrBusy
	}
	g.deleting[imageID] = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.deleting, imageID)
		g.mu.Unlock()
	}()

	if err := g.deps.Images.DeleteImage(ctx, img.ProjectID, imageID); err != nil {
		g.deps.Notifier.Notify(ports.LevelError, "Failed to delete image")
		return err
	}

	g.mu.Lock()
	if g.loader.current(gen) {
		for i := range g.messages {
			g.messages[i].Images = removeImage(g.messages[i].Images, imageID)
		}
	}
	g.mu.Unlock()

	g.deps.Notifier.Notify(ports.LevelSuccess, "Image deleted")
	return nil
}

func removeImage(images []domain.Image, id string) []domain.Image {
	out := images[:0:0]
	for _, img := range images {
		if img.ID != id {
			out = append(out, img)
		}
	}
	return out
}

// Download сохраняет изображение в каталог dir и возвращает путь к файлу.
func (g *Gallery) Download(imageID, dir string) (string, error) {
	ctx, _ := g.loader.snapshot()

	img, ok := g.findImage(imageID)
	if !ok {
		return "", fmt.Errorf("image %s: %w", imageID, domain.ErrValidation)
	}

	data, _, err := g.deps.Fetcher.FetchImage(ctx, img.ImageURL)
	if err != nil {
		g.deps.Notifier.Notify(ports.LevelError, "Failed to download image")
		return "", err
	}

	name := filepath.Base(strings.SplitN(img.ImageURL, "?", 2)[0])
	if name == "" || name == "." || name == "/" {
		name = imageID + ".jpg"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}
	dst := filepath.Join(dir, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dst, err)
	}

	g.deps.Notifier.Notify(ports.LevelSuccess, "Image downloaded")
	return dst, nil
}

// Search добавляет в ленту запрос пользователя и ответ.
// Запрос вида "in album: <name>" разрешается через список альбомов, а не через поиск.
func (g *Gallery) Search(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	ctx, gen := g.loader.snapshot()
	projectID := g.ProjectID()
	if projectID == "" {
		g.deps.Notifier.Notify(ports.LevelError, "No project selected")
		return domain.ErrNoProject
	}

	aiID := "ai-" + uuid.NewString()
	g.mu.Lock()
	now := g.now().UTC()
	g.messages = append(g.messages,
		domain.Message{ID: "user-" + uuid.NewString(), Type: domain.MessageUser, Content: query, Timestamp: now},
		domain.Message{ID: aiID, Type: domain.MessageAI, Timestamp: now, IsLoading: true},
	)
	g.mu.Unlock()

	var (
		content string
		images  []domain.Image
		err     error
	)
	if m := inAlbumPattern.FindStringSubmatch(query); m != nil {
		content, images, err = g.searchAlbum(ctx, projectID, strings.TrimSpace(m[1]))
	} else {
		content, images, err = g.searchText(ctx, projectID, query)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.loader.current(gen) {
		return nil
	}
	for i := range g.messages {
		if g.messages[i].ID == aiID {
			g.messages[i].IsLoading = false
			g.messages[i].Content = content
			g.messages[i].Images = images
		}
	}
	return err
}

func (g *Gallery) searchAlbum(ctx context.Context, projectID, name string) (string, []domain.Image, error) {
	albums, err := g.deps.Albums.GetAll(ctx, projectID)
	if err != nil {
		g.deps.Notifier.Notify(ports.LevelError, "Failed to load albums")
		return "Search failed. Please try again.", nil, err
	}

	var album *domain.Album
	for i := range albums {
		if strings.EqualFold(strings.TrimSpace(albums[i].PersonName), name) {
			album = &albums[i]
			break
		}
	}
	if album == nil {
		msg := fmt.Sprintf("Album %q not found", name)
		g.deps.Notifier.Notify(ports.LevelError, msg)
		return msg, nil, fmt.Errorf("%s: %w", name, domain.ErrAlbumNotFound)
	}

	res, err := g.deps.Albums.GetAlbumImages(ctx, album.ID)
	if err != nil {
		g.deps.Notifier.Notify(ports.LevelError, "Failed to load album images")
		return "Search failed. Please try again.", nil, err
	}

	images := linksToImages(projectID, res.ImageLinks, nil)
	for i := range images {
		images[i].AlbumID = album.ID
		images[i].PersonName = album.PersonName
	}
	return fmt.Sprintf("Album %q: %d images", album.PersonName, len(images)), images, nil
}

func (g *Gallery) searchText(ctx context.Context, projectID, query string) (string, []domain.Image, error) {
	res, err := g.deps.Images.SearchImages(ctx, projectID, query)
	if err != nil {
		g.deps.Notifier.Notify(ports.LevelError, "Search failed")
		return "Search failed. Please try again.", nil, err
	}

	images := linksToImages(projectID, res.ImageLinks, res.ImageIDs)
	if len(images) == 0 {
		return "No images found", nil, nil
	}
	return fmt.Sprintf("Found %d images", len(images)), images, nil
}

// linksToImages строит изображения по ссылкам. ids используются, если их столько же, сколько ссылок.
func linksToImages(projectID string, links, ids []string) []domain.Image {
	images := make([]domain.Image, 0, len(links))
	for i, link := range links {
		img := domain.Image{ImageURL: link, ProjectID: projectID}
		if len(ids) == len(links) {
			img.ID = ids[i]
		} else {
			img.ID = fmt.Sprintf("%s-result-%d", projectID, i)
			img.Local = true
		}
		images = append(images, img)
	}
	return images
}
