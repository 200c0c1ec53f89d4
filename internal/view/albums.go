package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
	"github.com/GoArmGo/CuratAI/internal/state"
	"github.com/GoArmGo/CuratAI/internal/usecase"
)

// AlbumsMode - режим экрана альбомов.
type AlbumsMode string

const (
	ModeGrid   AlbumsMode = "grid"
	ModeDetail AlbumsMode = "detail"
)

// AlbumsDeps - зависимости экрана альбомов.
type AlbumsDeps struct {
	Albums   ports.AlbumsAPI
	Images   ports.ImagesAPI
	Cropper  *usecase.FaceCropper
	Store    *state.Store
	Notifier ports.Notifier
	Logger   *slog.Logger

	// ExitDelay - задержка очистки выбранного альбома после возврата к сетке.
	ExitDelay time.Duration
}

// Albums - сетка альбомов проекта и детальный просмотр одного альбома.
type Albums struct {
	deps   AlbumsDeps
	loader *loader

	mu                 sync.Mutex
	projectID          string
	mode               AlbumsMode
	albums             []domain.Album
	projectImages      []domain.Image
	selected           *domain.Album
	albumImages        []string
	loadingAlbums      bool
	loadingImages      bool
	loadingAlbumImages bool
	selectGen          uint64
	exitTimer          *time.Timer
}

// NewAlbums создает экран альбомов и подписывает его на смену проекта.
func NewAlbums(ctx context.Context, deps AlbumsDeps) *Albums {
	a := &Albums{deps: deps, loader: newLoader(ctx), mode: ModeGrid}
	deps.Store.Subscribe(func(ev state.Event, st *state.Store) {
		if ev == state.ProjectChanged {
			a.SetProject(st.SelectedProject())
		}
	})
	if id := deps.Store.SelectedProject(); id != "" {
		a.SetProject(id)
	}
	return a
}

// SetProject очищает альбомы, изображения и выбор, затем грузит данные нового проекта.
func (a *Albums) SetProject(projectID string) {
	ctx, gen := a.loader.reset()

	a.mu.Lock()
	a.projectID = projectID
	a.mode = ModeGrid
	a.albums = nil
	a.projectImages = nil
	a.selected = nil
	a.albumImages = nil
	a.selectGen++
	a.stopExitTimer()
	a.loadingAlbums = projectID != ""
	a.loadingImages = projectID != ""
	a.loadingAlbumImages = false
	a.mu.Unlock()

	if projectID == "" {
		return
	}
	a.loader.run(ctx,
		func(ctx context.Context) error { return a.loadAlbums(ctx, gen, projectID) },
		func(ctx context.Context) error { return a.loadProjectImages(ctx, gen, projectID) },
	)
}

func (a *Albums) loadAlbums(ctx context.Context, gen uint64, projectID string) error {
	albums, err := a.deps.Albums.GetAll(ctx, projectID)

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loader.current(gen) {
		return nil
	}
	a.loadingAlbums = false
	if err != nil {
		// ошибка списка альбомов только логируется
		a.deps.Logger.Warn("failed to load albums", "project_id", projectID, "error", err)
		return err
	}
	a.albums = albums
	return nil
}

func (a *Albums) loadProjectImages(ctx context.Context, gen uint64, projectID string) error {
	images, err := a.deps.Images.GetProjectImages(ctx, projectID)

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loader.current(gen) {
		return nil
	}
	a.loadingImages = false
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			a.deps.Notifier.Notify(ports.LevelError, "Failed to load project images")
		}
		return err
	}
	a.projectImages = images
	return nil
}

// Reload перечитывает список альбомов текущего проекта.
func (a *Albums) Reload() error {
	ctx, gen := a.loader.snapshot()
	projectID := a.ProjectID()
	if projectID == "" {
		return domain.ErrNoProject
	}

	a.mu.Lock()
	a.loadingAlbums = true
	a.mu.Unlock()
	return a.loadAlbums(ctx, gen, projectID)
}

func (a *Albums) Wait()  { a.loader.wait() }
func (a *Albums) Close() { a.loader.close() }

func (a *Albums) ProjectID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.projectID
}

func (a *Albums) Mode() AlbumsMode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *Albums) List() []domain.Album {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.Album(nil), a.albums...)
}

func (a *Albums) ProjectImages() []domain.Image {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.Image(nil), a.projectImages...)
}

func (a *Albums) Selected() *domain.Album {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.selected == nil {
		return nil
	}
	cp := *a.selected
	return &cp
}

func (a *Albums) AlbumImages() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.albumImages...)
}

func (a *Albums) LoadingAlbums() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadingAlbums
}

func (a *Albums) LoadingAlbumImages() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadingAlbumImages
}

// Select открывает детальный просмотр альбома и загружает ссылки на его изображения.
func (a *Albums) Select(albumID string) error {
	ctx, gen := a.loader.snapshot()

	a.mu.Lock()
	var album *domain.Album
	for i := range a.albums {
		if a.albums[i].ID == albumID {
			cp := a.albums[i]
			album = &cp
			break
		}
	}
	if album == nil {
		a.mu.Unlock()
		return fmt.Errorf("album %s: %w", albumID, domain.ErrAlbumNotFound)
	}
	a.stopExitTimer()
	a.selectGen++
	sel := a.selectGen
	a.selected = album
	a.mode = ModeDetail
	a.albumImages = nil
	a.loadingAlbumImages = true
	a.mu.Unlock()

	res, err := a.deps.Albums.GetAlbumImages(ctx, albumID)

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loader.current(gen) || a.selectGen != sel {
		return nil
	}
	a.loadingAlbumImages = false
	if err != nil {
		a.albumImages = []string{}
		a.deps.Notifier.Notify(ports.LevelError, "Failed to load album images")
		return err
	}
	a.albumImages = res.ImageLinks
	return nil
}

// Back возвращает к сетке сразу, а выбранный альбом очищает после ExitDelay,
// если за это время не был выбран другой.
func (a *Albums) Back() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.mode = ModeGrid
	sel := a.selectGen
	a.stopExitTimer()
	a.exitTimer = time.AfterFunc(a.deps.ExitDelay, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.selectGen != sel || a.mode != ModeGrid {
			return
		}
		a.selected = nil
		a.albumImages = nil
	})
}

func (a *Albums) stopExitTimer() {
	if a.exitTimer != nil {
		a.exitTimer.Stop()
		a.exitTimer = nil
	}
}

// Delete удаляет альбом и, если он был открыт, возвращает к сетке.
func (a *Albums) Delete(albumID string) error {
	ctx, gen := a.loader.snapshot()

	if err := a.deps.Albums.Delete(ctx, albumID); err != nil {
		a.deps.Notifier.Notify(ports.LevelError, "Failed to delete album")
		return err
	}

	a.mu.Lock()
	if a.loader.current(gen) {
		kept := a.albums[:0:0]
		for _, al := range a.albums {
			if al.ID != albumID {
				kept = append(kept, al)
			}
		}
		a.albums = kept
		if a.selected != nil && a.selected.ID == albumID {
			a.stopExitTimer()
			a.selectGen++
			a.selected = nil
			a.albumImages = nil
			a.mode = ModeGrid
		}
	}
	a.mu.Unlock()

	a.deps.Notifier.Notify(ports.LevelSuccess, "Album deleted")
	return nil
}

// RemoveImage убирает изображение из открытого альбома только локально.
func (a *Albums) RemoveImage(index int) error {
	a.mu.Lock()
	if index < 0 || index >= len(a.albumImages) {
		a.mu.Unlock()
		return fmt.Errorf("image index %d out of range: %w", index, domain.ErrValidation)
	}
	a.albumImages = append(a.albumImages[:index:index], a.albumImages[index+1:]...)
	a.mu.Unlock()

	a.deps.Notifier.Notify(ports.LevelSuccess, "Image removed")
	return nil
}

// NewCreateDialog открывает диалог создания альбома по лицу для текущего проекта.
func (a *Albums) NewCreateDialog() *CreateDialog {
	return &CreateDialog{albums: a, projectID: a.ProjectID(), view: usecase.CropView{Zoom: usecase.MinZoom}}
}

// CreateDialog - имя человека, выбранное изображение и рамка кадрирования.
// Диалог привязан к проекту, в котором был открыт.
type CreateDialog struct {
	albums    *Albums
	projectID string

	mu         sync.Mutex
	personName string
	image      *domain.Image
	width      int
	height     int
	view       usecase.CropView
	area       domain.CropArea
	creating   bool
}

func (d *CreateDialog) SetPersonName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.personName = name
}

// stale истинно, если после открытия диалога выбран другой проект.
func (d *CreateDialog) stale() bool {
	return d.albums.ProjectID() != d.projectID
}

// ProjectID - проект, к которому привязан диалог.
func (d *CreateDialog) ProjectID() string { return d.projectID }

// SelectImage выбирает изображение проекта и рассчитывает начальную рамку по его размеру.
func (d *CreateDialog) SelectImage(imageID string) error {
	if d.projectID == "" || d.stale() {
		return fmt.Errorf("album dialog for project %q: %w", d.projectID, domain.ErrNoProject)
	}

	var img *domain.Image
	for _, pi := range d.albums.ProjectImages() {
		if pi.ID == imageID {
			cp := pi
			img = &cp
			break
		}
	}
	if img == nil {
		return fmt.Errorf("image %s: %w", imageID, domain.ErrValidation)
	}

	d.mu.Lock()
	d.image = img
	d.width, d.height = 0, 0
	d.area = domain.CropArea{}
	d.mu.Unlock()

	ctx, gen := d.albums.loader.snapshot()
	w, h, err := d.albums.deps.Cropper.Dimensions(ctx, img.ImageURL)
	if err != nil {
		d.albums.deps.Notifier.Notify(ports.LevelError, "Failed to load image")
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.albums.loader.current(gen) {
		d.reset()
		return fmt.Errorf("album dialog for project %q: %w", d.projectID, domain.ErrNoProject)
	}
	if d.image == nil || d.image.ID != imageID {
		return nil
	}
	d.width, d.height = w, h
	d.area = d.view.Area(w, h)
	return nil
}

// SetCrop двигает рамку. Без выбранного изображения область не считается.
func (d *CreateDialog) SetCrop(view usecase.CropView) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.view = view
	if d.width > 0 && d.height > 0 {
		d.area = view.Area(d.width, d.height)
	}
}

func (d *CreateDialog) Area() domain.CropArea {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.area
}

// CanCreate истинно, когда задано имя, выбрано изображение, рассчитана рамка
// и проект с момента открытия диалога не менялся.
func (d *CreateDialog) CanCreate() bool {
	if d.stale() {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.canCreate()
}

func (d *CreateDialog) canCreate() bool {
	return strings.TrimSpace(d.personName) != "" && d.image != nil && !d.area.Empty() && !d.creating
}

// Create вырезает лицо, создает альбом и перечитывает список альбомов.
func (d *CreateDialog) Create() error {
	a := d.albums
	ctx, gen := a.loader.snapshot()
	projectID := d.projectID
	if projectID == "" || a.ProjectID() == "" {
		a.deps.Notifier.Notify(ports.LevelError, "No project selected")
		return domain.ErrNoProject
	}
	if d.stale() {
		d.mu.Lock()
		d.reset()
		d.mu.Unlock()
		a.deps.Notifier.Notify(ports.LevelError, "Project changed, please start the album again")
		return fmt.Errorf("album dialog for project %s: %w", projectID, domain.ErrNoProject)
	}

	d.mu.Lock()
	if !d.canCreate() {
		d.mu.Unlock()
		a.deps.Notifier.Notify(ports.LevelError, "Please select an image and enter a person name")
		return fmt.Errorf("album dialog incomplete: %w", domain.ErrValidation)
	}
	d.creating = true
	name := strings.TrimSpace(d.personName)
	imageURL := d.image.ImageURL
	area := d.area
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.creating = false
		d.mu.Unlock()
	}()

	face, err := a.deps.Cropper.Crop(ctx, imageURL, area)
	if err != nil {
		a.deps.Notifier.Notify(ports.LevelError, "Failed to crop image")
		return err
	}
	if !a.loader.current(gen) {
		return fmt.Errorf("album dialog for project %s: %w", projectID, domain.ErrNoProject)
	}

	if _, err := a.deps.Albums.Generate(ctx, projectID, name, face); err != nil {
		msg := "Failed to create album"
		if m := domain.MessageOf(err); m != "" {
			msg = m
		}
		a.deps.Notifier.Notify(ports.LevelError, msg)
		return err
	}

	a.deps.Notifier.Notify(ports.LevelSuccess, fmt.Sprintf("Album created successfully for %s", name))
	_ = a.Reload()

	d.mu.Lock()
	d.personName = ""
	d.reset()
	d.mu.Unlock()
	return nil
}

// reset сбрасывает изображение и рамку. Вызывается под d.mu.
func (d *CreateDialog) reset() {
	d.image = nil
	d.width, d.height = 0, 0
	d.view = usecase.CropView{Zoom: usecase.MinZoom}
	d.area = domain.CropArea{}
}
