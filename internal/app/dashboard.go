package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/GoArmGo/CuratAI/internal/domain"
	"github.com/GoArmGo/CuratAI/internal/state"
	"github.com/GoArmGo/CuratAI/internal/view"
)

// dashboard - view-модели главного экрана, связанные общим state.Store.
type dashboard struct {
	store   *state.Store
	sidebar *view.Sidebar
	gallery *view.Gallery
	albums  *view.Albums
	search  *view.SearchBar
}

// userID возвращает id вошедшего пользователя из хранилища сессии.
func (a *App) userID(ctx context.Context) (string, error) {
	user, err := a.Auth.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return "", fmt.Errorf("not logged in, run 'curatai login' first: %w", err)
		}
		return "", err
	}
	return user.ID, nil
}

func (a *App) newDashboard(ctx context.Context, userID string) *dashboard {
	api := a.API
	d := &dashboard{store: state.New()}

	d.sidebar = view.NewSidebar(ctx, view.SidebarDeps{
		Projects: api.Projects(),
		Auth:     a.Auth,
		Store:    d.store,
		Notifier: a.Notifier,
		Logger:   a.Logger,
		UserID:   userID,
	})
	d.gallery = view.NewGallery(ctx, view.GalleryDeps{
		Images:     api.Images(),
		Albums:     api.Albums(),
		Ingest:     a.Ingest,
		Fetcher:    api,
		Store:      d.store,
		Notifier:   a.Notifier,
		Logger:     a.Logger,
		OnProgress: progressPrinter(a.Out),
	})
	d.albums = view.NewAlbums(ctx, view.AlbumsDeps{
		Albums:    api.Albums(),
		Images:    api.Images(),
		Cropper:   a.Cropper,
		Store:     d.store,
		Notifier:  a.Notifier,
		Logger:    a.Logger,
		ExitDelay: a.Config.AlbumExitDelay,
	})
	d.search = view.NewSearchBar(a.Transcriber, a.Notifier, d.gallery.Search)
	return d
}

// open выбирает проект и ждет загрузки его изображений и альбомов.
func (d *dashboard) open(projectID string) error {
	if !d.sidebar.Select(projectID) {
		return domain.ErrUploadInProgress
	}
	d.wait()
	return nil
}

func (d *dashboard) wait() {
	d.gallery.Wait()
	d.albums.Wait()
}

func (d *dashboard) close() {
	d.gallery.Close()
	d.albums.Close()
}
