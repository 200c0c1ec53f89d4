package view

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
	"github.com/GoArmGo/CuratAI/internal/logger"
	"github.com/GoArmGo/CuratAI/internal/notify"
	"github.com/GoArmGo/CuratAI/internal/state"
	"github.com/GoArmGo/CuratAI/internal/usecase"
)

type dashboard struct {
	store    *state.Store
	notifier *notify.Recorder
	projects *fakeProjects
	images   *fakeImages
	albums   *fakeAlbums
	auth     *fakeAuth
	sidebar  *Sidebar
	gallery  *Gallery
	albumsVM *Albums
}

func newDashboard(t *testing.T) *dashboard {
	t.Helper()
	d := &dashboard{
		store:    state.New(),
		notifier: &notify.Recorder{},
		projects: &fakeProjects{
			list:     []domain.Project{{ID: "p1", ProjectName: "Trip"}, {ID: "p2", ProjectName: "Wedding"}, {ProjectName: "ghost"}},
			createID: "p3",
		},
		images: newFakeImages(),
		albums: newFakeAlbums(),
		auth:   &fakeAuth{},
	}
	ctx := context.Background()
	log := logger.Discard()

	d.sidebar = NewSidebar(ctx, SidebarDeps{
		Projects: d.projects, Auth: d.auth, Store: d.store, Notifier: d.notifier, Logger: log, UserID: "u1",
	})
	d.gallery = NewGallery(ctx, GalleryDeps{
		Images: d.images, Albums: d.albums, Ingest: usecase.NewIngestUseCase(d.images, log),
		Fetcher: &fakeFetcher{}, Store: d.store, Notifier: d.notifier, Logger: log,
	})
	d.albumsVM = NewAlbums(ctx, AlbumsDeps{
		Albums: d.albums, Images: d.images,
		Cropper: usecase.NewFaceCropper(&fakeFetcher{data: testPNG(t, 120, 80)}, 0, log),
		Store:   d.store, Notifier: d.notifier, Logger: log, ExitDelay: 10 * time.Millisecond,
	})
	t.Cleanup(func() {
		d.gallery.Close()
		d.albumsVM.Close()
	})
	return d
}

func (d *dashboard) wait() {
	d.gallery.Wait()
	d.albumsVM.Wait()
}

func TestSidebar_HidesProjectsWithoutID(t *testing.T) {
	d := newDashboard(t)

	projects := d.sidebar.Projects()
	require.Len(t, projects, 2)
	for _, p := range projects {
		assert.NotEmpty(t, p.ID)
	}
}

func TestSidebar_BlankNameKeepsDialogOpen(t *testing.T) {
	d := newDashboard(t)

	d.sidebar.OpenCreate()
	d.sidebar.SetName("   \t ")
	err := d.sidebar.Create(context.Background())

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, d.projects.creates)
	assert.True(t, d.sidebar.Dialog().Open)
	assert.Contains(t, d.notifier.Messages(ports.LevelError), "Project name is required")
}

func TestSidebar_CreateSelectsNewProject(t *testing.T) {
	d := newDashboard(t)

	d.sidebar.OpenCreate()
	d.sidebar.SetName("  Holidays ")
	require.NoError(t, d.sidebar.Create(context.Background()))
	d.wait()

	assert.Equal(t, []string{"Holidays"}, d.projects.creates)
	assert.False(t, d.sidebar.Dialog().Open)
	assert.Equal(t, "p3", d.store.SelectedProject())
	assert.Len(t, d.sidebar.Projects(), 3)
}

func TestSidebar_UploadBlocksMutations(t *testing.T) {
	d := newDashboard(t)
	require.True(t, d.store.BeginUpload())

	d.sidebar.OpenCreate()
	d.sidebar.SetName("Holidays")
	assert.ErrorIs(t, d.sidebar.Create(context.Background()), domain.ErrUploadInProgress)
	assert.ErrorIs(t, d.sidebar.Delete(context.Background(), "p1"), domain.ErrUploadInProgress)
	assert.ErrorIs(t, d.sidebar.Logout(context.Background()), domain.ErrUploadInProgress)
	assert.False(t, d.sidebar.Select("p1"))

	assert.Empty(t, d.projects.creates)
	assert.Empty(t, d.projects.deletes)
	assert.Zero(t, d.auth.logouts)
	assert.Contains(t, d.notifier.Messages(ports.LevelError), "Please wait until the upload is complete")
}

func TestSidebar_DeletingSelectedProjectClearsViews(t *testing.T) {
	d := newDashboard(t)
	d.images.byProject["p1"] = []domain.Image{{ID: "i1", ProjectID: "p1", ImageURL: "https://x/1.jpg"}}
	d.albums.byProject["p1"] = []domain.Album{{ID: "a1", ProjectID: "p1", PersonName: "Ann"}}

	require.True(t, d.sidebar.Select("p1"))
	d.wait()
	require.Len(t, d.gallery.Images(), 1)
	require.Len(t, d.albumsVM.List(), 1)

	require.NoError(t, d.sidebar.Delete(context.Background(), "p1"))
	d.wait()

	assert.Empty(t, d.store.SelectedProject())
	assert.Empty(t, d.gallery.ProjectID())
	assert.Empty(t, d.gallery.Messages())
	assert.Empty(t, d.albumsVM.List())
	assert.Empty(t, d.albumsVM.ProjectImages())
	assert.Nil(t, d.albumsVM.Selected())
	assert.Equal(t, ModeGrid, d.albumsVM.Mode())
	assert.Len(t, d.sidebar.Projects(), 1)
}

func TestSidebar_DeletingOtherProjectKeepsSelection(t *testing.T) {
	d := newDashboard(t)
	require.True(t, d.sidebar.Select("p1"))
	d.wait()

	require.NoError(t, d.sidebar.Delete(context.Background(), "p2"))
	assert.Equal(t, "p1", d.store.SelectedProject())
}

func TestSidebar_Logout(t *testing.T) {
	d := newDashboard(t)
	require.True(t, d.sidebar.Select("p1"))
	d.wait()

	require.NoError(t, d.sidebar.Logout(context.Background()))
	assert.Equal(t, 1, d.auth.logouts)
	assert.Equal(t, "/", d.sidebar.Redirect())
	assert.Empty(t, d.store.SelectedProject())
}

func TestSidebar_MissingUserID(t *testing.T) {
	rec := &notify.Recorder{}
	s := NewSidebar(context.Background(), SidebarDeps{
		Projects: &fakeProjects{}, Auth: &fakeAuth{}, Store: state.New(), Notifier: rec, Logger: logger.Discard(),
	})

	assert.Empty(t, s.Projects())
	assert.Equal(t, []string{"User ID not found. Please log in."}, rec.Messages(ports.LevelError))
}
