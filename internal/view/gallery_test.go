package view

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeZip(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("PK\x03\x04fake"), 0o600))
	return path
}

func TestGallery_RejectsNonZip(t *testing.T) {
	d := newDashboard(t)
	require.True(t, d.sidebar.Select("p1"))
	d.wait()

	err := d.gallery.Upload(writeZip(t, "photos.rar"))
	require.ErrorIs(t, err, domain.ErrNotZip)
	assert.Zero(t, d.images.uploads)
	assert.Contains(t, d.notifier.Messages(ports.LevelError), "Please upload a ZIP file")
	assert.False(t, d.store.Uploading())
}

func TestGallery_UploadShowsSynthesizedImages(t *testing.T) {
	d := newDashboard(t)
	require.True(t, d.sidebar.Select("p1"))
	d.wait()

	require.NoError(t, d.gallery.Upload(writeZip(t, "photos.zip")))

	images := d.gallery.Images()
	require.Len(t, images, 2)
	assert.NotEqual(t, images[0].ID, images[1].ID)
	for _, img := range images {
		assert.Equal(t, "p1", img.ProjectID)
		assert.True(t, img.Local)
	}
	assert.Equal(t, 100, d.gallery.Progress())
	assert.False(t, d.store.Uploading())
}

func TestGallery_UploadWithoutProject(t *testing.T) {
	d := newDashboard(t)

	err := d.gallery.Upload(writeZip(t, "photos.zip"))
	assert.ErrorIs(t, err, domain.ErrNoProject)
	assert.Zero(t, d.images.uploads)
}

func TestGallery_ProjectSwitchDropsStaleResults(t *testing.T) {
	d := newDashboard(t)
	d.images.ignoreCtx = true
	d.albums.ignoreCtx = true
	d.images.byProject["p1"] = []domain.Image{{ID: "a", ProjectID: "p1"}}
	d.images.byProject["p2"] = []domain.Image{{ID: "b", ProjectID: "p2"}}
	d.albums.byProject["p1"] = []domain.Album{{ID: "al-a", ProjectID: "p1"}}
	d.albums.byProject["p2"] = []domain.Album{{ID: "al-b", ProjectID: "p2"}}

	imagesGate, albumsGate := newGate(), newGate()
	d.images.gates["p1"] = imagesGate
	d.albums.gates["p1"] = albumsGate

	require.True(t, d.sidebar.Select("p1"))
	// галерея и экран альбомов грузят изображения p1, альбомы грузят список альбомов p1
	<-imagesGate.entered
	<-imagesGate.entered
	<-albumsGate.entered

	require.True(t, d.sidebar.Select("p2"))
	close(imagesGate.release)
	close(albumsGate.release)
	d.wait()

	images := d.gallery.Images()
	require.Len(t, images, 1)
	assert.Equal(t, "p2", images[0].ProjectID)

	albums := d.albumsVM.List()
	require.Len(t, albums, 1)
	assert.Equal(t, "p2", albums[0].ProjectID)

	projectImages := d.albumsVM.ProjectImages()
	require.Len(t, projectImages, 1)
	assert.Equal(t, "p2", projectImages[0].ProjectID)
}

func TestGallery_ProjectSwitchCancelsPendingLoads(t *testing.T) {
	d := newDashboard(t)
	d.images.byProject["p2"] = []domain.Image{{ID: "b", ProjectID: "p2"}}
	imagesGate := newGate()
	d.images.gates["p1"] = imagesGate

	require.True(t, d.sidebar.Select("p1"))
	<-imagesGate.entered
	<-imagesGate.entered

	require.True(t, d.sidebar.Select("p2"))
	d.wait()

	require.Len(t, d.gallery.Images(), 1)
	assert.NotContains(t, d.notifier.Messages(ports.LevelError), "Failed to load project images")
}

func TestGallery_SearchInAlbum(t *testing.T) {
	d := newDashboard(t)
	d.albums.byProject["p1"] = []domain.Album{{ID: "a1", ProjectID: "p1", PersonName: "Ann Lee"}}
	d.albums.links["a1"] = []string{"https://x/1.jpg", "https://x/2.jpg"}
	require.True(t, d.sidebar.Select("p1"))
	d.wait()

	require.NoError(t, d.gallery.Search("In Album:  ann lee "))

	msgs := d.gallery.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.MessageUser, msgs[0].Type)
	assert.Equal(t, domain.MessageAI, msgs[1].Type)
	assert.False(t, msgs[1].IsLoading)
	require.Len(t, msgs[1].Images, 2)
	assert.Equal(t, "a1", msgs[1].Images[0].AlbumID)
	assert.Equal(t, []string{"a1"}, d.albums.linkCalls)
	assert.Zero(t, d.images.searchCall)
}

func TestGallery_SearchInUnknownAlbum(t *testing.T) {
	d := newDashboard(t)
	d.albums.byProject["p1"] = []domain.Album{{ID: "a1", ProjectID: "p1", PersonName: "Ann"}}
	require.True(t, d.sidebar.Select("p1"))
	d.wait()

	err := d.gallery.Search("in album: Bob")
	require.ErrorIs(t, err, domain.ErrAlbumNotFound)
	assert.Contains(t, d.notifier.Messages(ports.LevelError), `Album "Bob" not found`)
	assert.Zero(t, d.images.searchCall)
	assert.Empty(t, d.albums.linkCalls)
}

func TestGallery_SearchText(t *testing.T) {
	d := newDashboard(t)
	d.images.search = &ports.SearchResult{ImageLinks: []string{"https://x/1.jpg"}, ImageIDs: []string{"i1"}}
	require.True(t, d.sidebar.Select("p1"))
	d.wait()

	require.NoError(t, d.gallery.Search("sunset"))
	msgs := d.gallery.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "sunset", msgs[0].Content)
	require.Len(t, msgs[1].Images, 1)
	assert.Equal(t, "i1", msgs[1].Images[0].ID)
	assert.Equal(t, 1, d.images.searchCall)

	require.NoError(t, d.gallery.Search("   "))
	assert.Equal(t, 1, d.images.searchCall)
}

func TestGallery_DeleteImage(t *testing.T) {
	d := newDashboard(t)
	d.images.byProject["p1"] = []domain.Image{
		{ID: "i1", ProjectID: "p1", ImageURL: "https://x/1.jpg"},
		{ID: "i2", ProjectID: "p1", ImageURL: "https://x/2.jpg"},
	}
	require.True(t, d.sidebar.Select("p1"))
	d.wait()

	require.NoError(t, d.gallery.DeleteImage("i1"))
	assert.Equal(t, []string{"i1"}, d.images.deletes)
	images := d.gallery.Images()
	require.Len(t, images, 1)
	assert.Equal(t, "i2", images[0].ID)
}

func TestGallery_Download(t *testing.T) {
	d := newDashboard(t)
	d.images.byProject["p1"] = []domain.Image{{ID: "i1", ProjectID: "p1", ImageURL: "https://x/dir/1.jpg?sig=abc"}}
	require.True(t, d.sidebar.Select("p1"))
	d.wait()

	dst, err := d.gallery.Download("i1", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "1.jpg", filepath.Base(dst))
}
