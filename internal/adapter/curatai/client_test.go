package curatai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
	"github.com/GoArmGo/CuratAI/internal/logger"
)

type memSession struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemSession(kv ...string) *memSession {
	s := &memSession{data: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		s.data[kv[i]] = kv[i+1]
	}
	return s
}

func (s *memSession) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memSession) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memSession) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = map[string]string{}
	return nil
}

func newTestClient(t *testing.T, h http.Handler, session ports.SessionStore) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{
		BaseURL:        srv.URL + "/",
		RequestTimeout: 5 * time.Second,
		UploadTimeout:  5 * time.Second,
	}, session, logger.Discard())
}

func TestProjectsGetAll_SendsBearerAndDecodesWrapper(t *testing.T) {
	var gotAuth, gotUserID string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUserID = r.URL.Query().Get("user_id")
		assert.Equal(t, "/projects", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		_, _ = io.WriteString(w, `{"projects":[{"id":"p1","project_name":"Trip","image_count":3,"created_at":"2024-01-02T03:04:05Z"}]}`)
	})
	c := newTestClient(t, h, newMemSession(domain.KeyAccessToken, "tok"))

	projects, err := c.Projects().GetAll(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "p1", projects[0].ID)
	assert.Equal(t, 3, projects[0].ImageCount)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "u1", gotUserID)
}

func TestClient_ReadsTokenOnEveryCall(t *testing.T) {
	var seen []string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"projects":[]}`)
	})
	session := newMemSession(domain.KeyAccessToken, "first")
	c := newTestClient(t, h, session)

	_, err := c.Projects().GetAll(context.Background(), "u1")
	require.NoError(t, err)
	require.NoError(t, session.Set(context.Background(), domain.KeyAccessToken, "second"))
	_, err = c.Projects().GetAll(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer first", "Bearer second"}, seen)
}

func TestClient_MissingTokenFailsWithoutCall(t *testing.T) {
	called := false
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	c := newTestClient(t, h, newMemSession())

	_, err := c.Projects().GetAll(context.Background(), "u1")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.False(t, called)
}

func TestClient_APIErrorCarriesDetail(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Project not found"}`)
	})
	c := newTestClient(t, h, newMemSession(domain.KeyAccessToken, "tok"))

	_, err := c.Projects().Validate(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.Equal(t, "Project not found", MessageOf(err))
}

func TestProjectsCreate_ReturnsID(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body createProjectRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Trip", body.ProjectName)
		assert.Equal(t, "u1", body.UserID)
		_, _ = io.WriteString(w, `{"project_id":"p9","message":"created"}`)
	})
	c := newTestClient(t, h, newMemSession(domain.KeyAccessToken, "tok"))

	id, err := c.Projects().Create(context.Background(), "Trip", "u1")
	require.NoError(t, err)
	assert.Equal(t, "p9", id)
}

func TestLogin_HasNoAuthorizationHeader(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"access_token":"a","refresh_token":"r","user":{"id":"u1","email":"a@b.c","username":"ann"}}`)
	})
	c := newTestClient(t, h, newMemSession(domain.KeyAccessToken, "stale"))

	resp, err := c.Login(context.Background(), ports.LoginRequest{Email: "a@b.c", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "a", resp.AccessToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, "ann", resp.User.Username)
}

func TestUploadZip_MultipartWithProgress(t *testing.T) {
	archive := strings.Repeat("z", 256<<10)
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/upload/zip", r.URL.Path)
		assert.Greater(t, r.ContentLength, int64(len(archive)))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "p1", r.FormValue("project_id"))
		f, fh, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "photos.zip", fh.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, len(archive), len(data))
		_, _ = io.WriteString(w, `{"project_id":"p1","images_data":{"https://x/a.jpg":"a.jpg"}}`)
	})
	c := newTestClient(t, h, newMemSession(domain.KeyAccessToken, "tok"))

	var progress []int
	res, err := c.Images().UploadZip(context.Background(), "p1", "photos.zip", strings.NewReader(archive), int64(len(archive)), func(p int) {
		progress = append(progress, p)
	})
	require.NoError(t, err)
	assert.Len(t, res.ImagesData, 1)
	require.NotEmpty(t, progress)
	assert.Equal(t, 100, progress[len(progress)-1])
	for i := 1; i < len(progress); i++ {
		assert.Greater(t, progress[i], progress[i-1])
	}
}

func TestSearchImages_FormEncoded(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/image_searching/", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "p1", r.PostForm.Get("project_id"))
		assert.Equal(t, "dogs on the beach", r.PostForm.Get("search_query"))
		_, _ = io.WriteString(w, `{"image_links":["https://x/a.jpg"],"image_ids":["i1"]}`)
	})
	c := newTestClient(t, h, newMemSession(domain.KeyAccessToken, "tok"))

	res, err := c.Images().SearchImages(context.Background(), "p1", "dogs on the beach")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/a.jpg"}, res.ImageLinks)
	assert.Equal(t, []string{"i1"}, res.ImageIDs)
}

func TestFaceRecognition_AcceptsBothShapes(t *testing.T) {
	for name, payload := range map[string]string{
		"bare":    `[{"image_url":"https://x/a.jpg","person_name":"Ann","album_id":"al1"}]`,
		"wrapped": `{"images":[{"image_url":"https://x/a.jpg","person_name":"Ann","album_id":"al1"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body map[string]json.RawMessage
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.JSONEq(t, `"p1"`, string(body["project_id"]))
				assert.JSONEq(t, `{"https://x/a.jpg":["a.jpg","x"]}`, string(body["images_data"]))
				_, _ = io.WriteString(w, payload)
			})
			c := newTestClient(t, h, newMemSession(domain.KeyAccessToken, "tok"))

			matches, err := c.Images().FaceRecognition(context.Background(), "p1", map[string]json.RawMessage{
				"https://x/a.jpg": json.RawMessage(`["a.jpg","x"]`),
			})
			require.NoError(t, err)
			require.Len(t, matches, 1)
			assert.Equal(t, "Ann", matches[0].PersonName)
			assert.Equal(t, "al1", matches[0].AlbumID)
		})
	}
}

func TestAlbums_ListShapesAndDeleteBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/albums/get-albums-list", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "p1", r.URL.Query().Get("project_id"))
		_, _ = io.WriteString(w, `{"albums":[{"id":"a1","project_id":"p1","person_name":"Ann"}]}`)
	})
	mux.HandleFunc("/albums/delete-album", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		var body deleteAlbumRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a1", body.AlbumID)
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux, newMemSession(domain.KeyAccessToken, "tok"))

	albums, err := c.Albums().GetAll(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, "Ann", albums[0].PersonName)

	require.NoError(t, c.Albums().Delete(context.Background(), "a1"))
}

func TestAlbumsGenerate_Multipart(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "p1", r.FormValue("project_id"))
		assert.Equal(t, "Ann", r.FormValue("person_name"))
		f, fh, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "face.jpg", fh.Filename)
		assert.Equal(t, "image/jpeg", fh.Header.Get("Content-Type"))
		_, _ = io.WriteString(w, `{"album_ids":["a7"]}`)
	})
	c := newTestClient(t, h, newMemSession(domain.KeyAccessToken, "tok"))

	ids, err := c.Albums().Generate(context.Background(), "p1", "Ann", &domain.CroppedFile{
		Name: "face.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a7"}, ids)
}

func TestProgressReader_SuppressesDuplicates(t *testing.T) {
	var got []int
	pr := newProgressReader(strings.NewReader(strings.Repeat("x", 1000)), 1000, func(p int) { got = append(got, p) })

	buf := make([]byte, 1)
	for {
		if _, err := pr.Read(buf); err == io.EOF {
			break
		}
	}
	assert.Len(t, got, 101)
	assert.Equal(t, 0, got[0])
	assert.Equal(t, 100, got[len(got)-1])
}

func TestLists_AcceptNaiveTimestamps(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"projects":[
			{"id":"p1","project_name":"Trip","image_count":1,"created_at":"2024-01-02T03:04:05.123456","updated_at":"2024-01-03 08:00:00"},
			{"id":"p2","project_name":"Alps","image_count":0,"created_at":"not a date"}]}`)
	})
	mux.HandleFunc("/images/p1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"images":[{"id":"i1","project_id":"p1","image_url":"https://x/1.png","created_at":"2024-01-02T03:04:05"}]}`)
	})
	mux.HandleFunc("/albums/get-albums-list", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"a1","project_id":"p1","person_name":"Ann","image_group":[],"created_at":"2024-01-02T03:04:05.5"}]`)
	})
	c := newTestClient(t, mux, newMemSession(domain.KeyAccessToken, "tok"))
	ctx := context.Background()

	projects, err := c.Projects().GetAll(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 123456000, time.UTC), projects[0].CreatedAt.Time)
	require.NotNil(t, projects[0].UpdatedAt)
	assert.Equal(t, time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC), projects[0].UpdatedAt.Time)
	assert.True(t, projects[1].CreatedAt.IsZero())

	images, err := c.Images().GetProjectImages(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), images[0].CreatedAt.Time)

	albums, err := c.Albums().GetAll(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 500000000, time.UTC), albums[0].CreatedAt.Time)
}
