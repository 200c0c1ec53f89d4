package view

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
	"github.com/GoArmGo/CuratAI/internal/usecase"
)

type fakeProjects struct {
	mu       sync.Mutex
	list     []domain.Project
	creates  []string
	deletes  []string
	createID string
	err      error
}

func (f *fakeProjects) GetAll(context.Context, string) ([]domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Project(nil), f.list...), nil
}

func (f *fakeProjects) Create(_ context.Context, name, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, name)
	if f.err != nil {
		return "", f.err
	}
	f.list = append(f.list, domain.Project{ID: f.createID, ProjectName: name})
	return f.createID, nil
}

func (f *fakeProjects) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return f.err
}

func (f *fakeProjects) Validate(_ context.Context, id string) (*domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.list {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, errors.New("backend returned status 404")
}

// gate позволяет тесту держать вызов открытым до явного release.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}, 8), release: make(chan struct{})}
}

func (g *gate) pass(ctx context.Context) error {
	if g == nil {
		return nil
	}
	g.entered <- struct{}{}
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type fakeImages struct {
	mu         sync.Mutex
	byProject  map[string][]domain.Image
	gates      map[string]*gate
	ignoreCtx  bool
	uploads    int
	deletes    []string
	search     *ports.SearchResult
	searchCall int
}

func newFakeImages() *fakeImages {
	return &fakeImages{byProject: map[string][]domain.Image{}, gates: map[string]*gate{}}
}

func (f *fakeImages) gateFor(projectID string) *gate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gates[projectID]
}

func (f *fakeImages) UploadZip(_ context.Context, projectID, _ string, r io.Reader, _ int64, onProgress func(int)) (*ports.UploadResult, error) {
	f.mu.Lock()
	f.uploads++
	f.mu.Unlock()
	_, _ = io.Copy(io.Discard, r)
	if onProgress != nil {
		onProgress(50)
		onProgress(100)
	}
	return &ports.UploadResult{ProjectID: projectID, ImagesData: map[string]json.RawMessage{
		"https://x/a.jpg": json.RawMessage(`"a.jpg"`),
		"https://x/b.jpg": json.RawMessage(`"b.jpg"`),
	}}, nil
}

func (f *fakeImages) FaceRecognition(context.Context, string, map[string]json.RawMessage) ([]ports.FaceMatch, error) {
	return nil, errors.New("face recognition unavailable")
}

func (f *fakeImages) GetProjectImages(ctx context.Context, projectID string) ([]domain.Image, error) {
	g := f.gateFor(projectID)
	if f.ignoreCtx {
		if g != nil {
			g.entered <- struct{}{}
			<-g.release
		}
	} else if err := g.pass(ctx); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Image(nil), f.byProject[projectID]...), nil
}

func (f *fakeImages) DeleteImage(_ context.Context, _, imageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, imageID)
	return nil
}

func (f *fakeImages) SearchImages(context.Context, string, string) (*ports.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCall++
	if f.search == nil {
		return &ports.SearchResult{}, nil
	}
	return f.search, nil
}

type fakeAlbums struct {
	mu          sync.Mutex
	byProject   map[string][]domain.Album
	links       map[string][]string
	gates       map[string]*gate
	ignoreCtx   bool
	linkCalls   []string
	generated   []string
	generateErr error
	deleted     []string
}

func newFakeAlbums() *fakeAlbums {
	return &fakeAlbums{byProject: map[string][]domain.Album{}, links: map[string][]string{}, gates: map[string]*gate{}}
}

func (f *fakeAlbums) GetAll(ctx context.Context, projectID string) ([]domain.Album, error) {
	f.mu.Lock()
	g := f.gates[projectID]
	f.mu.Unlock()
	if f.ignoreCtx {
		if g != nil {
			g.entered <- struct{}{}
			<-g.release
		}
	} else if err := g.pass(ctx); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Album(nil), f.byProject[projectID]...), nil
}

func (f *fakeAlbums) GetAlbumImages(_ context.Context, albumID string) (*ports.AlbumImages, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.linkCalls = append(f.linkCalls, albumID)
	return &ports.AlbumImages{ImageLinks: append([]string(nil), f.links[albumID]...)}, nil
}

func (f *fakeAlbums) Delete(_ context.Context, albumID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, albumID)
	return nil
}

func (f *fakeAlbums) Generate(_ context.Context, projectID, personName string, face *domain.CroppedFile) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	f.generated = append(f.generated, personName)
	id := "al-" + personName
	f.byProject[projectID] = append(f.byProject[projectID], domain.Album{ID: id, ProjectID: projectID, PersonName: personName})
	return []string{id}, nil
}

type fakeFetcher struct {
	data []byte
}

func (f *fakeFetcher) FetchImage(context.Context, string) ([]byte, string, error) {
	return f.data, "image/png", nil
}

type fakeAuth struct {
	logouts   int
	loginRes  usecase.AuthResult
	signupRes usecase.AuthResult
	lastEmail string
}

func (f *fakeAuth) Signup(_ context.Context, in usecase.SignupInput) usecase.AuthResult {
	f.lastEmail = in.Email
	return f.signupRes
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) usecase.AuthResult {
	f.lastEmail = email
	return f.loginRes
}

func (f *fakeAuth) GoogleSignup(context.Context, string) usecase.AuthResult { return f.signupRes }

func (f *fakeAuth) GoogleLogin(context.Context, string) usecase.AuthResult { return f.loginRes }

func (f *fakeAuth) Logout(context.Context) error {
	f.logouts++
	return nil
}

func (f *fakeAuth) CurrentUser(context.Context) (*domain.User, error) {
	return &domain.User{ID: "u1"}, nil
}
