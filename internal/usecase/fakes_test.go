package usecase

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
)

type memSession struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemSession() *memSession { return &memSession{data: map[string]string{}} }

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

type fakeAuthAPI struct {
	signupReqs []ports.SignupRequest
	loginReqs  []ports.LoginRequest
	signupResp *ports.SignupResponse
	loginResp  *ports.LoginResponse
	err        error
}

func (f *fakeAuthAPI) Signup(_ context.Context, req ports.SignupRequest) (*ports.SignupResponse, error) {
	f.signupReqs = append(f.signupReqs, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.signupResp == nil {
		return &ports.SignupResponse{}, nil
	}
	return f.signupResp, nil
}

func (f *fakeAuthAPI) Login(_ context.Context, req ports.LoginRequest) (*ports.LoginResponse, error) {
	f.loginReqs = append(f.loginReqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.loginResp, nil
}

type fakeImagesAPI struct {
	uploadResult *ports.UploadResult
	uploadErr    error
	uploads      int

	matches  []ports.FaceMatch
	faceErr  error
	faceData map[string]json.RawMessage
}

func (f *fakeImagesAPI) UploadZip(_ context.Context, projectID, _ string, r io.Reader, _ int64, onProgress func(int)) (*ports.UploadResult, error) {
	f.uploads++
	_, _ = io.Copy(io.Discard, r)
	if onProgress != nil {
		onProgress(100)
	}
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	res := *f.uploadResult
	if res.ProjectID == "" {
		res.ProjectID = projectID
	}
	return &res, nil
}

func (f *fakeImagesAPI) FaceRecognition(_ context.Context, _ string, data map[string]json.RawMessage) ([]ports.FaceMatch, error) {
	f.faceData = data
	return f.matches, f.faceErr
}

func (f *fakeImagesAPI) GetProjectImages(context.Context, string) ([]domain.Image, error) {
	return nil, nil
}

func (f *fakeImagesAPI) DeleteImage(context.Context, string, string) error { return nil }

func (f *fakeImagesAPI) SearchImages(context.Context, string, string) (*ports.SearchResult, error) {
	return &ports.SearchResult{}, nil
}

type fakeFetcher struct {
	data        []byte
	contentType string
	err         error
	urls        []string
}

func (f *fakeFetcher) FetchImage(_ context.Context, url string) ([]byte, string, error) {
	f.urls = append(f.urls, url)
	return f.data, f.contentType, f.err
}
