package view

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
	"github.com/GoArmGo/CuratAI/internal/state"
	"github.com/GoArmGo/CuratAI/internal/usecase"
)

const (
	msgUserNotFound        = "User ID not found. Please log in."
	msgWaitForUpload       = "Please wait until the upload is complete"
	msgProjectNameRequired = "Project name is required"
)

// SidebarDeps - зависимости сайдбара проектов.
type SidebarDeps struct {
	Projects ports.ProjectsAPI
	Auth     usecase.AuthUseCase
	Store    *state.Store
	Notifier ports.Notifier
	Logger   *slog.Logger
	UserID   string
}

// CreateProjectDialog - состояние диалога создания проекта.
type CreateProjectDialog struct {
	Open     bool
	Name     string
	Creating bool
}

// Sidebar - список проектов пользователя с созданием, удалением и выбором.
// Создание, удаление и выход заблокированы, пока идет загрузка архива.
type Sidebar struct {
	deps SidebarDeps

	mu       sync.Mutex
	projects []domain.Project
	loading  bool
	dialog   CreateProjectDialog
	deleting map[string]bool
	redirect string
}

// NewSidebar создает сайдбар и сразу загружает список проектов.
func NewSidebar(ctx context.Context, deps SidebarDeps) *Sidebar {
	s := &Sidebar{deps: deps, deleting: map[string]bool{}}
	_ = s.Load(ctx)
	return s
}

func (s *Sidebar) Load(ctx context.Context) error {
	if s.deps.UserID == "" {
		s.deps.Notifier.Notify(ports.LevelError, msgUserNotFound)
		return domain.ErrUnauthenticated
	}

	s.setLoading(true)
	defer s.setLoading(false)

	projects, err := s.deps.Projects.GetAll(ctx, s.deps.UserID)
	if err != nil {
		s.deps.Notifier.Notify(ports.LevelError, "Failed to load projects")
		return err
	}

	s.mu.Lock()
	s.projects = projects
	s.mu.Unlock()
	return nil
}

func (s *Sidebar) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Sidebar) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Projects возвращает проекты для отображения. Записи без id не показываются.
func (s *Sidebar) Projects() []domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if p.ID != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Sidebar) Dialog() CreateProjectDialog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialog
}

func (s *Sidebar) OpenCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialog.Open = true
}

func (s *Sidebar) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialog.Name = name
}

func (s *Sidebar) CloseCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialog = CreateProjectDialog{}
}

// Create создает проект из имени в диалоге. При ошибке валидации диалог остается открытым.
func (s *Sidebar) Create(ctx context.Context) error {
	if s.deps.Store.Uploading() {
		s.deps.Notifier.Notify(ports.LevelError, msgWaitForUpload)
		return domain.ErrUploadInProgress
	}

	s.mu.Lock()
	name := strings.TrimSpace(s.dialog.Name)
	if name == "" {
		s.mu.Unlock()
		s.deps.Notifier.Notify(ports.LevelError, msgProjectNameRequired)
		return domain.FieldErrors{"project_name": msgProjectNameRequired}
	}
	if s.dialog.Creating {
		s.mu.Unlock()
		return domain.ErrBusy
	}
	s.dialog.Creating = true
	s.mu.Unlock()

	if s.deps.UserID == "" {
		s.finishCreate(false)
		s.deps.Notifier.Notify(ports.LevelError, msgUserNotFound)
		return domain.ErrUnauthenticated
	}

	id, err := s.deps.Projects.Create(ctx, name, s.deps.UserID)
	if err != nil {
		s.finishCreate(false)
		s.deps.Notifier.Notify(ports.LevelError, "Failed to create project")
		return err
	}

	_ = s.Load(ctx)
	s.finishCreate(true)
	s.deps.Store.SelectProject(id)
	s.deps.Notifier.Notify(ports.LevelSuccess, "Project created successfully")
	return nil
}

func (s *Sidebar) finishCreate(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.dialog = CreateProjectDialog{}
		return
	}
	s.dialog.Creating = false
}

// Deleting сообщает, идет ли удаление проекта id.
func (s *Sidebar) Deleting(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleting[id]
}

func (s *Sidebar) Delete(ctx context.Context, id string) error {
	if s.deps.Store.Uploading() {
		s.deps.Notifier.Notify(ports.LevelError, msgWaitForUpload)
		return domain.ErrUploadInProgress
	}

	s.mu.Lock()
	if s.deleting[id] {
		s.mu.Unlock()
		return domain.ErrBusy
	}
	s.deleting[id] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.deleting, id)
		s.mu.Unlock()
	}()

	if err := s.deps.Projects.Delete(ctx, id); err != nil {
		s.deps.Notifier.Notify(ports.LevelError, "Failed to delete project")
		return err
	}

	s.mu.Lock()
	kept := s.projects[:0:0]
	for _, p := range s.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.projects = kept
	s.mu.Unlock()

	if s.deps.Store.SelectedProject() == id {
		s.deps.Store.SelectProject("")
	}
	s.deps.Notifier.Notify(ports.LevelSuccess, "Project deleted successfully")
	return nil
}

// Select выбирает проект. Игнорируется во время загрузки и для удаляемого проекта.
func (s *Sidebar) Select(id string) bool {
	if s.deps.Store.Uploading() || s.Deleting(id) {
		return false
	}
	s.deps.Store.SelectProject(id)
	return true
}

// Logout очищает сессию и переводит на корневой маршрут.
func (s *Sidebar) Logout(ctx context.Context) error {
	if s.deps.Store.Uploading() {
		s.deps.Notifier.Notify(ports.LevelError, msgWaitForUpload)
		return domain.ErrUploadInProgress
	}

	if err := s.deps.Auth.Logout(ctx); err != nil {
		s.deps.Notifier.Notify(ports.LevelError, "Failed to log out")
		return fmt.Errorf("sidebar logout: %w", err)
	}

	s.mu.Lock()
	s.redirect = "/"
	s.mu.Unlock()
	s.deps.Store.SelectProject("")
	s.deps.Notifier.Notify(ports.LevelSuccess, "Logged out successfully")
	return nil
}

// Redirect возвращает маршрут, на который нужно перейти, или пустую строку.
func (s *Sidebar) Redirect() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redirect
}
