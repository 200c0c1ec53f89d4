package view

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
)

// SortKey - порядок списка проектов.
type SortKey string

const (
	SortRecent SortKey = "recent"
	SortName   SortKey = "name"
	SortImages SortKey = "images"
)

// ParseSortKey возвращает SortRecent для неизвестных значений.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortName:
		return SortName
	case SortImages:
		return SortImages
	default:
		return SortRecent
	}
}

// ProjectsPage - страница всех проектов с фильтром и сортировкой.
type ProjectsPage struct {
	api      ports.ProjectsAPI
	notifier ports.Notifier
	logger   *slog.Logger
	userID   string

	mu       sync.Mutex
	projects []domain.Project
	loading  bool
	query    string
	sortBy   SortKey
}

func NewProjectsPage(api ports.ProjectsAPI, notifier ports.Notifier, logger *slog.Logger, userID string) *ProjectsPage {
	return &ProjectsPage{api: api, notifier: notifier, logger: logger, userID: userID, sortBy: SortRecent}
}

func (p *ProjectsPage) Load(ctx context.Context) error {
	p.mu.Lock()
	p.loading = true
	p.mu.Unlock()

	projects, err := p.api.GetAll(ctx, p.userID)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		p.notifier.Notify(ports.LevelError, "Failed to load projects")
		return err
	}
	p.projects = projects
	return nil
}

func (p *ProjectsPage) Create(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		p.notifier.Notify(ports.LevelError, msgProjectNameRequired)
		return domain.FieldErrors{"project_name": msgProjectNameRequired}
	}
	if _, err := p.api.Create(ctx, name, p.userID); err != nil {
		p.notifier.Notify(ports.LevelError, "Failed to create project")
		return err
	}
	p.notifier.Notify(ports.LevelSuccess, "Project created successfully!")
	return p.Load(ctx)
}

func (p *ProjectsPage) Delete(ctx context.Context, id string) error {
	if err := p.api.Delete(ctx, id); err != nil {
		p.notifier.Notify(ports.LevelError, "Failed to delete project")
		return err
	}
	p.notifier.Notify(ports.LevelSuccess, "Project deleted successfully")
	return p.Load(ctx)
}

func (p *ProjectsPage) SetQuery(q string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.query = q
}

func (p *ProjectsPage) SetSort(key SortKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sortBy = key
}

// Visible возвращает проекты, отфильтрованные по подстроке имени и отсортированные.
func (p *ProjectsPage) Visible() []domain.Project {
	p.mu.Lock()
	defer p.mu.Unlock()

	q := strings.ToLower(p.query)
	out := make([]domain.Project, 0, len(p.projects))
	for _, pr := range p.projects {
		if pr.ID == "" {
			continue
		}
		if strings.Contains(strings.ToLower(pr.ProjectName), q) {
			out = append(out, pr)
		}
	}

	switch p.sortBy {
	case SortName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].ProjectName) < strings.ToLower(out[j].ProjectName)
		})
	case SortImages:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ImageCount > out[j].ImageCount })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt.Time) })
	}
	return out
}

// TotalImages суммирует image_count по всем проектам.
func (p *ProjectsPage) TotalImages() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := 0
	for _, pr := range p.projects {
		total += pr.ImageCount
	}
	return total
}

// Route возвращает маршрут страницы проекта.
func (p *ProjectsPage) Route(id string) string {
	return "/projects/" + id
}
