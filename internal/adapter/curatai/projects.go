package curatai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/GoArmGo/CuratAI/internal/domain"
)

// Projects - обертка над ресурсом /projects. Реализует ports.ProjectsAPI.
type Projects struct{ c *Client }

// Projects возвращает API проектов.
func (c *Client) Projects() *Projects { return &Projects{c: c} }

func (p *Projects) GetAll(ctx context.Context, userID string) ([]domain.Project, error) {
	var out projectsResponse
	path := "/projects?user_id=" + url.QueryEscape(userID)
	if err := p.c.call(ctx, http.MethodGet, path, "projects_list", nil, &out); err != nil {
		p.c.logger.Error("error fetching projects", "user_id", userID, "error", err)
		return nil, fmt.Errorf("fetch projects: %w", err)
	}
	p.c.logger.Debug("fetched projects", "count", len(out.Projects))
	if out.Projects == nil {
		return []domain.Project{}, nil
	}
	return out.Projects, nil
}

func (p *Projects) Create(ctx context.Context, name, userID string) (string, error) {
	var out createProjectResponse
	body := createProjectRequest{ProjectName: name, UserID: userID}
	if err := p.c.call(ctx, http.MethodPost, "/projects", "projects_create", body, &out); err != nil {
		p.c.logger.Error("error creating project", "name", name, "error", err)
		return "", fmt.Errorf("create project: %w", err)
	}
	p.c.logger.Info("project created", "project_id", out.ProjectID, "name", name)
	return out.ProjectID, nil
}

func (p *Projects) Delete(ctx context.Context, projectID string) error {
	path := "/projects/" + url.PathEscape(projectID)
	if err := p.c.call(ctx, http.MethodDelete, path, "projects_delete", nil, nil); err != nil {
		p.c.logger.Error("error deleting project", "project_id", projectID, "error", err)
		return fmt.Errorf("delete project %s: %w", projectID, err)
	}
	p.c.logger.Info("project deleted", "project_id", projectID)
	return nil
}

func (p *Projects) Validate(ctx context.Context, projectID string) (*domain.Project, error) {
	var out domain.Project
	path := "/projects/" + url.PathEscape(projectID) + "/validate"
	if err := p.c.call(ctx, http.MethodGet, path, "projects_validate", nil, &out); err != nil {
		p.c.logger.Error("error validating project", "project_id", projectID, "error", err)
		return nil, fmt.Errorf("validate project %s: %w", projectID, err)
	}
	if out.ID == "" {
		out.ID = projectID
	}
	return &out, nil
}
