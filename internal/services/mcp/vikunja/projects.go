package vikunja

import (
	"context"
	"net/http"
)

// ListProjects returns every project visible to the token.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject fetches one project.
func (c *Client) GetProject(ctx context.Context, projectID int64) (Project, error) {
	var project Project
	err := c.do(ctx, http.MethodGet, "/projects/{project}", []int64{projectID}, nil, &project)
	return project, err
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, input NewProject) (Project, error) {
	var project Project
	err := c.do(ctx, http.MethodPut, "/projects", nil, input, &project)
	return project, err
}

// UpdateProject fetches the project, lets mutate change the raw document and
// posts it back. Vikunja replaces projects wholesale on update.
func (c *Client) UpdateProject(ctx context.Context, projectID int64, mutate func(Document)) (Project, error) {
	ids := []int64{projectID}
	current := Document{}
	if err := c.do(ctx, http.MethodGet, "/projects/{project}", ids, nil, &current); err != nil {
		return Project{}, err
	}
	if mutate != nil {
		mutate(current)
	}
	var project Project
	err := c.do(ctx, http.MethodPost, "/projects/{project}", ids, current, &project)
	return project, err
}

// DeleteProject deletes a project and all of its tasks.
func (c *Client) DeleteProject(ctx context.Context, projectID int64) error {
	return c.do(ctx, http.MethodDelete, "/projects/{project}", []int64{projectID}, nil, nil)
}
