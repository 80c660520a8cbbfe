package api

import (
	"context"

	"github.com/wasif-raza/mockify-cli/pkg/api/types"
	"github.com/wasif-raza/mockify-cli/pkg/query"
)

// Projects manages the projects of an organization, addressed by slugs.
type Projects struct {
	c *Client
}

// List returns the projects of org.
func (p *Projects) List(ctx context.Context, org string) ([]types.Project, error) {
	return fetch[[]types.Project](ctx, p.c, query.K("projects", org), path(org, "projects"))
}

// Get returns one project with its schemas and stats.
func (p *Projects) Get(ctx context.Context, org, project string) (*types.ProjectDetail, error) {
	return fetch[*types.ProjectDetail](ctx, p.c, query.K("projects", org, project), path(org, project))
}

// Create creates a project in org.
func (p *Projects) Create(ctx context.Context, org string, in types.ProjectInput) (*types.Project, error) {
	var out types.Project
	if err := p.c.http.Post(ctx, path(org, "projects"), in, &out); err != nil {
		return nil, err
	}
	p.c.invalidate(query.K("projects", org), query.K("organizations"), query.K("dashboard", "user"))
	return &out, nil
}

// Update renames a project.
func (p *Projects) Update(ctx context.Context, org, project string, in types.ProjectInput) (*types.Project, error) {
	var out types.Project
	if err := p.c.http.Put(ctx, path(org, project), in, &out); err != nil {
		return nil, err
	}
	p.c.invalidate(query.K("projects", org), query.K("dashboard", "user"))
	return &out, nil
}

// Delete deletes a project.
func (p *Projects) Delete(ctx context.Context, org, project string) error {
	if err := p.c.http.Delete(ctx, path(org, project)); err != nil {
		return err
	}
	p.c.invalidate(query.K("projects", org), query.K("organizations"), query.K("dashboard", "user"))
	return nil
}
