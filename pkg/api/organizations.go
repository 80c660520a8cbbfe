package api

import (
	"context"
	"strconv"

	"github.com/wasif-raza/mockify-cli/pkg/api/types"
	"github.com/wasif-raza/mockify-cli/pkg/query"
)

// Organizations manages organizations, addressed by numeric id.
type Organizations struct {
	c *Client
}

func orgPath(id int64) string {
	return path("organizations", strconv.FormatInt(id, 10))
}

// List returns the caller's organizations.
func (o *Organizations) List(ctx context.Context) ([]types.Organization, error) {
	return fetch[[]types.Organization](ctx, o.c, query.K("organizations"), "/organizations")
}

// Get returns one organization with its projects.
func (o *Organizations) Get(ctx context.Context, id int64) (*types.OrganizationDetail, error) {
	return fetch[*types.OrganizationDetail](ctx, o.c, query.K("organizations", id), orgPath(id))
}

// Create creates an organization.
func (o *Organizations) Create(ctx context.Context, in types.OrganizationInput) (*types.Organization, error) {
	var out types.Organization
	if err := o.c.http.Post(ctx, "/organizations", in, &out); err != nil {
		return nil, err
	}
	o.c.invalidate(query.K("organizations"), query.K("dashboard", "user"))
	return &out, nil
}

// Update renames an organization.
func (o *Organizations) Update(ctx context.Context, id int64, in types.OrganizationInput) (*types.Organization, error) {
	var out types.Organization
	if err := o.c.http.Put(ctx, orgPath(id), in, &out); err != nil {
		return nil, err
	}
	o.c.invalidate(query.K("organizations"))
	return &out, nil
}

// Delete deletes an organization.
func (o *Organizations) Delete(ctx context.Context, id int64) error {
	if err := o.c.http.Delete(ctx, orgPath(id)); err != nil {
		return err
	}
	o.c.invalidate(query.K("organizations"), query.K("dashboard", "user"))
	return nil
}
