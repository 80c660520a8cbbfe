package api

import (
	"context"

	"github.com/wasif-raza/mockify-cli/pkg/api/types"
	"github.com/wasif-raza/mockify-cli/pkg/query"
)

// Schemas manages the schemas of a project.
type Schemas struct {
	c *Client
}

// List returns the schemas of a project.
func (s *Schemas) List(ctx context.Context, org, project string) ([]types.MockSchema, error) {
	return fetch[[]types.MockSchema](ctx, s.c, query.K("schemas", org, project), path(org, project, "schemas"))
}

// Get returns one schema with its recent records.
func (s *Schemas) Get(ctx context.Context, org, project, schema string) (*types.MockSchemaDetail, error) {
	return fetch[*types.MockSchemaDetail](ctx, s.c, query.K("schemas", org, project, schema), path(org, project, schema))
}

// Create creates a schema.
func (s *Schemas) Create(ctx context.Context, org, project string, in types.SchemaInput) (*types.MockSchema, error) {
	var out types.MockSchema
	if err := s.c.http.Post(ctx, path(org, project, "schemas"), in, &out); err != nil {
		return nil, err
	}
	s.c.invalidate(query.K("schemas", org, project), query.K("projects", org, project))
	return &out, nil
}

// Update replaces a schema's name and JSON Schema.
func (s *Schemas) Update(ctx context.Context, org, project, schema string, in types.SchemaInput) (*types.MockSchema, error) {
	var out types.MockSchema
	if err := s.c.http.Put(ctx, path(org, project, schema), in, &out); err != nil {
		return nil, err
	}
	s.c.invalidate(query.K("schemas", org, project))
	return &out, nil
}

// Delete deletes a schema and its records.
func (s *Schemas) Delete(ctx context.Context, org, project, schema string) error {
	if err := s.c.http.Delete(ctx, path(org, project, schema)); err != nil {
		return err
	}
	s.c.invalidate(query.K("projects", org, project), query.K("schemas", org, project), query.K("records", org, project, schema))
	return nil
}
