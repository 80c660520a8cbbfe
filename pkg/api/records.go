package api

import (
	"context"

	"github.com/wasif-raza/mockify-cli/pkg/api/types"
	"github.com/wasif-raza/mockify-cli/pkg/query"
)

// Records manages the records of a schema.
type Records struct {
	c *Client
}

func recordsPath(org, project, schema string) string {
	return path(org, project, schema, "records")
}

// List returns every record of a schema.
func (r *Records) List(ctx context.Context, org, project, schema string) ([]types.MockRecord, error) {
	return fetch[[]types.MockRecord](ctx, r.c, query.K("records", org, project, schema), recordsPath(org, project, schema))
}

// Get returns one record.
func (r *Records) Get(ctx context.Context, org, project, schema, id string) (*types.MockRecord, error) {
	return fetch[*types.MockRecord](ctx, r.c, query.K("records", org, project, schema, id), recordsPath(org, project, schema)+path(id))
}

// Create stores a record. Only data is sent; the server assigns the TTL.
func (r *Records) Create(ctx context.Context, org, project, schema string, data map[string]any) (*types.MockRecord, error) {
	var out types.MockRecord
	if err := r.c.http.Post(ctx, recordsPath(org, project, schema), types.RecordInput{Data: data}, &out); err != nil {
		return nil, err
	}
	r.c.invalidate(query.K("records", org, project, schema), query.K("schemas", org, project, schema))
	return &out, nil
}

// Update replaces a record's data and optionally its TTL.
func (r *Records) Update(ctx context.Context, org, project, schema, id string, in types.RecordInput) (*types.MockRecord, error) {
	var out types.MockRecord
	if err := r.c.http.Put(ctx, recordsPath(org, project, schema)+path(id), in, &out); err != nil {
		return nil, err
	}
	r.c.invalidate(query.K("records", org, project, schema), query.K("schemas", org, project, schema))
	return &out, nil
}

// Delete deletes a record.
func (r *Records) Delete(ctx context.Context, org, project, schema, id string) error {
	if err := r.c.http.Delete(ctx, recordsPath(org, project, schema)+path(id)); err != nil {
		return err
	}
	r.c.invalidate(query.K("records", org, project, schema), query.K("schemas", org, project, schema))
	return nil
}
