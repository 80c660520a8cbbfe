package api

import (
	"context"

	"github.com/wasif-raza/mockify-cli/pkg/api/types"
	"github.com/wasif-raza/mockify-cli/pkg/query"
)

// Dashboard reads usage statistics.
type Dashboard struct {
	c *Client
}

// Dashboard cache keys.
var (
	UserStatsKey    = query.K("dashboard", "user")
	RecordHealthKey = query.K("dashboard", "record", "health")
)

// UserStats returns the caller's totals.
func (d *Dashboard) UserStats(ctx context.Context) (types.Stats, error) {
	return fetch[types.Stats](ctx, d.c, UserStatsKey, "/dashboard/user")
}

// OrganizationStats returns the totals of one organization.
func (d *Dashboard) OrganizationStats(ctx context.Context, id string) (types.Stats, error) {
	return fetch[types.Stats](ctx, d.c, query.K("dashboard", "organization", id), path("dashboard", "organization", id))
}

// ProjectStats returns the totals of one project.
func (d *Dashboard) ProjectStats(ctx context.Context, id string) (types.Stats, error) {
	return fetch[types.Stats](ctx, d.c, query.K("dashboard", "project", id), path("dashboard", "project", id))
}

// SchemaStats returns the totals of one schema.
func (d *Dashboard) SchemaStats(ctx context.Context, id string) (types.Stats, error) {
	return fetch[types.Stats](ctx, d.c, query.K("dashboard", "schema", id), path("dashboard", "schema", id))
}

// RecordHealth returns record expiry statistics.
func (d *Dashboard) RecordHealth(ctx context.Context) (types.Stats, error) {
	return fetch[types.Stats](ctx, d.c, RecordHealthKey, "/dashboard/record/health")
}
