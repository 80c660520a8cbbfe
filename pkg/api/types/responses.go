// Package types holds the request and response documents of the Mockify
// resource API.
package types

import (
	"encoding/json"
	"sort"
)

// Owner is the user that owns an organization.
type Owner struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Organization is an entry of the organization list.
type Organization struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ProjectCount int    `json:"projectCount"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// OrganizationDetail is a single organization with its projects.
type OrganizationDetail struct {
	Organization
	Owner    *Owner    `json:"owner,omitempty"`
	Projects []Project `json:"projects,omitempty"`
}

// Project is an entry of an organization's project list.
type Project struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	SchemaCount      int    `json:"schemaCount"`
	OrganizationID   int64  `json:"organizationId,omitempty"`
	OrganizationName string `json:"organizationName,omitempty"`
	CreatedAt        string `json:"createdAt,omitempty"`
}

// ProjectStats are the counters shown on a project page.
type ProjectStats struct {
	TotalSchemas   int `json:"totalSchemas"`
	TotalRecords   int `json:"totalRecords"`
	ActiveRecords  int `json:"activeRecords"`
	ExpiredRecords int `json:"expiredRecords"`
}

// ProjectDetail is a single project with its schemas.
type ProjectDetail struct {
	Project
	Stats   ProjectStats `json:"stats"`
	Schemas []MockSchema `json:"schemas,omitempty"`
}

// MockSchema describes the records of one mock endpoint. SchemaJSON is the
// JSON Schema document the records follow.
type MockSchema struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	RecordCount int             `json:"recordCount"`
	SchemaJSON  json.RawMessage `json:"schemaJson,omitempty"`
	CreatedAt   string          `json:"createdAt,omitempty"`
}

// MockSchemaDetail is a single schema with its most recent records.
type MockSchemaDetail struct {
	MockSchema
	RecentRecords []MockRecord `json:"recentRecords,omitempty"`
}

// MockRecord is one generated or stored record of a schema.
type MockRecord struct {
	ID        ID             `json:"id"`
	SchemaID  ID             `json:"schemaId,omitempty"`
	Data      map[string]any `json:"data"`
	CreatedAt string         `json:"createdAt,omitempty"`
	ExpiresAt string         `json:"expiresAt,omitempty"`
	Expired   bool           `json:"expired,omitempty"`
}

// OrganizationInput is the body of organization create and update.
type OrganizationInput struct {
	Name string `json:"name"`
}

// ProjectInput is the body of project create and update.
type ProjectInput struct {
	Name string `json:"name"`
}

// SchemaInput is the body of schema create and update.
type SchemaInput struct {
	Name       string          `json:"name"`
	SchemaJSON json.RawMessage `json:"schemaJson"`
}

// RecordInput is the body of record create and update. TTLMinutes is only
// sent on update.
type RecordInput struct {
	Data       map[string]any `json:"data"`
	TTLMinutes *int           `json:"ttlMinutes,omitempty"`
}

// Stats is a dashboard statistics document. Its shape differs per endpoint,
// so it is kept as a generic object.
type Stats map[string]any

// Keys returns the stat names in sorted order.
func (s Stats) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
