package portability

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/wasif-raza/mockify-cli/pkg/api/types"
)

// OpenAPIVersion is the version of generated documents.
const OpenAPIVersion = "3.0.3"

// ExportInput is the project whose schemas are exported.
type ExportInput struct {
	// ServerURL is the API base URL, e.g. http://localhost:8080/api/v1.
	ServerURL string
	Org       string
	Project   *types.ProjectDetail
	Schemas   []types.MockSchema
}

// ExportOpenAPI builds an OpenAPI document with the record endpoints of
// every schema:
//
//	GET|POST          /{org}/{project}/{schema}/records
//	GET|PUT|DELETE    /{org}/{project}/{schema}/records/{id}
func ExportOpenAPI(in ExportInput) (*openapi3.T, error) {
	if in.Project == nil {
		return nil, errors.New("project is required")
	}

	doc := &openapi3.T{
		OpenAPI: OpenAPIVersion,
		Info: &openapi3.Info{
			Title:       in.Project.Name,
			Description: fmt.Sprintf("Mock endpoints of %s/%s", in.Org, in.Project.Slug),
			Version:     "1.0.0",
		},
		Paths: openapi3.NewPaths(),
	}
	if in.ServerURL != "" {
		doc.Servers = openapi3.Servers{&openapi3.Server{URL: in.ServerURL}}
	}

	for _, s := range in.Schemas {
		data, err := dataSchema(s.SchemaJSON)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", s.Slug, err)
		}
		base := fmt.Sprintf("/%s/%s/%s/records", in.Org, in.Project.Slug, s.Slug)
		record := recordSchema(data)
		input := openapi3.NewObjectSchema().
			WithProperty("data", data).
			WithProperty("ttlMinutes", openapi3.NewIntegerSchema())
		input.Required = []string{"data"}

		doc.Paths.Set(base, &openapi3.PathItem{
			Get:  operation(s, "list", "List records", nil, "200", openapi3.NewArraySchema().WithItems(record)),
			Post: operation(s, "create", "Create a record", input, "201", record),
		})

		id := &openapi3.ParameterRef{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema())}
		item := &openapi3.PathItem{
			Parameters: openapi3.Parameters{id},
			Get:        operation(s, "get", "Get a record", nil, "200", record),
			Put:        operation(s, "update", "Update a record", input, "200", record),
			Delete:     operation(s, "delete", "Delete a record", nil, "204", nil),
		}
		doc.Paths.Set(base+"/{id}", item)
	}
	return doc, nil
}

// dataSchema decodes a stored JSON Schema. Missing schemas become a free
// form object.
func dataSchema(raw json.RawMessage) (*openapi3.Schema, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return openapi3.NewObjectSchema(), nil
	}
	schema := openapi3.NewSchema()
	if err := json.Unmarshal(raw, schema); err != nil {
		return nil, fmt.Errorf("invalid JSON Schema: %w", err)
	}
	return schema, nil
}

func recordSchema(data *openapi3.Schema) *openapi3.Schema {
	s := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("schemaId", openapi3.NewStringSchema()).
		WithProperty("data", data).
		WithProperty("createdAt", openapi3.NewDateTimeSchema()).
		WithProperty("expiresAt", openapi3.NewDateTimeSchema()).
		WithProperty("expired", openapi3.NewBoolSchema())
	s.Required = []string{"id", "data"}
	return s
}

func operation(s types.MockSchema, verb, summary string, body *openapi3.Schema, status string, resp *openapi3.Schema) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = verb + "_" + s.Slug
	op.Summary = summary
	op.Tags = []string{s.Name}
	if body != nil {
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(body),
		}
	}

	r := openapi3.NewResponse().WithDescription(summary)
	if resp != nil {
		r = r.WithJSONSchema(resp)
	}
	op.Responses = &openapi3.Responses{}
	op.Responses.Set(status, &openapi3.ResponseRef{Value: r})
	return op
}
