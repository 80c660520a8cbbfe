// Package portability moves mock data in and out of Mockify.
//
// ExportOpenAPI describes the record endpoints of a project's schemas as an
// OpenAPI 3 document, so that the mocks can be fed to code generators and
// API tooling. LoadRecords reads record documents from JSON or YAML files
// matched by a doublestar glob for bulk import.
//
// Basic export example:
//
//	doc, err := portability.ExportOpenAPI(portability.ExportInput{
//	    ServerURL: client.BaseURL(),
//	    Org:       "acme",
//	    Project:   detail,
//	    Schemas:   schemas,
//	})
//	data, err := portability.Marshal(doc, portability.FormatYAML)
package portability
