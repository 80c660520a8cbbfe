// Package matching selects and filters records on the client side.
//
// Select projects values out of records with JSONPath expressions, and
// Filter keeps the records for which an expr-lang boolean expression holds.
// Both operate on the record document {"id", "data", "createdAt", ...} as
// returned by the API.
package matching
