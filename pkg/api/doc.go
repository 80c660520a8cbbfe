// Package api provides the Mockify resource clients: organizations, projects,
// schemas, records and dashboard statistics.
//
// Reads go through a shared query.Cache under the same keys the web client
// used, and each mutation invalidates the keys whose data it changes. Values
// returned from the cache are shared; callers must not modify them.
package api
