// Package query is a keyed read-through cache for API reads.
//
// Keys are ordered segments such as {"projects", "acme"}. A cached value is
// fresh for the cache's stale time after it was fetched; Invalidate marks
// every entry under a key prefix stale so the next Fetch goes to the API,
// and Remove drops entries outright. Concurrent fetches of one key share a
// single call.
package query
