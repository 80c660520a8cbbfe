// Package apitest provides a scriptable fake Mockify API for tests.
//
// A Server wraps httptest.Server and answers requests from stubs registered
// with a fluent builder. Stubs match on method and path (with {param}
// segments), and optionally on request headers, bearer token, query
// parameters and body content. The first registered stub that matches and
// has not used up its Times limit answers. Every request is logged for
// assertions.
//
// Basic usage:
//
//	func TestLogin(t *testing.T) {
//	    api := apitest.New(t)
//	    api.Mock("POST", "/auth/login").
//	        RespondJSON(map[string]any{"access_token": "T1"}).
//	        Reply()
//
//	    c := httpclient.New(api.APIURL())
//	    ...
//	    api.AssertCalledTimes(t, "POST", "/auth/login", 1)
//	}
//
// Unmatched requests get a 404 error document naming the request.
package apitest
