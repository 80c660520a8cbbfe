// Package httpclient is the single outbound dispatch point for the Mockify API.
//
// Every request reads the current access token from a session.TokenStore and
// carries it as a bearer credential when one is present. A 401 on a non-auth
// endpoint triggers at most one token refresh per request; concurrent 401s
// share one in-flight refresh. When the refresh fails the token is cleared and
// the session-ended hook fires.
//
// Basic usage:
//
//	store := session.NewMemoryStore("")
//	c := httpclient.New("http://localhost:8080/api/v1",
//		httpclient.WithTokenStore(store),
//		httpclient.WithSessionEndedHook(func(err error) { ... }),
//	)
//	var orgs []api.Organization
//	err := c.Get(ctx, "/organizations", &orgs)
package httpclient
