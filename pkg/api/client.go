package api

import (
	"context"
	"net/url"
	"strings"

	"github.com/wasif-raza/mockify-cli/pkg/httpclient"
	"github.com/wasif-raza/mockify-cli/pkg/query"
)

// Client groups the resource clients over one httpclient.Client.
type Client struct {
	http  *httpclient.Client
	cache *query.Cache

	Organizations *Organizations
	Projects      *Projects
	Schemas       *Schemas
	Records       *Records
	Dashboard     *Dashboard
}

// New creates resource clients. A nil cache gets a private one.
func New(hc *httpclient.Client, cache *query.Cache) *Client {
	if cache == nil {
		cache = query.New()
	}
	c := &Client{http: hc, cache: cache}
	c.Organizations = &Organizations{c: c}
	c.Projects = &Projects{c: c}
	c.Schemas = &Schemas{c: c}
	c.Records = &Records{c: c}
	c.Dashboard = &Dashboard{c: c}
	return c
}

// Cache returns the query cache the clients read through.
func (c *Client) Cache() *query.Cache {
	return c.cache
}

// fetch reads path through the cache under key.
func fetch[T any](ctx context.Context, c *Client, key query.Key, path string) (T, error) {
	return query.Fetch(ctx, c.cache, key, func(ctx context.Context) (T, error) {
		var out T
		err := c.http.Get(ctx, path, &out)
		return out, err
	})
}

func (c *Client) invalidate(keys ...query.Key) {
	for _, k := range keys {
		c.cache.Invalidate(k)
	}
}

// path joins escaped segments into an API path.
func path(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
