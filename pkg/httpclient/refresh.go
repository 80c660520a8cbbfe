package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// outcome classifies a single dispatch.
type outcome int

const (
	outcomeOK outcome = iota
	outcomeNeedsRefresh
	outcomeFailed
)

func (o outcome) String() string {
	switch o {
	case outcomeOK:
		return "ok"
	case outcomeNeedsRefresh:
		return "needs_refresh"
	default:
		return "failed"
	}
}

// attempt is the typed result of one dispatch: Ok(resp), NeedsRefresh(err)
// for a 401, or Failed(err).
type attempt struct {
	outcome outcome
	resp    *response
	err     error
}

func attemptOK(resp *response) attempt        { return attempt{outcome: outcomeOK, resp: resp} }
func attemptNeedsRefresh(err error) attempt { return attempt{outcome: outcomeNeedsRefresh, err: err} }
func attemptFailed(err error) attempt       { return attempt{outcome: outcomeFailed, err: err} }

// send runs the refresh-once policy around dispatch:
//
//	Ok                      -> return the response
//	Failed                  -> propagate
//	NeedsRefresh, auth path -> clear the token, propagate
//	NeedsRefresh, retried   -> clear the token, end the session, propagate
//	NeedsRefresh            -> refresh once and re-dispatch
func (c *Client) send(ctx context.Context, r *Request, body []byte) (*response, error) {
	retried := false
	for {
		token, _ := c.tokens.Get()
		a := c.dispatch(ctx, r, body, token)

		switch a.outcome {
		case outcomeOK:
			return a.resp, nil
		case outcomeFailed:
			return nil, a.err
		}

		if IsAuthEndpoint(r.Path) {
			c.tokens.Clear()
			return nil, a.err
		}
		if retried {
			c.logger.Info("request rejected after refresh", "method", r.Method, "path", r.Path)
			c.expire(token, a.err)
			return nil, a.err
		}
		retried = true

		if _, err := c.refreshFrom(ctx, token); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Info("token refresh failed", "path", r.Path, "error", err)
			if token == "" {
				// There was no session to end.
				return nil, a.err
			}
			c.expire(token, err)
			return nil, fmt.Errorf("%w: %w", ErrSessionExpired, a.err)
		}
	}
}

// Refresh exchanges the server-side session for a new access token and stores
// it. Concurrent callers share one in-flight refresh. A failed refresh leaves
// the store untouched.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	stale, _ := c.tokens.Get()
	return c.refreshFrom(ctx, stale)
}

// refreshFrom obtains a token newer than stale. Callers holding the same stale
// token share one flight; a flight that finds stale already replaced returns
// the current token without calling the API.
func (c *Client) refreshFrom(ctx context.Context, stale string) (string, error) {
	ch := c.refreshes.DoChan(stale, func() (any, error) {
		if cur, ok := c.tokens.Get(); ok && cur != stale {
			return cur, nil
		}
		// The refresh outlives any single waiter.
		return c.doRefresh(context.WithoutCancel(ctx), stale)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) doRefresh(ctx context.Context, stale string) (string, error) {
	if c.httpClient.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	c.logger.Info("refreshing session")
	a := c.dispatch(ctx, &Request{Method: http.MethodPost, Path: c.refreshPath}, nil, stale)
	if a.outcome != outcomeOK {
		return "", a.err
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := decodeBody(a.resp, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("refresh response has no access_token")
	}

	c.tokens.Set(out.AccessToken)
	c.logger.Info("session refreshed")
	return out.AccessToken, nil
}

// expire ends the session that token belonged to. Requests that failed under
// an older token than the current one leave the store alone, so concurrent
// failures clear it and fire the hook once. Anonymous requests end nothing.
func (c *Client) expire(token string, cause error) {
	if token == "" {
		return
	}
	if cur, _ := c.tokens.Get(); cur != token {
		return
	}
	c.tokens.Clear()
	c.logger.Info("session ended", "error", cause)
	if c.onEnded != nil {
		c.onEnded(cause)
	}
}
