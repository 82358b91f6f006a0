// Package toggle triggers the remote Pi-hole control endpoint.
//
// The endpoint answers GET /enable and GET /disable/{seconds}. The client
// keeps no state between calls and never retries; every call yields
// exactly one Result.
package toggle

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the control server the browser page talks to.
const DefaultBaseURL = "https://pi-ctl.splitstreams.com"

// Client calls the control endpoint. It is safe for concurrent use.
type Client struct {
	HTTP    *resty.Client
	BaseURL string
}

// Config configures New.
type Config struct {
	BaseURL    string       // DefaultBaseURL when empty
	HTTPClient *http.Client // optional, e.g. for custom TLS
}

// New builds a Client that never retries.
func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	var r *resty.Client
	if cfg.HTTPClient != nil {
		r = resty.NewWithClient(cfg.HTTPClient)
	} else {
		r = resty.New()
	}
	r.SetBaseURL(base)
	r.SetRetryCount(0)

	return &Client{HTTP: r, BaseURL: base}
}

// Enable asks the endpoint to re-enable blocking on every server.
func (c *Client) Enable(ctx context.Context) Result {
	return c.Do(ctx, EnableRequest())
}

// Disable asks the endpoint to pause blocking for the given number of seconds.
func (c *Client) Disable(ctx context.Context, seconds uint) Result {
	return c.Do(ctx, DisableRequest(seconds))
}

// Do issues one request and folds the outcome into a Result. The response
// body is ignored.
func (c *Client) Do(ctx context.Context, req Request) Result {
	if err := req.Validate(); err != nil {
		return Result{Succeeded: false, Message: "invalid toggle request: " + err.Error()}
	}

	resp, err := c.HTTP.R().
		SetContext(ctx).
		Get(req.Path())
	if err != nil {
		return failed(req, failureFromError(err))
	}
	if !resp.IsSuccess() {
		return failed(req, failureFromStatus(resp.StatusCode(), resp.Status()))
	}
	return succeeded(req)
}

// Submit runs the request on its own goroutine and calls done exactly once.
// It returns without waiting for the network.
func (c *Client) Submit(ctx context.Context, req Request, done func(Result)) {
	go func() {
		res := c.Do(ctx, req)
		if done != nil {
			done(res)
		}
	}()
}
