package pihole

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
)

const sidHeader = "X-FTL-SID"

var (
	ErrAuthRejected = errors.New("pihole rejected the password")
	ErrUnauthorized = errors.New("pihole session is missing or expired")
	errEmptyBody    = errors.New("empty response body")
)

// Config configures New.
type Config struct {
	BaseURL    string
	Password   string
	Insecure   bool         // skip TLS verification, common with self-signed Pi-hole certs
	HTTPClient *http.Client // optional
	DNSAddr    string       // resolver used by Lookup; defaults to <host>:53
}

// Client talks to the REST API of a single Pi-hole.
type Client struct {
	HTTP    *resty.Client
	BaseURL string

	password string
	dnsAddr  string

	mu     sync.RWMutex
	sid    string
	authed bool
}

// NormalizeBaseURL strips surrounding slashes and whitespace.
func NormalizeBaseURL(u string) string {
	return strings.Trim(strings.TrimSpace(u), "/")
}

// New builds a client for one server. Call Auth before the API calls.
func New(cfg Config) *Client {
	base := NormalizeBaseURL(cfg.BaseURL)

	var r *resty.Client
	if cfg.HTTPClient != nil {
		r = resty.NewWithClient(cfg.HTTPClient)
	} else {
		r = resty.New()
	}
	r.SetBaseURL(base + "/api")
	r.SetHeader("Accept", "application/json")
	r.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	if cfg.Insecure {
		r.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	return &Client{
		HTTP:     r,
		BaseURL:  base,
		password: cfg.Password,
		dnsAddr:  cfg.DNSAddr,
	}
}

// SessionID returns the session obtained by Auth, empty before it.
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sid
}

// Authenticated reports whether Auth succeeded. It stays true for
// servers without a password, which hand out no sid.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authed
}

// request builds a request carrying the current session header.
func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.HTTP.R().SetContext(ctx)
	if sid := c.SessionID(); sid != "" {
		req.SetHeader(sidHeader, sid)
	}
	return req
}

// Auth opens a session with the server password. Servers without a
// password answer with a valid session and no sid.
func (c *Client) Auth(ctx context.Context) error {
	var out authResponse
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(authPayload{Password: c.password}).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/auth")
	if err != nil {
		return fmt.Errorf("auth with %s: %w", c.BaseURL, err)
	}
	if resp.IsError() {
		if resp.StatusCode() == http.StatusUnauthorized {
			return fmt.Errorf("auth with %s: %w", c.BaseURL, ErrAuthRejected)
		}
		return fmt.Errorf("auth with %s: %s", c.BaseURL, describe(resp))
	}
	if !out.Session.Valid {
		return fmt.Errorf("auth with %s: %w", c.BaseURL, ErrAuthRejected)
	}

	c.mu.Lock()
	c.sid = out.Session.SID
	c.authed = true
	c.mu.Unlock()
	return nil
}

// Enable turns blocking back on. The bool reports whether the server
// confirmed the new state.
func (c *Client) Enable(ctx context.Context) (bool, error) {
	st, err := c.setBlocking(ctx, blockingPayload{Blocking: true})
	if err != nil {
		return false, err
	}
	return st.Blocking == "enabled", nil
}

// Disable pauses blocking for the given number of seconds.
func (c *Client) Disable(ctx context.Context, seconds uint) (bool, error) {
	st, err := c.setBlocking(ctx, blockingPayload{Blocking: false, Timer: &seconds})
	if err != nil {
		return false, err
	}
	return st.Blocking == "disabled", nil
}

func (c *Client) setBlocking(ctx context.Context, p blockingPayload) (BlockingState, error) {
	var st BlockingState
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(p).
		SetResult(&st).
		ForceContentType("application/json").
		Post("/dns/blocking")
	if err != nil {
		return BlockingState{}, err
	}
	if resp.IsError() {
		return BlockingState{}, c.responseError("set blocking on", resp)
	}
	return st, nil
}

// Status returns the current blocking state.
func (c *Client) Status(ctx context.Context) (BlockingState, error) {
	var st BlockingState
	resp, err := c.request(ctx).
		SetResult(&st).
		ForceContentType("application/json").
		Get("/dns/blocking")
	if err != nil {
		return BlockingState{}, err
	}
	if resp.IsError() {
		return BlockingState{}, c.responseError("get status from", resp)
	}
	return st, nil
}

// getRaw fetches a JSON document without interpreting it.
func (c *Client) getRaw(ctx context.Context, path string, query map[string]string) (json.RawMessage, error) {
	resp, err := c.request(ctx).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, c.responseError("get "+path+" from", resp)
	}
	if len(resp.Body()) == 0 {
		return nil, fmt.Errorf("get %s from %s: %w", path, c.BaseURL, errEmptyBody)
	}
	if !json.Valid(resp.Body()) {
		return nil, fmt.Errorf("get %s from %s: response is not JSON", path, c.BaseURL)
	}
	return json.RawMessage(resp.Body()), nil
}

func (c *Client) responseError(op string, resp *resty.Response) error {
	if resp.StatusCode() == http.StatusUnauthorized {
		return fmt.Errorf("%s %s: %w", op, c.BaseURL, ErrUnauthorized)
	}
	return fmt.Errorf("failed to %s %s: %s", op, c.BaseURL, describe(resp))
}

// describe renders a failed response, preferring Pi-hole's error message.
func describe(resp *resty.Response) string {
	var e apiError
	if err := json.Unmarshal(resp.Body(), &e); err == nil && e.Error.Message != "" {
		return fmt.Sprintf("%s (%s)", e.Error.Message, resp.Status())
	}
	if body := strings.TrimSpace(resp.String()); body != "" {
		return body
	}
	return resp.Status()
}
