package pihole

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// DefaultTopN is used when a top-N query is given a zero count.
const DefaultTopN = 25

func countParam(n int) map[string]string {
	if n <= 0 {
		n = DefaultTopN
	}
	return map[string]string{"count": strconv.Itoa(n)}
}

// Summary returns the stats summary document.
func (c *Client) Summary(ctx context.Context) (json.RawMessage, error) {
	return c.getRaw(ctx, "/stats/summary", nil)
}

// Version returns the component versions of the server.
func (c *Client) Version(ctx context.Context) (json.RawMessage, error) {
	return c.getRaw(ctx, "/info/version", nil)
}

func (c *Client) TopDomains(ctx context.Context, n int) (json.RawMessage, error) {
	return c.getRaw(ctx, "/stats/top_domains", countParam(n))
}

func (c *Client) TopClients(ctx context.Context, n int) (json.RawMessage, error) {
	return c.getRaw(ctx, "/stats/top_clients", countParam(n))
}

// Upstreams returns the forward destination stats.
func (c *Client) Upstreams(ctx context.Context) (json.RawMessage, error) {
	return c.getRaw(ctx, "/stats/upstreams", nil)
}

func (c *Client) QueryTypes(ctx context.Context) (json.RawMessage, error) {
	return c.getRaw(ctx, "/stats/query_types", nil)
}

// RecentBlocked returns up to n of the most recently blocked domains.
func (c *Client) RecentBlocked(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		n = 1
	}
	raw, err := c.getRaw(ctx, "/stats/recent_blocked", map[string]string{"count": strconv.Itoa(n)})
	if err != nil {
		return nil, err
	}
	var out recentBlockedResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode recent blocked from %s: %w", c.BaseURL, err)
	}
	return out.Blocked, nil
}
