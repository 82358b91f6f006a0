package pihole

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const lookupTimeout = 3 * time.Second

// LookupResult tells whether a Pi-hole's resolver blocks a domain.
type LookupResult struct {
	Domain  string   `json:"domain"`
	Server  string   `json:"server"`
	Blocked bool     `json:"blocked"`
	Rcode   string   `json:"rcode"`
	Answers []string `json:"answers,omitempty"`
}

// resolverAddr is the DNS address of the Pi-hole, <host>:53 by default.
func (c *Client) resolverAddr() (string, error) {
	if c.dnsAddr != "" {
		return c.dnsAddr, nil
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", c.BaseURL, err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("base url %q has no host", c.BaseURL)
	}
	return net.JoinHostPort(host, "53"), nil
}

// Lookup resolves domain against the Pi-hole's own DNS server. A domain
// counts as blocked when the answer is the null address (0.0.0.0 or ::)
// or the server refuses it with NXDOMAIN.
func (c *Client) Lookup(ctx context.Context, domain string) (LookupResult, error) {
	addr, err := c.resolverAddr()
	if err != nil {
		return LookupResult{}, err
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(strings.TrimSpace(domain)), dns.TypeA)
	m.RecursionDesired = true

	dc := &dns.Client{Net: "udp", Timeout: lookupTimeout}
	resp, _, err := dc.ExchangeContext(ctx, m, addr)
	if err != nil {
		return LookupResult{}, fmt.Errorf("query %s for %s: %w", addr, domain, err)
	}

	res := LookupResult{
		Domain: strings.TrimSuffix(dns.Fqdn(domain), "."),
		Server: addr,
		Rcode:  dns.RcodeToString[resp.Rcode],
	}
	if resp.Rcode == dns.RcodeNameError {
		res.Blocked = true
	}
	for _, rr := range resp.Answer {
		switch v := rr.(type) {
		case *dns.A:
			res.Answers = append(res.Answers, v.A.String())
			if v.A.IsUnspecified() {
				res.Blocked = true
			}
		case *dns.AAAA:
			res.Answers = append(res.Answers, v.AAAA.String())
			if v.AAAA.IsUnspecified() {
				res.Blocked = true
			}
		case *dns.CNAME:
			res.Answers = append(res.Answers, v.Target)
		}
	}
	return res, nil
}
