package impl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Client fetches listing pages from the marketplace endpoint. The endpoint
// serves HTML fragments to form POSTs carrying a `start` item offset and
// expects a browser-ish session: a cookie jar bootstrapped with one GET to
// the origin, plus User-Agent / X-Requested-With / Referer headers.
type Client struct {
	client      *http.Client
	origin      string
	listingURL  string
	userAgent   string
	maxBodySize int64

	bootstrapOnce sync.Once
}

func NewClient(timeout time.Duration, baseURL, path, userAgent string) (*Client, error) {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	origin := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if origin == "" {
		return nil, fmt.Errorf("listing base url is required")
	}
	if path == "" || !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("listing path %q must start with /", path)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("init cookie jar: %w", err)
	}
	return &Client{
		client: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		origin:      origin,
		listingURL:  origin + path,
		userAgent:   userAgent,
		maxBodySize: 10 << 20, // 10 MiB
	}, nil
}

func (c *Client) Fetch(ctx context.Context, offset int) (string, error) {
	if offset < 0 {
		return "", fmt.Errorf("listing offset must be >= 0")
	}
	c.bootstrapOnce.Do(func() { c.bootstrap(ctx) })

	form := url.Values{
		"start":      {strconv.Itoa(offset)},
		"retailerId": {""},
		"category":   {""},
		"sort":       {""},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.listingURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setCommonHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("listing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("listing request failed: %s", resp.Status)
	}

	limited := io.LimitReader(resp.Body, c.maxBodySize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("read listing response: %w", err)
	}
	if int64(len(body)) > c.maxBodySize {
		return "", fmt.Errorf("listing response too large")
	}
	return strings.TrimSpace(string(body)), nil
}

// bootstrap primes the cookie jar with a session. Best effort: the listing
// endpoint still answers without cookies, just less reliably.
func (c *Client) bootstrap(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.origin, nil)
	if err != nil {
		return
	}
	c.setCommonHeaders(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
}

func (c *Client) setCommonHeaders(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Referer", c.origin+"/")
}
