// Package hatena is a small client for the Hatena Blog AtomPub API.
package hatena

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Tiliavir/hatena-sync/internal/config"
	"github.com/Tiliavir/hatena-sync/internal/model"
)

// StatusError is returned when the API answers with an unexpected status.
type StatusError struct {
	Op         string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: hatena API error %d: %s", e.Op, e.URL, e.StatusCode, e.Body)
}

// Client talks to one blog's AtomPub entry collection.
type Client struct {
	httpClient *http.Client
	baseURL    string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewClient creates an authenticated client for the blog described by cfg.
func NewClient(cfg config.Config) *Client {
	return NewClientWithHTTP(cfg.FeedURL(), NewHTTPClient(cfg))
}

// NewClientWithHTTP creates a client for the collection at baseURL using an
// already configured HTTP client.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{httpClient: hc, baseURL: baseURL}
}

// BaseURL is the collection URL entries are listed from and posted to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// FetchAll reads every page of the collection. On error no entries are
// returned.
func (c *Client) FetchAll(ctx context.Context) ([]model.RemoteEntry, error) {
	var all []model.RemoteEntry
	p := c.Entries(ctx)
	for p.Next() {
		all = append(all, p.Entry())
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return all, nil
}

// do sends a request and returns the body of a response whose status is in
// ok. Other statuses yield a *StatusError.
func (c *Client) do(ctx context.Context, method, rawURL string, body []byte, ok ...int) ([]byte, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, r)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/atom+xml")
	if body != nil {
		req.Header.Set("Content-Type", "application/atom+xml;type=entry;charset=utf-8")
	}

	c.logger().Debug("hatena request", "method", method, "url", rawURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hatena API request failed: %w", err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	for _, code := range ok {
		if resp.StatusCode == code {
			return data, nil
		}
	}
	return nil, &StatusError{Op: method, URL: rawURL, StatusCode: resp.StatusCode, Body: string(data)}
}

// fetchPage GETs one feed page and returns its entries and the absolute URL
// of the next page, if any.
func (c *Client) fetchPage(ctx context.Context, pageURL string) ([]model.RemoteEntry, string, error) {
	data, err := c.do(ctx, http.MethodGet, pageURL, nil, http.StatusOK)
	if err != nil {
		return nil, "", err
	}

	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, "", fmt.Errorf("decoding feed %s: %w", pageURL, err)
	}

	entries := make([]model.RemoteEntry, 0, len(feed.Entries))
	for _, a := range feed.Entries {
		entries = append(entries, a.toModel())
	}

	next := linkHref(feed.Links, "next")
	if next != "" {
		next, err = resolve(pageURL, next)
		if err != nil {
			return nil, "", fmt.Errorf("invalid next link in %s: %w", pageURL, err)
		}
	}
	return entries, next, nil
}

func resolve(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}
