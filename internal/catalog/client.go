package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const userAgent = "skinrec/1.0 (+catalog fetch)"

// Client downloads catalogs published over HTTP.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a catalog client with the default timeout.
func NewClient() *Client {
	return &Client{httpClient: &http.Client{Timeout: 15 * time.Second}}
}

// NewClientWithHTTP creates a client around a caller-supplied http.Client (for testing).
func NewClientWithHTTP(hc *http.Client) *Client {
	return &Client{httpClient: hc}
}

// IsRemote reports whether a catalog location should be fetched over HTTP.
func IsRemote(location string) bool {
	lower := strings.ToLower(strings.TrimSpace(location))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetch downloads and parses the catalog at url.
func (c *Client) Fetch(ctx context.Context, url string) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	format := FormatFromPath(url)
	if ct := strings.ToLower(resp.Header.Get("Content-Type")); strings.Contains(ct, "json") {
		format = FormatJSON
	} else if strings.Contains(ct, "csv") {
		format = FormatCSV
	}

	cat, err := Load(resp.Body, format)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}
	cat.source = url
	return cat, nil
}

// Open loads a catalog from a local path or an http(s) URL.
func Open(ctx context.Context, location string) (*Catalog, error) {
	if IsRemote(location) {
		return NewClient().Fetch(ctx, location)
	}
	return LoadFile(location)
}
