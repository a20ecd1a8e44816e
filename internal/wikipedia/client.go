package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://en.wikipedia.org"
	userAgent      = "timemachine/1.0 (alternate history generator)"
)

// Page identifies a search hit.
type Page struct {
	Title string `json:"title"`
	Key   string `json:"key"`
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Search returns up to limit pages matching query, in relevance order.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Page, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))

	var resp struct {
		Pages []Page `json:"pages"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/w/rest.php/v1/search/page?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if len(resp.Pages) > limit {
		resp.Pages = resp.Pages[:limit]
	}
	return resp.Pages, nil
}

// Summary returns the plain-text lead paragraph of the page.
func (c *Client) Summary(ctx context.Context, key string) (string, error) {
	var resp struct {
		Extract string `json:"extract"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/api/rest_v1/page/summary/"+url.PathEscape(key), &resp); err != nil {
		return "", fmt.Errorf("summary %q: %w", key, err)
	}
	return resp.Extract, nil
}

// PageURL is the human-facing article URL for a page key.
func (c *Client) PageURL(key string) string {
	return c.baseURL + "/wiki/" + url.PathEscape(key)
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
