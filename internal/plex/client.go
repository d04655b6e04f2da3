// Package plex is a thin HTTP client for the Plex Media Server API,
// covering library listing, watch history, title lookup, and playlist
// management.
package plex

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

const defaultTimeout = 30 * time.Second

// Client communicates with a Plex Media Server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	mu          sync.Mutex
	sectionKeys map[string]string // library name -> section key
	machineID   string
}

// NewClient creates a Client for the server at baseURL authenticating
// with the given X-Plex-Token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		sectionKeys: make(map[string]string),
	}
}

// requestConfig holds per-request options for doRequest.
type requestConfig struct {
	method      string
	path        string
	query       url.Values
	expectNoErr bool // also accept 204 No Content
}

// doRequest executes a Plex API request and decodes the JSON response
// into result when non-nil. All requests carry the X-Plex-Token header
// and ask for JSON.
func (c *Client) doRequest(ctx context.Context, cfg requestConfig, result any) error {
	req, err := http.NewRequestWithContext(ctx, cfg.method, c.baseURL+cfg.path, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/json")
	if len(cfg.query) > 0 {
		req.URL.RawQuery = cfg.query.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("plex request %s: %w", cfg.path, err)
	}
	defer resp.Body.Close()

	ok := resp.StatusCode == http.StatusOK ||
		resp.StatusCode == http.StatusCreated ||
		(cfg.expectNoErr && resp.StatusCode == http.StatusNoContent)
	if !ok {
		return fmt.Errorf("plex %s %s: unexpected status %d", cfg.method, cfg.path, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decoding plex response: %w", err)
		}
	}
	return nil
}

// doJSONRequest is a convenience wrapper for GET requests.
func (c *Client) doJSONRequest(ctx context.Context, path string, query url.Values, result any) error {
	return c.doRequest(ctx, requestConfig{
		method: http.MethodGet,
		path:   path,
		query:  query,
	}, result)
}

// machineIdentifier returns the server's machine identifier, fetching and
// caching it on first use. Playlist item URIs require it.
func (c *Client) machineIdentifier(ctx context.Context) (string, error) {
	c.mu.Lock()
	cached := c.machineID
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	var resp identityResponse
	if err := c.doJSONRequest(ctx, "/identity", nil, &resp); err != nil {
		return "", err
	}
	id := resp.MediaContainer.MachineIdentifier
	if id == "" {
		return "", fmt.Errorf("plex identity response missing machineIdentifier")
	}

	c.mu.Lock()
	c.machineID = id
	c.mu.Unlock()
	return id, nil
}
