// Package assistant wraps the OpenAI Assistants API: corpus lifecycle in
// a vector store (delete-then-upload per sync) and file-search-augmented
// question answering.
package assistant

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	defaultBaseURL  = "https://api.openai.com/v1"
	defaultTimeout  = 60 * time.Second
	maxRetries      = 3
	initialBackoff  = 500 * time.Millisecond
	defaultRunPoll  = 2 * time.Second
	defaultRunLimit = 60 * time.Second
)

// Client communicates with the OpenAI API.
type Client struct {
	apiKey        string
	baseURL       string
	model         string
	assistantName string
	httpClient    *http.Client

	runPoll  time.Duration
	runLimit time.Duration
}

// NewClient creates a Client for the given API key, chat model, and
// assistant name.
func NewClient(apiKey, model, assistantName string) *Client {
	return &Client{
		apiKey:        apiKey,
		baseURL:       defaultBaseURL,
		model:         model,
		assistantName: assistantName,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		runPoll:  defaultRunPoll,
		runLimit: defaultRunLimit,
	}
}

// NewClientWithBaseURL creates a client pointing at a custom base URL.
// The run poll interval is shortened so tests complete quickly.
func NewClientWithBaseURL(apiKey, model, assistantName, baseURL string) *Client {
	c := NewClient(apiKey, model, assistantName)
	c.baseURL = strings.TrimRight(baseURL, "/")
	c.runPoll = 10 * time.Millisecond
	return c
}

// rateLimitError is returned on HTTP 429.
type rateLimitError struct {
	status int
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("rate limited (HTTP %d)", e.status)
}

func isRateLimit(err error) bool {
	_, ok := err.(*rateLimitError)
	return ok
}

// doJSON executes an API request with the standard headers, retrying
// rate-limited calls with exponential backoff, and decodes the response
// into result when non-nil. body may be nil for GET/DELETE.
func (c *Client) doJSON(ctx context.Context, method, path string, body, result any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
	}

	var lastErr error
	for attempt := range maxRetries {
		err := c.doOnce(ctx, method, path, payload, "application/json", result)
		if err == nil {
			return nil
		}
		if !isRateLimit(err) {
			return err
		}

		lastErr = err
		if attempt < maxRetries-1 {
			backoff := time.Duration(float64(initialBackoff) * math.Pow(2, float64(attempt)))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return fmt.Errorf("rate limited after %d retries: %w", maxRetries, lastErr)
}

func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte, contentType string, result any) error {
	var reader io.Reader = http.NoBody
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openai request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &rateLimitError{status: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decoding openai response: %w", err)
		}
	}
	return nil
}

// uploadFile posts a multipart file with purpose "assistants" and returns
// the created file ID.
func (c *Client) uploadFile(ctx context.Context, name string, content []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("purpose", "assistants"); err != nil {
		return "", fmt.Errorf("writing purpose field: %w", err)
	}
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := fw.Write(content); err != nil {
		return "", fmt.Errorf("writing file content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finalizing multipart body: %w", err)
	}

	var file fileObject
	if err := c.doOnce(ctx, http.MethodPost, "/files", buf.Bytes(), mw.FormDataContentType(), &file); err != nil {
		return "", err
	}
	return file.ID, nil
}

// decodeAPIError turns a non-2xx response into a descriptive error,
// preferring the API's own error message when present.
func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("openai: %s (HTTP %d, type %s)", apiErr.Error.Message, resp.StatusCode, apiErr.Error.Type)
	}
	return fmt.Errorf("openai: unexpected status %d: %s", resp.StatusCode, string(body))
}
