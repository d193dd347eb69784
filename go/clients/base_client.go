package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GenericFailureMessage is shown to the user whenever the server gave no
// error detail, or the request failed before reaching the server.
const GenericFailureMessage = "Something went wrong. Please try again."

// APIError is a non-2xx response from the backend. Detail carries the
// server's error text verbatim when present.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("API returned status code: %d, detail: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("API returned status code: %d", e.StatusCode)
}

// UserMessage returns the text to surface in a user-facing notification:
// the server's detail, or a generic failure string if absent.
func (e *APIError) UserMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	return GenericFailureMessage
}

type BaseClient struct {
	baseURL string
	client  *http.Client
	headers map[string]string
}

func NewBaseClient(baseURL string) *BaseClient {
	return &BaseClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(map[string]string),
	}
}

func (c *BaseClient) BaseURL() string {
	return c.baseURL
}

func (c *BaseClient) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetBearerToken attaches token as the default credential for all subsequent
// requests.
func (c *BaseClient) SetBearerToken(token string) {
	c.headers["Authorization"] = "Bearer " + token
}

// ClearBearerToken removes the default credential.
func (c *BaseClient) ClearBearerToken() {
	delete(c.headers, "Authorization")
}

// HasBearerToken reports whether a default credential is attached.
func (c *BaseClient) HasBearerToken() bool {
	_, ok := c.headers["Authorization"]
	return ok
}

func (c *BaseClient) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

func (c *BaseClient) MakeRequest(method, endpoint string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Detail:     decodeErrorDetail(responseBody),
		}
	}

	return responseBody, nil
}

// decodeErrorDetail extracts the server's error text from a {"detail": ...}
// body. Returns "" when the body is not in that shape.
func decodeErrorDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Detail
}

func (c *BaseClient) Get(endpoint string) ([]byte, error) {
	return c.MakeRequest("GET", endpoint, nil)
}

func (c *BaseClient) Post(endpoint string, body io.Reader) ([]byte, error) {
	return c.MakeRequest("POST", endpoint, body)
}

// PostJSON marshals payload and POSTs it to endpoint.
func (c *BaseClient) PostJSON(endpoint string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.Post(endpoint, bytes.NewReader(data))
}

// PutJSON marshals payload and PUTs it to endpoint.
func (c *BaseClient) PutJSON(endpoint string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.Put(endpoint, bytes.NewReader(data))
}

func (c *BaseClient) Put(endpoint string, body io.Reader) ([]byte, error) {
	return c.MakeRequest("PUT", endpoint, body)
}

func (c *BaseClient) Delete(endpoint string) ([]byte, error) {
	return c.MakeRequest("DELETE", endpoint, nil)
}
