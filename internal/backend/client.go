package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tritonsoft/leadboard/internal/models"
)

const defaultTimeout = 10 * time.Second

// HTTPDoer is the subset of *http.Client the backend client needs. Tests
// substitute their own implementation.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the server of record. It is the pull half of the sync
// layer: snapshot list fetches, status mutations, deletes, and login.
// A zero base URL is a valid configuration; every call then fails with
// ErrBackendUnavailable.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a backend client. A non-positive timeout falls back to
// the default so a hung backend cannot pin callers indefinitely.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client HTTPDoer) {
	c.httpClient = client
}

// List is a snapshot result for one filtered list. Total is the server-side
// count for the filter; Count is how many items this page holds.
type List[T any] struct {
	Items []T
	Total int
	Count int
}

type listEnvelope[T any] struct {
	Success bool `json:"success"`
	Data    []T  `json:"data"`
	Count   int  `json:"count"`
	Total   int  `json:"total"`
}

type recordEnvelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// LoginResult is the payload of a successful admin login.
type LoginResult struct {
	Token string       `json:"token"`
	Admin models.Admin `json:"admin"`
}

// ListContacts fetches the current filtered contact list.
func (c *Client) ListContacts(ctx context.Context, token string, f models.FilterParams) (*List[*models.Contact], error) {
	return listRequest[*models.Contact](ctx, c, token, "/api/contact", f)
}

// ListDemos fetches the current filtered demo list.
func (c *Client) ListDemos(ctx context.Context, token string, f models.FilterParams) (*List[*models.Demo], error) {
	return listRequest[*models.Demo](ctx, c, token, "/api/demo", f)
}

// ListLeads fetches submissions of either kind with status Lead.
func (c *Client) ListLeads(ctx context.Context, token string, f models.FilterParams) (*List[json.RawMessage], error) {
	return listRequest[json.RawMessage](ctx, c, token, "/api/leads", f)
}

// ListLost fetches submissions of either kind with status Lost.
func (c *Client) ListLost(ctx context.Context, token string, f models.FilterParams) (*List[json.RawMessage], error) {
	return listRequest[json.RawMessage](ctx, c, token, "/api/lost", f)
}

// ListActivity fetches the status-change audit feed.
func (c *Client) ListActivity(ctx context.Context, token string, f models.FilterParams) (*List[*models.ActivityItem], error) {
	return listRequest[*models.ActivityItem](ctx, c, token, "/api/activity", f)
}

// UpdateContactStatus changes one contact's status and returns the updated record.
func (c *Client) UpdateContactStatus(ctx context.Context, token, id, status string) (*models.Contact, error) {
	return patchStatus[*models.Contact](ctx, c, token, "/api/contact/"+id, status)
}

// UpdateDemoStatus changes one demo's status and returns the updated record.
func (c *Client) UpdateDemoStatus(ctx context.Context, token, id, status string) (*models.Demo, error) {
	return patchStatus[*models.Demo](ctx, c, token, "/api/demo/"+id, status)
}

// DeleteContact removes a contact. The backend answers 204 on success.
func (c *Client) DeleteContact(ctx context.Context, token, id string) error {
	return c.deleteRequest(ctx, token, "/api/contact/"+id)
}

// DeleteDemo removes a demo.
func (c *Client) DeleteDemo(ctx context.Context, token, id string) error {
	return c.deleteRequest(ctx, token, "/api/demo/"+id)
}

// Login exchanges admin credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body, status, err := c.doRequest(ctx, http.MethodPost, "/api/admin/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, responseError(status, body, "Login failed.")
	}
	var result LoginResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	return &result, nil
}

func listRequest[T any](ctx context.Context, c *Client, token, path string, f models.FilterParams) (*List[T], error) {
	if q := f.Query().Encode(); q != "" {
		path += "?" + q
	}
	body, status, err := c.doRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, responseError(status, body, "Failed to fetch list.")
	}
	var env listEnvelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}
	return &List[T]{Items: env.Data, Total: env.Total, Count: env.Count}, nil
}

func patchStatus[T any](ctx context.Context, c *Client, token, path, status string) (T, error) {
	var zero T
	body, code, err := c.doRequest(ctx, http.MethodPatch, path, token, map[string]string{"status": status})
	if err != nil {
		return zero, err
	}
	if code != http.StatusOK {
		return zero, responseError(code, body, "Update failed.")
	}
	var env recordEnvelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return zero, fmt.Errorf("failed to decode update response: %w", err)
	}
	return env.Data, nil
}

func (c *Client) deleteRequest(ctx context.Context, token, path string) error {
	body, status, err := c.doRequest(ctx, http.MethodDelete, path, token, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return responseError(status, body, "Delete failed.")
	}
	return nil
}

// doRequest performs one request against the backend and returns the raw
// body and status. Transport-level failures and a missing base URL both map
// to ErrBackendUnavailable.
func (c *Client) doRequest(ctx context.Context, method, path, token string, payload any) ([]byte, int, error) {
	if c.baseURL == "" {
		return nil, 0, ErrBackendUnavailable
	}

	var reqBody io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// responseError maps a non-success status to the error taxonomy, pulling the
// server's message out of the body when one is present.
func responseError(status int, body []byte, fallback string) error {
	if status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	msg := fallback
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Message != "" {
			msg = eb.Message
		} else if eb.Error != "" {
			msg = eb.Error
		}
	}
	return &RequestError{Status: status, Message: msg}
}
